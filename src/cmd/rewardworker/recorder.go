package main

import (
	"context"

	"github.com/jackyeh168/member_rewards/src/internal/infrastructure/persistence"
	"github.com/jackyeh168/member_rewards/src/internal/infrastructure/queue"
)

// attemptRecorder 將 worker 結果寫入 job_attempts
type attemptRecorder struct {
	repo *persistence.JobAttemptRepository
}

func newAttemptRecorder(repo *persistence.JobAttemptRepository) *attemptRecorder {
	return &attemptRecorder{repo: repo}
}

func (r *attemptRecorder) Record(ctx context.Context, a queue.Attempt) error {
	return r.repo.Save(ctx, persistence.JobAttempt{
		JobID:     a.JobID,
		Queue:     a.Queue,
		Kind:      string(a.Kind),
		Outcome:   a.Outcome,
		Reason:    a.Reason,
		Attempts:  a.Attempts,
		LastError: a.LastError,
		Payload:   a.Payload,
		CreatedAt: a.At,
	})
}
