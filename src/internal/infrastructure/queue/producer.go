package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/member"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"go.uber.org/zap"
)

type jobMarker struct{}

// Producer 驗證並投遞積分任務
type Producer struct {
	queue    Queue
	name     string
	identity member.IdentitySource
	logger   *zap.Logger
	now      func() time.Time
}

// NewProducer identity 為 nil 時從 context 取會員 ID
func NewProducer(q Queue, name string, identity member.IdentitySource, logger *zap.Logger) *Producer {
	if identity == nil {
		identity = member.ContextIdentity{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{
		queue:    q,
		name:     name,
		identity: identity,
		logger:   logger.Named("producer"),
		now:      time.Now,
	}
}

// TriggerTaskEarn 投遞領取積分任務，返回任務 ID
//
// job.MemberID 為 0 時使用當前登入會員。
func (p *Producer) TriggerTaskEarn(ctx context.Context, job EarnJob) (string, error) {
	if job.MemberID == 0 {
		id, err := p.identity.MemberID(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve member: %w", err)
		}
		job.MemberID = id.Value()
	}
	if err := job.Validate(); err != nil {
		return "", err
	}
	return p.enqueue(ctx, KindEarn, job, zap.Int64("member_id", job.MemberID), zap.String("task_code", job.TaskCode))
}

// TriggerConsume 投遞消費積分任務，返回任務 ID
func (p *Producer) TriggerConsume(ctx context.Context, job ConsumeJob) (string, error) {
	if job.MemberID == 0 {
		id, err := p.identity.MemberID(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve member: %w", err)
		}
		job.MemberID = id.Value()
	}
	if err := job.Validate(); err != nil {
		return "", err
	}
	return p.enqueue(ctx, KindConsume, job, zap.Int64("member_id", job.MemberID), zap.String("order_no", job.OrderNo))
}

func (p *Producer) enqueue(ctx context.Context, kind Kind, job interface{}, fields ...zap.Field) (string, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("encode %s job: %w", kind, err)
	}

	env := Envelope{
		ID:         shared.NewEntityID[jobMarker]().String(),
		Queue:      p.name,
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: p.now().UTC(),
	}
	if err := p.queue.Enqueue(ctx, env); err != nil {
		p.logger.Error("enqueue job failed", append(fields, zap.String("job_id", env.ID), zap.Error(err))...)
		return "", err
	}

	p.logger.Info("job enqueued", append(fields,
		zap.String("job_id", env.ID),
		zap.String("kind", string(kind)),
		zap.String("queue", p.name),
	)...)
	return env.ID, nil
}
