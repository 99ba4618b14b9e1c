package persistence

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobAttemptRepository_SaveAndList(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	repo := NewJobAttemptRepository(db)
	payload := json.RawMessage(`{"member_id":1001,"task_code":"daily_checkin"}`)

	// Act
	require.NoError(t, repo.Save(ctx, JobAttempt{
		JobID: "job-1", Queue: "app-point", Kind: "point.earn", Outcome: "rejected",
		Reason: "DailyLimitExceeded", Attempts: 1, Payload: payload,
	}))
	require.NoError(t, repo.Save(ctx, JobAttempt{
		JobID: "job-2", Queue: "app-point", Kind: "point.consume", Outcome: "dead",
		Attempts: 3, LastError: strings.Repeat("x", 1500), Payload: json.RawMessage(`{}`),
	}))

	// Assert
	attempts, err := repo.ListByJob(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "DailyLimitExceeded", attempts[0].Reason)
	assert.JSONEq(t, string(payload), string(attempts[0].Payload))
	assert.False(t, attempts[0].CreatedAt.IsZero())

	dead, err := repo.ListByOutcome(ctx, "dead", 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "job-2", dead[0].JobID)
	assert.Len(t, dead[0].LastError, 1000)
}

func TestTruncate_KeepsRuneBoundary(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "短於上限", input: "timeout", max: 1000, want: "timeout"},
		{name: "ASCII 截斷", input: strings.Repeat("x", 1500), max: 1000, want: strings.Repeat("x", 1000)},
		// 2 + 3×332 = 998，第 333 個字元會跨過 1000
		{name: "中文不被切開", input: "xx" + strings.Repeat("積", 400), max: 1000, want: "xx" + strings.Repeat("積", 332)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := truncate(tt.input, tt.max)

			// Assert
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tt.max)
		})
	}
}
