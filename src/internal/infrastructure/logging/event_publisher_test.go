package logging

import (
	"testing"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEventPublisher_LogsPointsEvents(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.InfoLevel)
	publisher := NewEventPublisher(zap.New(core))

	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	account, err := points.NewPointAccount(1001, now)
	require.NoError(t, err)
	amount, err := points.NewPositivePointsAmount(10)
	require.NoError(t, err)
	require.NoError(t, account.AddPoints(amount, amount, now))
	require.NoError(t, account.FreezePoints(amount, now))

	// Act
	err = publisher.PublishBatch(account.PullEvents())

	// Assert
	require.NoError(t, err)
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "audit", entries[0].LoggerName)
	assert.Equal(t, points.EventPointsEarned, entries[0].ContextMap()["event_type"])
	assert.Equal(t, points.EventPointsFrozen, entries[1].ContextMap()["event_type"])
	assert.Equal(t, "1001", entries[0].ContextMap()["aggregate_id"])
	assert.NotEmpty(t, entries[0].ContextMap()["attributes"])
}
