package logging

import (
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"go.uber.org/zap"
)

// attributed 事件可選擇提供額外的審計欄位
type attributed interface {
	Attributes() map[string]interface{}
}

// EventPublisher 將領域事件寫入審計日誌
type EventPublisher struct {
	logger *zap.Logger
}

var _ shared.EventPublisher = (*EventPublisher)(nil)

// NewEventPublisher 創建審計日誌事件發布器
func NewEventPublisher(logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{logger: logger.Named("audit")}
}

// Publish 發布單一事件
func (p *EventPublisher) Publish(event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	if a, ok := event.(attributed); ok {
		fields = append(fields, zap.Any("attributes", a.Attributes()))
	}
	p.logger.Info("domain event", fields...)
	return nil
}

// PublishBatch 依序發布
func (p *EventPublisher) PublishBatch(events []shared.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(event); err != nil {
			return err
		}
	}
	return nil
}
