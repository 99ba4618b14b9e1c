package points

import (
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
)

// 事件類型
const (
	EventPointsEarned   = "points.earned"
	EventPointsUsed     = "points.used"
	EventPointsFrozen   = "points.frozen"
	EventPointsUnfrozen = "points.unfrozen"
	EventPointsDeducted = "points.deducted"
)

type eventMarker struct{}

// PointsChangedEvent 帳戶餘額變動事件
//
// 攜帶變動後的餘額快照，供審計日誌使用。
type PointsChangedEvent struct {
	eventID    string
	eventType  string
	memberID   MemberID
	amount     PointsAmount
	available  PointsAmount
	frozen     PointsAmount
	occurredAt time.Time
}

func newPointsChangedEvent(eventType string, a *PointAccount, amount PointsAmount, now time.Time) *PointsChangedEvent {
	return &PointsChangedEvent{
		eventID:    shared.NewEntityID[eventMarker]().String(),
		eventType:  eventType,
		memberID:   a.memberID,
		amount:     amount,
		available:  a.availablePoints,
		frozen:     a.frozenPoints,
		occurredAt: now,
	}
}

// EventID 實現 DomainEvent 介面
func (e *PointsChangedEvent) EventID() string { return e.eventID }

// EventType 實現 DomainEvent 介面
func (e *PointsChangedEvent) EventType() string { return e.eventType }

// OccurredAt 實現 DomainEvent 介面
func (e *PointsChangedEvent) OccurredAt() time.Time { return e.occurredAt }

// AggregateID 以會員 ID 作為聚合根 ID
func (e *PointsChangedEvent) AggregateID() string { return e.memberID.String() }

func (e *PointsChangedEvent) MemberID() MemberID           { return e.memberID }
func (e *PointsChangedEvent) Amount() PointsAmount         { return e.amount }
func (e *PointsChangedEvent) AvailableAfter() PointsAmount { return e.available }

// Attributes 結構化屬性，審計日誌用
func (e *PointsChangedEvent) Attributes() map[string]interface{} {
	return map[string]interface{}{
		"member_id": e.memberID.Value(),
		"amount":    e.amount.Value(),
		"available": e.available.Value(),
		"frozen":    e.frozen.Value(),
	}
}
