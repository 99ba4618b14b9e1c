package points

import (
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
)

// ===========================
// PointAccount 聚合根
// ===========================

// PointAccount 會員積分帳戶聚合根
//
// 每位會員至多一個帳戶。流水與任務記錄儲存在獨立表，聚合根只持有餘額。
//
// 業務不變條件（每個命令方法結束時成立）：
// - 所有計數 >= 0
// - availablePoints 只能因明確的獲得、使用、凍結、解凍、扣除而變動
// - totalPoints 只增不減（扣除走 usedPoints）
//
// version 用於持久化層的條件更新（CAS），由 Repository 負責遞增。
type PointAccount struct {
	id       int64
	memberID MemberID

	totalPoints     PointsAmount // 累計獲得
	usedPoints      PointsAmount // 累計使用
	availablePoints PointsAmount // 可用
	frozenPoints    PointsAmount // 凍結中
	expiredPoints   PointsAmount // 已過期
	levelPoints     PointsAmount // 等級積分

	version   int64
	createdAt time.Time
	updatedAt time.Time

	// 待發布的領域事件
	events []shared.DomainEvent
}

// NewPointAccount 創建零餘額帳戶
func NewPointAccount(memberID MemberID, now time.Time) (*PointAccount, error) {
	if memberID.IsEmpty() {
		return nil, ErrInvalidMemberID.WithContext("reason", "memberID cannot be empty")
	}

	return &PointAccount{
		memberID:  memberID,
		version:   1,
		createdAt: now,
		updatedAt: now,
		events:    make([]shared.DomainEvent, 0),
	}, nil
}

// AccountSnapshot 重建聚合根所需的持久化數據
type AccountSnapshot struct {
	ID              int64
	MemberID        int64
	TotalPoints     int64
	UsedPoints      int64
	AvailablePoints int64
	FrozenPoints    int64
	ExpiredPoints   int64
	LevelPoints     int64
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconstructPointAccount 從持久化數據重建聚合根
//
// 資料庫中的負數餘額代表數據已損壞，直接拒絕而不是帶著錯誤狀態繼續運算。
func ReconstructPointAccount(s AccountSnapshot) (*PointAccount, error) {
	memberID, err := NewMemberID(s.MemberID)
	if err != nil {
		return nil, err
	}

	values := []struct {
		name  string
		value int64
	}{
		{"total_points", s.TotalPoints},
		{"used_points", s.UsedPoints},
		{"available_points", s.AvailablePoints},
		{"frozen_points", s.FrozenPoints},
		{"expired_points", s.ExpiredPoints},
		{"level_points", s.LevelPoints},
	}
	for _, v := range values {
		if v.value < 0 {
			return nil, ErrCorruptedAccount.WithContext(
				"member_id", s.MemberID,
				"field", v.name,
				"value", v.value,
			)
		}
	}

	return &PointAccount{
		id:              s.ID,
		memberID:        memberID,
		totalPoints:     newPointsAmountUnchecked(s.TotalPoints),
		usedPoints:      newPointsAmountUnchecked(s.UsedPoints),
		availablePoints: newPointsAmountUnchecked(s.AvailablePoints),
		frozenPoints:    newPointsAmountUnchecked(s.FrozenPoints),
		expiredPoints:   newPointsAmountUnchecked(s.ExpiredPoints),
		levelPoints:     newPointsAmountUnchecked(s.LevelPoints),
		version:         s.Version,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
		events:          make([]shared.DomainEvent, 0),
	}, nil
}

// ===========================
// 查詢方法（Getters）
// ===========================

func (a *PointAccount) ID() int64                     { return a.id }
func (a *PointAccount) MemberID() MemberID            { return a.memberID }
func (a *PointAccount) TotalPoints() PointsAmount     { return a.totalPoints }
func (a *PointAccount) UsedPoints() PointsAmount      { return a.usedPoints }
func (a *PointAccount) AvailablePoints() PointsAmount { return a.availablePoints }
func (a *PointAccount) FrozenPoints() PointsAmount    { return a.frozenPoints }
func (a *PointAccount) ExpiredPoints() PointsAmount   { return a.expiredPoints }
func (a *PointAccount) LevelPoints() PointsAmount     { return a.levelPoints }
func (a *PointAccount) Version() int64                { return a.version }
func (a *PointAccount) CreatedAt() time.Time          { return a.createdAt }
func (a *PointAccount) UpdatedAt() time.Time          { return a.updatedAt }

// Snapshot 導出持久化數據
func (a *PointAccount) Snapshot() AccountSnapshot {
	return AccountSnapshot{
		ID:              a.id,
		MemberID:        a.memberID.Value(),
		TotalPoints:     a.totalPoints.Value(),
		UsedPoints:      a.usedPoints.Value(),
		AvailablePoints: a.availablePoints.Value(),
		FrozenPoints:    a.frozenPoints.Value(),
		ExpiredPoints:   a.expiredPoints.Value(),
		LevelPoints:     a.levelPoints.Value(),
		Version:         a.version,
		CreatedAt:       a.createdAt,
		UpdatedAt:       a.updatedAt,
	}
}

// HasEnoughPoints 可用積分是否 >= amount
func (a *PointAccount) HasEnoughPoints(amount PointsAmount) bool {
	return !a.availablePoints.LessThan(amount)
}

// ===========================
// 事件管理
// ===========================

func (a *PointAccount) addEvent(event shared.DomainEvent) {
	a.events = append(a.events, event)
}

// PullEvents 獲取所有待發布事件並清空列表（事務提交後調用）
func (a *PointAccount) PullEvents() []shared.DomainEvent {
	events := a.events
	a.events = make([]shared.DomainEvent, 0)
	return events
}

// ===========================
// 命令方法（狀態變更）
// ===========================

// AddPoints 增加可用積分與累計積分，levelPoints 同時計入等級積分
func (a *PointAccount) AddPoints(amount, levelPoints PointsAmount, now time.Time) error {
	if amount.IsZero() {
		return ErrInvalidPointsAmount.WithContext("operation", "add", "member_id", a.memberID.Value())
	}

	a.availablePoints = a.availablePoints.Add(amount)
	a.totalPoints = a.totalPoints.Add(amount)
	a.levelPoints = a.levelPoints.Add(levelPoints)
	a.updatedAt = now

	a.addEvent(newPointsChangedEvent(EventPointsEarned, a, amount, now))
	return nil
}

// UsePoints 使用積分：可用減少，累計使用增加
func (a *PointAccount) UsePoints(amount PointsAmount, now time.Time) error {
	if err := a.spend(amount, "use", now); err != nil {
		return err
	}
	a.addEvent(newPointsChangedEvent(EventPointsUsed, a, amount, now))
	return nil
}

// DeductPoints 管理員扣除，帳面效果與 UsePoints 相同
func (a *PointAccount) DeductPoints(amount PointsAmount, now time.Time) error {
	if err := a.spend(amount, "deduct", now); err != nil {
		return err
	}
	a.addEvent(newPointsChangedEvent(EventPointsDeducted, a, amount, now))
	return nil
}

func (a *PointAccount) spend(amount PointsAmount, operation string, now time.Time) error {
	if amount.IsZero() {
		return ErrInvalidPointsAmount.WithContext("operation", operation, "member_id", a.memberID.Value())
	}
	if !a.HasEnoughPoints(amount) {
		return ErrInsufficientPoints.WithContext(
			"member_id", a.memberID.Value(),
			"available", a.availablePoints.Value(),
			"requested", amount.Value(),
		)
	}

	a.availablePoints = newPointsAmountUnchecked(a.availablePoints.Value() - amount.Value())
	a.usedPoints = a.usedPoints.Add(amount)
	a.updatedAt = now
	return nil
}

// FreezePoints 凍結積分：可用移至凍結
func (a *PointAccount) FreezePoints(amount PointsAmount, now time.Time) error {
	if amount.IsZero() {
		return ErrInvalidPointsAmount.WithContext("operation", "freeze", "member_id", a.memberID.Value())
	}
	if !a.HasEnoughPoints(amount) {
		return ErrInsufficientPoints.WithContext(
			"member_id", a.memberID.Value(),
			"available", a.availablePoints.Value(),
			"requested", amount.Value(),
		)
	}

	a.availablePoints = newPointsAmountUnchecked(a.availablePoints.Value() - amount.Value())
	a.frozenPoints = a.frozenPoints.Add(amount)
	a.updatedAt = now

	a.addEvent(newPointsChangedEvent(EventPointsFrozen, a, amount, now))
	return nil
}

// UnfreezePoints 解凍積分
//
// toAvailable = true：返還可用積分（訂單取消）
// toAvailable = false：轉為已使用（訂單完成），可用積分不變
func (a *PointAccount) UnfreezePoints(amount PointsAmount, toAvailable bool, now time.Time) error {
	if amount.IsZero() {
		return ErrInvalidPointsAmount.WithContext("operation", "unfreeze", "member_id", a.memberID.Value())
	}
	if a.frozenPoints.LessThan(amount) {
		return ErrInsufficientFrozenPoints.WithContext(
			"member_id", a.memberID.Value(),
			"frozen", a.frozenPoints.Value(),
			"requested", amount.Value(),
		)
	}

	a.frozenPoints = newPointsAmountUnchecked(a.frozenPoints.Value() - amount.Value())
	if toAvailable {
		a.availablePoints = a.availablePoints.Add(amount)
	} else {
		a.usedPoints = a.usedPoints.Add(amount)
	}
	a.updatedAt = now

	a.addEvent(newPointsChangedEvent(EventPointsUnfrozen, a, amount, now))
	return nil
}
