package points

import (
	"strings"
	"time"
)

// LedgerEntry 積分流水（不可變審計記錄）
//
// BeforePoints / AfterPoints 是可用積分快照，必須滿足 AfterPoints - BeforePoints == ChangeValue。
// FrozenChange 記錄凍結積分的變動（凍結 +n，解凍 -n），其他類型為 0。
// 字串欄位為空代表 NULL。
type LedgerEntry struct {
	ID             int64
	MemberID       MemberID
	ChangeType     ChangeType
	ChangeValue    int64
	FrozenChange   int64
	BeforePoints   int64
	AfterPoints    int64
	SourceType     SourceType
	SourceID       string
	OrderNo        string
	TaskCode       string
	Title          string
	Remark         string
	OperatorID     int64
	OperatorName   string
	ClientIP       string
	IdempotencyKey string
	CreatedAt      time.Time
}

// NewLedgerEntry 建構並驗證一條新流水（ID 由持久化層分配）
func NewLedgerEntry(e LedgerEntry) (*LedgerEntry, error) {
	if e.MemberID.IsEmpty() {
		return nil, ErrInvalidMemberID.WithContext("reason", "ledger entry without member")
	}
	if !e.ChangeType.IsValid() {
		return nil, ErrInvalidLedgerEntry.WithContext("change_type", int16(e.ChangeType))
	}
	if !e.SourceType.IsValid() {
		return nil, ErrInvalidLedgerEntry.WithContext("source_type", int16(e.SourceType))
	}
	if e.BeforePoints < 0 || e.AfterPoints < 0 {
		return nil, ErrInvalidLedgerEntry.WithContext(
			"before", e.BeforePoints,
			"after", e.AfterPoints,
		)
	}
	if e.AfterPoints-e.BeforePoints != e.ChangeValue {
		return nil, ErrLedgerImbalance.WithContext(
			"before", e.BeforePoints,
			"after", e.AfterPoints,
			"change", e.ChangeValue,
		)
	}
	if strings.TrimSpace(e.Title) == "" {
		return nil, ErrInvalidLedgerEntry.WithContext("reason", "title is required")
	}

	entry := e
	entry.ID = 0
	return &entry, nil
}

// IdempotencyKey 訂單類操作的去重鍵，orderNo 為空時返回空字串（不去重）
func IdempotencyKey(operation string, memberID MemberID, orderNo string) string {
	if orderNo == "" {
		return ""
	}
	return operation + ":" + memberID.String() + ":" + orderNo
}
