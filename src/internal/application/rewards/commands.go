package rewards

// EarnCommand 完成任務領取積分
type EarnCommand struct {
	MemberID int64
	TaskCode string
	BizID    string // 業務 ID（如動態 ID），用於去重，可為空
	ClientIP string
}

// ConsumeCommand 消費積分
type ConsumeCommand struct {
	MemberID int64
	Points   int64
	Title    string
	OrderNo  string // 非空時同一訂單只扣一次
	Remark   string
	ClientIP string
}

// FreezeCommand 凍結積分（下單時預留）
type FreezeCommand struct {
	MemberID int64
	Points   int64
	Title    string
	OrderNo  string
	ClientIP string
}

// UnfreezeCommand 解凍積分
//
// ToAvailable = true 返還可用積分（訂單取消），false 轉為已使用（訂單完成）。
type UnfreezeCommand struct {
	MemberID    int64
	Points      int64
	Title       string
	ToAvailable bool
	OrderNo     string
	ClientIP    string
}

// AdminCommand 管理員贈送或扣除積分
type AdminCommand struct {
	MemberID     int64
	Points       int64
	Title        string
	Remark       string
	OperatorID   int64
	OperatorName string
}
