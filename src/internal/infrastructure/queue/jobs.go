package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/application/rewards"
)

// QueueName 積分任務佇列
const QueueName = "app-point"

// Kind 任務種類
type Kind string

const (
	KindEarn    Kind = "earn"
	KindConsume Kind = "consume"
)

// ErrInvalidJob 任務內容不合法，不會重試
var ErrInvalidJob = errors.New("invalid job")

// EarnJob 完成任務領取積分
//
// biz_id、client_ip 可為 null。
type EarnJob struct {
	MemberID int64  `json:"member_id"`
	TaskCode string `json:"task_code"`
	BizID    string `json:"biz_id,omitempty"`
	ClientIP string `json:"client_ip,omitempty"`
}

// Validate 檢查必填欄位
func (j EarnJob) Validate() error {
	if j.MemberID <= 0 {
		return fmt.Errorf("%w: member_id must be positive, got %d", ErrInvalidJob, j.MemberID)
	}
	if strings.TrimSpace(j.TaskCode) == "" {
		return fmt.Errorf("%w: task_code is required", ErrInvalidJob)
	}
	return nil
}

func (j EarnJob) command() rewards.EarnCommand {
	return rewards.EarnCommand{
		MemberID: j.MemberID,
		TaskCode: j.TaskCode,
		BizID:    j.BizID,
		ClientIP: j.ClientIP,
	}
}

// ConsumeJob 消費積分
//
// 數量是否為正由積分引擎判斷（返回 InvalidAmount），這裡只檢查會員與標題。
type ConsumeJob struct {
	MemberID int64  `json:"member_id"`
	Points   int64  `json:"points"`
	Title    string `json:"title"`
	OrderNo  string `json:"order_no,omitempty"`
	Remark   string `json:"remark,omitempty"`
	ClientIP string `json:"client_ip,omitempty"`
}

// Validate 檢查必填欄位
func (j ConsumeJob) Validate() error {
	if j.MemberID <= 0 {
		return fmt.Errorf("%w: member_id must be positive, got %d", ErrInvalidJob, j.MemberID)
	}
	if strings.TrimSpace(j.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidJob)
	}
	return nil
}

func (j ConsumeJob) command() rewards.ConsumeCommand {
	return rewards.ConsumeCommand{
		MemberID: j.MemberID,
		Points:   j.Points,
		Title:    j.Title,
		OrderNo:  j.OrderNo,
		Remark:   j.Remark,
		ClientIP: j.ClientIP,
	}
}

// Envelope 佇列中的一條消息
type Envelope struct {
	ID         string          `json:"id"`
	Queue      string          `json:"queue"`
	Kind       Kind            `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}
