package task

import "time"

// Day 日曆日，格式 2006-01-02，按配置時區計算
type Day string

const dayLayout = "2006-01-02"

// DayOf 返回 t 在 loc 時區的日曆日
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return Day(t.In(loc).Format(dayLayout))
}

// Start 當日零點
func (d Day) Start(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dayLayout, string(d), loc)
}

func (d Day) String() string { return string(d) }

// CompletionRecord 任務完成記錄
//
// CompleteCount 是當日第幾次完成（成長任務恆為 1）。
type CompletionRecord struct {
	ID            int64
	MemberID      int64
	TaskID        int64
	TaskCode      string
	TaskType      TypeCode
	PointValue    int64
	CompleteDate  Day
	CompleteCount int64
	BizID         string
	CreatedAt     time.Time
}

// GrowthState 會員成長任務狀態
type GrowthState struct {
	ID           int64
	MemberID     int64
	TaskID       int64
	TaskCode     string
	IsCompleted  bool
	CompleteTime *time.Time
	PointValue   int64
}
