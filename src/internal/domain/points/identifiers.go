package points

import "strconv"

// MemberID 會員識別符
//
// 會員由外部身份系統管理，本系統只保存其數字 ID；0 與負數都不是合法 ID。
type MemberID int64

// NewMemberID 從外部輸入建構 MemberID（checked 版本）
func NewMemberID(value int64) (MemberID, error) {
	if value <= 0 {
		return 0, ErrInvalidMemberID.WithContext("member_id", value)
	}
	return MemberID(value), nil
}

// Value 返回底層整數
func (id MemberID) Value() int64 {
	return int64(id)
}

// IsEmpty 是否為零值
func (id MemberID) IsEmpty() bool {
	return id <= 0
}

func (id MemberID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
