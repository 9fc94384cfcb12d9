package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

type LeaveRequestType string

const (
	LeaveAbsence     LeaveRequestType = "absence"
	LeaveLate        LeaveRequestType = "late"
	LeaveEarlyLeave  LeaveRequestType = "early_leave"
	LeaveShiftChange LeaveRequestType = "shift_change"
)

var leaveRequestTypeNames = map[LeaveRequestType]string{
	LeaveAbsence:     "欠勤申請",
	LeaveLate:        "遅刻申請",
	LeaveEarlyLeave:  "早退申請",
	LeaveShiftChange: "シフト変更申請",
}

type LeaveRequestStatus string

const (
	LeaveRequestDraft    LeaveRequestStatus = "draft"
	LeaveRequestPending  LeaveRequestStatus = "pending"
	LeaveRequestApproved LeaveRequestStatus = "approved"
	LeaveRequestRejected LeaveRequestStatus = "rejected"
	// canceled は申請者都合の取り消し。rejected とは別の終端状態
	LeaveRequestCanceled LeaveRequestStatus = "canceled"
)

// LeaveRequest は欠勤・遅刻・早退・シフト変更の申請。承認対象エンティティのひとつ
type LeaveRequest struct {
	ID          int64              `json:"id"`
	UserID      int64              `json:"userID"`
	RequestType LeaveRequestType   `json:"requestType"`
	RequestDate time.Time          `json:"requestDate"`
	StartTime   *string            `json:"startTime"`
	EndTime     *string            `json:"endTime"`
	Reason      string             `json:"reason"`
	Status      LeaveRequestStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	Version     int32              `json:"-"`
}

func (lr *LeaveRequest) TypeName() string {
	return leaveRequestTypeNames[lr.RequestType]
}

func (lr *LeaveRequest) Summary() string {
	return fmt.Sprintf("%s - %s", lr.TypeName(), lr.RequestDate.Format("2006/01/02"))
}

// Validate は申請種別ごとの時刻項目の要否と理由の長さを検査する
func (lr *LeaveRequest) Validate() error {
	if _, ok := leaveRequestTypeNames[lr.RequestType]; !ok {
		return NewValidationError("requestType", "申請種別が不正です")
	}

	reasonLen := utf8.RuneCountInString(lr.Reason)
	if reasonLen < 10 || reasonLen > 500 {
		return NewValidationError("reason", "理由は10文字以上500文字以内で入力してください")
	}

	switch lr.RequestType {
	case LeaveAbsence:
		if lr.StartTime != nil || lr.EndTime != nil {
			return NewValidationError("startTime", "欠勤申請では時刻は不要です")
		}
	case LeaveLate:
		if lr.StartTime == nil {
			return NewValidationError("startTime", "遅刻申請では開始時刻が必要です")
		}
		if lr.EndTime != nil {
			return NewValidationError("endTime", "遅刻申請では終了時刻は不要です")
		}
	case LeaveEarlyLeave:
		if lr.EndTime == nil {
			return NewValidationError("endTime", "早退申請では終了時刻が必要です")
		}
		if lr.StartTime != nil {
			return NewValidationError("startTime", "早退申請では開始時刻は不要です")
		}
	case LeaveShiftChange:
		if lr.StartTime == nil || lr.EndTime == nil {
			return NewValidationError("startTime", "シフト変更申請では開始・終了時刻が必要です")
		}
		// 申請は同一日内なので日跨ぎは認めない
		if *lr.EndTime <= *lr.StartTime {
			return NewValidationError("endTime", "終了時刻は開始時刻より後に設定してください")
		}
	}

	return nil
}

func (lr *LeaveRequest) ApprovableRef() (ApprovableType, int64) {
	return ApprovableLeaveRequest, lr.ID
}

func (lr *LeaveRequest) IsAwaitingDecision() bool {
	return lr.Status == LeaveRequestPending
}

func (lr *LeaveRequest) ApproveFinal(_ time.Time) error {
	if lr.Status != LeaveRequestPending {
		return ErrInvalidTransition
	}
	lr.Status = LeaveRequestApproved
	return nil
}

func (lr *LeaveRequest) RejectFinal(_ time.Time) error {
	if lr.Status != LeaveRequestPending {
		return ErrInvalidTransition
	}
	lr.Status = LeaveRequestRejected
	return nil
}

// MarkSubmitted は draft -> pending。承認トラックの作成は呼び出し側が同一トランザクションで行う
func (lr *LeaveRequest) MarkSubmitted() error {
	if lr.Status != LeaveRequestDraft {
		return ErrInvalidTransition
	}
	lr.Status = LeaveRequestPending
	return nil
}

// MarkResubmitted は却下・取り消し済みの申請を承認待ちに戻す。
// 古いトラックの破棄と再作成は呼び出し側の責務
func (lr *LeaveRequest) MarkResubmitted() error {
	if lr.Status != LeaveRequestRejected && lr.Status != LeaveRequestCanceled {
		return ErrInvalidTransition
	}
	lr.Status = LeaveRequestPending
	return nil
}

// MarkCanceled は承認待ちの間のみ取り消しできる
func (lr *LeaveRequest) MarkCanceled() error {
	if lr.Status != LeaveRequestPending {
		return ErrInvalidTransition
	}
	lr.Status = LeaveRequestCanceled
	return nil
}
