package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type MonthEndClosingStatus string

const (
	MonthEndClosingOpen     MonthEndClosingStatus = "open"
	MonthEndClosingPending  MonthEndClosingStatus = "pending"
	MonthEndClosingClosed   MonthEndClosingStatus = "closed"
	MonthEndClosingRejected MonthEndClosingStatus = "rejected"
	MonthEndClosingCanceled MonthEndClosingStatus = "canceled"
	// locked は締め後の確定状態。以後は reopen できない
	MonthEndClosingLocked MonthEndClosingStatus = "locked"
)

// MonthEndClosing は月末締め処理。(userID, year, month) で一意。
// 合計値は月次集計からの導出キャッシュで、保存前に必ず再計算する
type MonthEndClosing struct {
	ID             int64                 `json:"id"`
	UserID         int64                 `json:"userID"`
	Year           int                   `json:"year"`
	Month          int                   `json:"month"`
	TotalWorkHours decimal.Decimal       `json:"totalWorkHours"`
	TotalWorkDays  int                   `json:"totalWorkDays"`
	OvertimeHours  decimal.Decimal       `json:"overtimeHours"`
	Status         MonthEndClosingStatus `json:"status"`
	ClosedByID     *int64                `json:"closedByID"`
	ClosedAt       *time.Time            `json:"closedAt"`
	CreatedAt      time.Time             `json:"createdAt"`
	Version        int32                 `json:"-"`
}

func (mec *MonthEndClosing) PeriodDisplay() string {
	return fmt.Sprintf("%d年%d月", mec.Year, mec.Month)
}

// RecomputeTotals は月次集計から合計勤務時間・勤務日数・超過時間を導出し直す。
// 月間上限を超えた分を超過時間として扱う
func (mec *MonthEndClosing) RecomputeTotals(totalHours decimal.Decimal, workDays int, monthlyLimit decimal.Decimal) {
	mec.TotalWorkHours = totalHours
	mec.TotalWorkDays = workDays
	if totalHours.GreaterThan(monthlyLimit) {
		mec.OvertimeHours = totalHours.Sub(monthlyLimit)
	} else {
		mec.OvertimeHours = decimal.Zero
	}
}

func (mec *MonthEndClosing) ApprovableRef() (ApprovableType, int64) {
	return ApprovableMonthEndClosing, mec.ID
}

func (mec *MonthEndClosing) IsAwaitingDecision() bool {
	return mec.Status == MonthEndClosingPending
}

func (mec *MonthEndClosing) ApproveFinal(now time.Time) error {
	if mec.Status != MonthEndClosingPending {
		return ErrInvalidTransition
	}
	mec.Status = MonthEndClosingClosed
	mec.ClosedAt = &now
	return nil
}

func (mec *MonthEndClosing) RejectFinal(_ time.Time) error {
	if mec.Status != MonthEndClosingPending {
		return ErrInvalidTransition
	}
	mec.Status = MonthEndClosingRejected
	mec.ClosedAt = nil
	mec.ClosedByID = nil
	return nil
}

func (mec *MonthEndClosing) MarkSubmitted() error {
	if mec.Status != MonthEndClosingOpen {
		return ErrInvalidTransition
	}
	mec.Status = MonthEndClosingPending
	return nil
}

func (mec *MonthEndClosing) MarkResubmitted() error {
	if mec.Status != MonthEndClosingRejected && mec.Status != MonthEndClosingCanceled {
		return ErrInvalidTransition
	}
	mec.Status = MonthEndClosingPending
	return nil
}

func (mec *MonthEndClosing) MarkCanceled() error {
	if mec.Status != MonthEndClosingPending {
		return ErrInvalidTransition
	}
	mec.Status = MonthEndClosingCanceled
	return nil
}

// MarkLocked は承認済みの締めを確定させる
func (mec *MonthEndClosing) MarkLocked(by int64, now time.Time) error {
	if mec.Status != MonthEndClosingClosed {
		return ErrInvalidTransition
	}
	mec.Status = MonthEndClosingLocked
	mec.ClosedByID = &by
	mec.ClosedAt = &now
	return nil
}

// MarkReopened は承認済み（未確定）の締めを作業中に戻す
func (mec *MonthEndClosing) MarkReopened() error {
	if mec.Status != MonthEndClosingClosed {
		return ErrInvalidTransition
	}
	mec.Status = MonthEndClosingOpen
	mec.ClosedAt = nil
	mec.ClosedByID = nil
	return nil
}
