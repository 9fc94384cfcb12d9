package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WeeklyShiftStatus string

const (
	WeeklyShiftDraft     WeeklyShiftStatus = "draft"
	WeeklyShiftSubmitted WeeklyShiftStatus = "submitted"
)

// WeeklyShift は 1 人のユーザーの 1 週間分の勤務予定。
// (userID, weekID) で一意。提出先の年月は週の過半数を占める月で決まる
type WeeklyShift struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"userID"`
	WeekID          int64             `json:"weekID"`
	SubmissionYear  int               `json:"submissionYear"`
	SubmissionMonth int               `json:"submissionMonth"`
	Status          WeeklyShiftStatus `json:"status"`
	ViolationNotes  string            `json:"violationNotes"`
	SubmittedAt     *time.Time        `json:"submittedAt"`
	DailySchedules  []*DailySchedule  `json:"dailySchedules,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	Version         int32             `json:"-"`
}

func (ws *WeeklyShift) CompanyHours() decimal.Decimal {
	total := decimal.Zero
	for _, ds := range ws.DailySchedules {
		total = total.Add(ds.CompanyHours)
	}
	return total
}

func (ws *WeeklyShift) SidejobHours() decimal.Decimal {
	total := decimal.Zero
	for _, ds := range ws.DailySchedules {
		total = total.Add(ds.SidejobHours)
	}
	return total
}

func (ws *WeeklyShift) TotalHours() decimal.Decimal {
	return ws.CompanyHours().Add(ws.SidejobHours())
}

func (ws *WeeklyShift) HoursOf(bucket WorkBucket) decimal.Decimal {
	if bucket == BucketSidejob {
		return ws.SidejobHours()
	}
	return ws.CompanyHours()
}

func (ws *WeeklyShift) ScheduleFor(date time.Time) *DailySchedule {
	for _, ds := range ws.DailySchedules {
		y1, m1, d1 := ds.ScheduleDate.Date()
		y2, m2, d2 := date.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			return ds
		}
	}
	return nil
}

// MarkSubmitted は draft -> submitted の遷移のみ許可する。
// 違反チェックと永続化は呼び出し側の責務
func (ws *WeeklyShift) MarkSubmitted(now time.Time) error {
	if ws.Status != WeeklyShiftDraft {
		return ErrInvalidTransition
	}
	ws.Status = WeeklyShiftSubmitted
	ws.SubmittedAt = &now
	return nil
}

// MarkWithdrawn は submitted -> draft の取り下げ
func (ws *WeeklyShift) MarkWithdrawn() error {
	if ws.Status != WeeklyShiftSubmitted {
		return ErrInvalidTransition
	}
	ws.Status = WeeklyShiftDraft
	ws.SubmittedAt = nil
	return nil
}
