package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type MonthlySummaryStatus string

const (
	MonthlySummaryDraft     MonthlySummaryStatus = "draft"
	MonthlySummarySubmitted MonthlySummaryStatus = "submitted"
)

// MonthlySummary は対象月に属する週間シフトの月次集計。
// (userID, targetYear, targetMonth) で一意。
// 合計時間は保存前に必ず構成週から再計算される導出キャッシュであり、手で書き換えない
type MonthlySummary struct {
	ID                int64                `json:"id"`
	UserID            int64                `json:"userID"`
	TargetYear        int                  `json:"targetYear"`
	TargetMonth       int                  `json:"targetMonth"`
	TotalCompanyHours decimal.Decimal      `json:"totalCompanyHours"`
	TotalSidejobHours decimal.Decimal      `json:"totalSidejobHours"`
	TotalHours        decimal.Decimal      `json:"totalHours"`
	Status            MonthlySummaryStatus `json:"status"`
	SubmittedAt       *time.Time           `json:"submittedAt"`
	CreatedAt         time.Time            `json:"createdAt"`
	Version           int32                `json:"-"`
}

func (ms *MonthlySummary) MonthName() string {
	return fmt.Sprintf("%d年%d月", ms.TargetYear, ms.TargetMonth)
}

// RecomputeTotals は構成週から合計を導出し直す
func (ms *MonthlySummary) RecomputeTotals(shifts []*WeeklyShift) {
	company := decimal.Zero
	sidejob := decimal.Zero
	for _, ws := range shifts {
		company = company.Add(ws.CompanyHours())
		sidejob = sidejob.Add(ws.SidejobHours())
	}
	ms.TotalCompanyHours = company
	ms.TotalSidejobHours = sidejob
	ms.TotalHours = company.Add(sidejob)
}

// CanSubmit は下書き状態かつ、実働のある週が 1 つ以上あることを確認する。
// ハード違反の有無は ComplianceValidator 側で別途判定する
func (ms *MonthlySummary) CanSubmit(shifts []*WeeklyShift) bool {
	if ms.Status != MonthlySummaryDraft {
		return false
	}
	for _, ws := range shifts {
		if ws.TotalHours().IsPositive() {
			return true
		}
	}
	return false
}

func (ms *MonthlySummary) MarkSubmitted(now time.Time) error {
	if ms.Status != MonthlySummaryDraft {
		return ErrInvalidTransition
	}
	ms.Status = MonthlySummarySubmitted
	ms.SubmittedAt = &now
	return nil
}

func (ms *MonthlySummary) MarkWithdrawn() error {
	if ms.Status != MonthlySummarySubmitted {
		return ErrInvalidTransition
	}
	ms.Status = MonthlySummaryDraft
	ms.SubmittedAt = nil
	return nil
}
