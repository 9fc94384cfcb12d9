package workhours

import (
	"fmt"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Limits は労働時間制限の閾値一式。config から組み立てる
type Limits struct {
	Daily          decimal.Decimal
	WeeklyCompany  decimal.Decimal
	WeeklyTotal    decimal.Decimal
	Monthly        decimal.Decimal
	WarningRatio   decimal.Decimal
	BreakThreshold decimal.Decimal
	BreakDuration  decimal.Decimal
}

func NewLimits(daily, weeklyCompany, weeklyTotal, monthly, warningRatio, breakThreshold, breakDuration float64) Limits {
	return Limits{
		Daily:          decimal.NewFromFloat(daily),
		WeeklyCompany:  decimal.NewFromFloat(weeklyCompany),
		WeeklyTotal:    decimal.NewFromFloat(weeklyTotal),
		Monthly:        decimal.NewFromFloat(monthly),
		WarningRatio:   decimal.NewFromFloat(warningRatio),
		BreakThreshold: decimal.NewFromFloat(breakThreshold),
		BreakDuration:  decimal.NewFromFloat(breakDuration),
	}
}

// DefaultLimits は法定の標準値（日8h・週20h/40h・月160h・警告80%）
func DefaultLimits() Limits {
	return NewLimits(8, 20, 40, 160, 0.8, 6, 1)
}

// Result は違反（提出ブロック）と警告（助言のみ）の一覧。
// 同じ指標についてはどちらか片方しか入らない
type Result struct {
	Violations []domain.Issue `json:"violations"`
	Warnings   []domain.Issue `json:"warnings"`
}

func (r *Result) HasViolations() bool {
	return len(r.Violations) > 0
}

func (r *Result) Merge(other Result) {
	r.Violations = append(r.Violations, other.Violations...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Validator は集計を読み取って違反・警告の一覧を作る。状態は持たない
type Validator struct {
	limits Limits
}

func NewValidator(limits Limits) *Validator {
	return &Validator{limits: limits}
}

// fmtHours は表示境界でのみ使う 1 桁丸め
func fmtHours(d decimal.Decimal) string {
	return d.Round(1).String()
}

// 超過判定は排他的（ちょうど上限値はセーフ）、
// 警告は上限の WarningRatio を超えてからハード違反になるまでの間のみ
func (v *Validator) checkCap(value, cap decimal.Decimal) (violated, warned bool) {
	if value.GreaterThan(cap) {
		return true, false
	}
	if value.GreaterThan(cap.Mul(v.limits.WarningRatio)) {
		return false, true
	}
	return false, false
}

// EvaluateWeek は週間シフト 1 件を日別・週合計の両面から検査する
func (v *Validator) EvaluateWeek(ws *domain.WeeklyShift) Result {
	result := Result{Violations: []domain.Issue{}, Warnings: []domain.Issue{}}

	for _, ds := range ws.DailySchedules {
		day := v.evaluateDay(ds)
		result.Merge(day)
	}

	companyTotal := ws.CompanyHours()
	grandTotal := ws.TotalHours()

	if violated, warned := v.checkCap(companyTotal, v.limits.WeeklyCompany); violated {
		excess := companyTotal.Sub(v.limits.WeeklyCompany)
		result.Violations = append(result.Violations, domain.Issue{
			Code:    domain.IssueWeeklyCompany,
			Message: fmt.Sprintf("弊社勤務時間が週%s時間を%s時間超過しています（合計%s時間）", fmtHours(v.limits.WeeklyCompany), fmtHours(excess), fmtHours(companyTotal)),
		})
	} else if warned {
		result.Warnings = append(result.Warnings, domain.Issue{
			Code:    domain.IssueWeeklyCompany,
			Message: fmt.Sprintf("弊社勤務時間が制限に近づいています（%s/%s時間）", fmtHours(companyTotal), fmtHours(v.limits.WeeklyCompany)),
		})
	}

	if violated, warned := v.checkCap(grandTotal, v.limits.WeeklyTotal); violated {
		excess := grandTotal.Sub(v.limits.WeeklyTotal)
		result.Violations = append(result.Violations, domain.Issue{
			Code:    domain.IssueWeeklyTotal,
			Message: fmt.Sprintf("総労働時間が週%s時間を%s時間超過しています（合計%s時間）", fmtHours(v.limits.WeeklyTotal), fmtHours(excess), fmtHours(grandTotal)),
		})
	} else if warned {
		result.Warnings = append(result.Warnings, domain.Issue{
			Code:    domain.IssueWeeklyTotal,
			Message: fmt.Sprintf("総労働時間が制限に近づいています（%s/%s時間）", fmtHours(grandTotal), fmtHours(v.limits.WeeklyTotal)),
		})
	}

	return result
}

func (v *Validator) evaluateDay(ds *domain.DailySchedule) Result {
	result := Result{}
	dateStr := ds.ScheduleDate.Format("01/02")

	overlapped := false
	if ds.HasCompanyWork() && ds.HasSidejobWork() {
		overlap, err := RangesOverlap(*ds.CompanyStartTime, *ds.CompanyEndTime, *ds.SidejobStartTime, *ds.SidejobEndTime)
		if err == nil && overlap {
			overlapped = true
			result.Violations = append(result.Violations, domain.Issue{
				Code:    domain.IssueTimeOverlap,
				Date:    dateStr,
				Message: fmt.Sprintf("%s: 弊社と掛け持ちの勤務時間が重複しています", dateStr),
			})
		}
	}

	total := ds.TotalHours()

	for _, bucket := range []struct {
		hours decimal.Decimal
		label string
	}{
		{ds.CompanyHours, "弊社"},
		{ds.SidejobHours, "掛け持ち"},
	} {
		if bucket.hours.GreaterThan(v.limits.Daily) {
			result.Violations = append(result.Violations, domain.Issue{
				Code:    domain.IssueDailyBucketLimit,
				Date:    dateStr,
				Message: fmt.Sprintf("%s: %sの労働時間が%s時間を超過しています（%s時間）", dateStr, bucket.label, fmtHours(v.limits.Daily), fmtHours(bucket.hours)),
			})
		}
	}

	if violated, warned := v.checkCap(total, v.limits.Daily); violated {
		result.Violations = append(result.Violations, domain.Issue{
			Code:    domain.IssueDailyLimit,
			Date:    dateStr,
			Message: fmt.Sprintf("%s: 1日の総労働時間が%s時間を超過しています（%s時間）", dateStr, fmtHours(v.limits.Daily), fmtHours(total)),
		})
	} else if warned {
		result.Warnings = append(result.Warnings, domain.Issue{
			Code:    domain.IssueDailyLimit,
			Date:    dateStr,
			Message: fmt.Sprintf("%s: 1日の総労働時間が制限に近づいています（%s/%s時間）", dateStr, fmtHours(total), fmtHours(v.limits.Daily)),
		})
	}

	// 休憩時間の充足チェック。拘束時間（最初の開始から最後の終了まで）のうち
	// 実働でない時間を休憩に充てられるとみなす。重複日はここでは判定しない
	if !overlapped && total.GreaterThan(v.limits.BreakThreshold) {
		required := RequiredBreak(total, v.limits.BreakThreshold, v.limits.BreakDuration)
		idle := v.idleHours(ds)
		if idle.LessThan(required) {
			result.Violations = append(result.Violations, domain.Issue{
				Code:    domain.IssueBreakInsufficient,
				Date:    dateStr,
				Message: fmt.Sprintf("%s: 休憩時間が不足しています（必要%s時間・確保%s時間）", dateStr, fmtHours(required), fmtHours(idle)),
			})
		}
	}

	if total.GreaterThanOrEqual(decimal.NewFromInt(10)) {
		result.Warnings = append(result.Warnings, domain.Issue{
			Code:    domain.IssueLongDay,
			Date:    dateStr,
			Message: fmt.Sprintf("%s: 長時間労働です（%s時間）。体調管理にご注意ください", dateStr, fmtHours(total)),
		})
	}

	if v.hasNightWork(ds) {
		result.Warnings = append(result.Warnings, domain.Issue{
			Code:    domain.IssueNightWork,
			Date:    dateStr,
			Message: fmt.Sprintf("%s: 深夜時間帯（22:00〜5:00）の勤務が含まれています", dateStr),
		})
	}

	return result
}

// idleHours は拘束時間から実働を引いた残り。単一区分のみの日は 0 になる
func (v *Validator) idleHours(ds *domain.DailySchedule) decimal.Decimal {
	type span struct{ start, end int }
	spans := []span{}

	appendSpan := func(start, end *string) {
		if start == nil || end == nil {
			return
		}
		s, err1 := ParseClock(*start)
		e, err2 := ParseClock(*end)
		if err1 != nil || err2 != nil {
			return
		}
		if e < s {
			e += secondsPerDay
		}
		spans = append(spans, span{s, e})
	}
	appendSpan(ds.CompanyStartTime, ds.CompanyEndTime)
	appendSpan(ds.SidejobStartTime, ds.SidejobEndTime)

	if len(spans) == 0 {
		return decimal.Zero
	}

	earliest := spans[0].start
	latest := spans[0].end
	workedSec := 0
	for _, sp := range spans {
		if sp.start < earliest {
			earliest = sp.start
		}
		if sp.end > latest {
			latest = sp.end
		}
		workedSec += sp.end - sp.start
	}

	idleSec := (latest - earliest) - workedSec
	if idleSec < 0 {
		idleSec = 0
	}
	return decimal.NewFromInt(int64(idleSec)).Div(secondsPerHour)
}

func (v *Validator) hasNightWork(ds *domain.DailySchedule) bool {
	inNight := func(clock *string) bool {
		if clock == nil {
			return false
		}
		sec, err := ParseClock(*clock)
		if err != nil {
			return false
		}
		hour := sec / 3600
		return hour >= 22 || hour < 5
	}
	return inNight(ds.CompanyStartTime) || inNight(ds.CompanyEndTime) ||
		inNight(ds.SidejobStartTime) || inNight(ds.SidejobEndTime)
}

// EvaluateMonth は構成週の全評価を束ね、月間上限のチェックを追加する
func (v *Validator) EvaluateMonth(ms *domain.MonthlySummary, shifts []*domain.WeeklyShift) Result {
	result := Result{Violations: []domain.Issue{}, Warnings: []domain.Issue{}}

	total := decimal.Zero
	for _, ws := range shifts {
		result.Merge(v.EvaluateWeek(ws))
		total = total.Add(ws.TotalHours())
	}

	if violated, warned := v.checkCap(total, v.limits.Monthly); violated {
		result.Violations = append(result.Violations, domain.Issue{
			Code:    domain.IssueMonthlyTotal,
			Message: fmt.Sprintf("%s: 月間総労働時間が%s時間を超過しています（%s時間）", ms.MonthName(), fmtHours(v.limits.Monthly), fmtHours(total)),
		})
	} else if warned {
		result.Warnings = append(result.Warnings, domain.Issue{
			Code:    domain.IssueMonthlyTotal,
			Message: fmt.Sprintf("%s: 月間総労働時間が制限に近づいています（%s/%s時間）", ms.MonthName(), fmtHours(total), fmtHours(v.limits.Monthly)),
		})
	}

	return result
}
