package workhours_test

import (
	"testing"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/arbeit-hub/attendance-manager/backend/internal/workhours"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 時間数だけを持つ日次スケジュール。時刻ペアが不要なテスト用
func dayWithHours(company, sidejob float64) *domain.DailySchedule {
	return &domain.DailySchedule{
		ScheduleDate: time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC),
		CompanyHours: decimal.NewFromFloat(company),
		SidejobHours: decimal.NewFromFloat(sidejob),
	}
}

// 時刻ペアから実働を導出した日次スケジュール
func dayWithTimes(t *testing.T, companyStart, companyEnd, sidejobStart, sidejobEnd string) *domain.DailySchedule {
	t.Helper()
	ds := &domain.DailySchedule{
		ScheduleDate: time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC),
	}
	if companyStart != "" {
		ds.CompanyStartTime = ptr(companyStart)
		ds.CompanyEndTime = ptr(companyEnd)
	}
	if sidejobStart != "" {
		ds.SidejobStartTime = ptr(sidejobStart)
		ds.SidejobEndTime = ptr(sidejobEnd)
	}
	require.NoError(t, workhours.Recompute(ds))
	return ds
}

func weekOf(days ...*domain.DailySchedule) *domain.WeeklyShift {
	return &domain.WeeklyShift{Status: domain.WeeklyShiftDraft, DailySchedules: days}
}

func codes(issues []domain.Issue) []domain.IssueCode {
	out := make([]domain.IssueCode, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Code)
	}
	return out
}

func TestEvaluateWeek_WeeklyCompanyCap(t *testing.T) {
	v := workhours.NewValidator(workhours.DefaultLimits())

	t.Run("ちょうど20時間は違反にならない", func(t *testing.T) {
		ws := weekOf(
			dayWithHours(4, 0), dayWithHours(4, 0), dayWithHours(4, 0),
			dayWithHours(4, 0), dayWithHours(4, 0),
		)
		result := v.EvaluateWeek(ws)
		assert.False(t, result.HasViolations())
		// 80% を超えているので警告は出る
		assert.Contains(t, codes(result.Warnings), domain.IssueWeeklyCompany)
	})

	t.Run("21時間は弊社週制限の違反が1件だけ出る", func(t *testing.T) {
		ws := weekOf(
			dayWithHours(3.5, 0), dayWithHours(3.5, 0), dayWithHours(3.5, 0),
			dayWithHours(3.5, 0), dayWithHours(3.5, 0), dayWithHours(3.5, 0),
		)
		result := v.EvaluateWeek(ws)
		require.Equal(t, []domain.IssueCode{domain.IssueWeeklyCompany}, codes(result.Violations))
		// 違反した指標に重ねて警告は出さない
		assert.NotContains(t, codes(result.Warnings), domain.IssueWeeklyCompany)
	})

	t.Run("16時間以下は警告も出ない", func(t *testing.T) {
		ws := weekOf(dayWithHours(4, 0), dayWithHours(4, 0), dayWithHours(4, 0), dayWithHours(4, 0))
		result := v.EvaluateWeek(ws)
		assert.False(t, result.HasViolations())
		assert.NotContains(t, codes(result.Warnings), domain.IssueWeeklyCompany)
	})
}

func TestEvaluateWeek_WeeklyTotalCap(t *testing.T) {
	v := workhours.NewValidator(workhours.DefaultLimits())

	// 弊社 18h + 掛け持ち 24h = 42h。弊社単独では制限内
	ws := weekOf(
		dayWithHours(3, 4), dayWithHours(3, 4), dayWithHours(3, 4),
		dayWithHours(3, 4), dayWithHours(3, 4), dayWithHours(3, 4),
	)
	result := v.EvaluateWeek(ws)
	assert.Contains(t, codes(result.Violations), domain.IssueWeeklyTotal)
	assert.NotContains(t, codes(result.Violations), domain.IssueWeeklyCompany)
}

func TestEvaluateWeek_DailyRules(t *testing.T) {
	v := workhours.NewValidator(workhours.DefaultLimits())

	t.Run("勤務時間の重複", func(t *testing.T) {
		ws := weekOf(dayWithTimes(t, "09:00", "13:00", "12:00", "15:00"))
		result := v.EvaluateWeek(ws)
		assert.Contains(t, codes(result.Violations), domain.IssueTimeOverlap)
		// 重複日では休憩不足を重ねて判定しない
		assert.NotContains(t, codes(result.Violations), domain.IssueBreakInsufficient)
	})

	t.Run("1日9時間は日次制限の違反", func(t *testing.T) {
		ws := weekOf(dayWithHours(5, 4))
		result := v.EvaluateWeek(ws)
		assert.Contains(t, codes(result.Violations), domain.IssueDailyLimit)
	})

	t.Run("単一区分で日次上限を超えると区分違反も出る", func(t *testing.T) {
		ws := weekOf(dayWithHours(9, 0))
		result := v.EvaluateWeek(ws)
		assert.Contains(t, codes(result.Violations), domain.IssueDailyBucketLimit)
		assert.Contains(t, codes(result.Violations), domain.IssueDailyLimit)
	})
}

func TestEvaluateWeek_BreakSufficiency(t *testing.T) {
	v := workhours.NewValidator(workhours.DefaultLimits())

	t.Run("7時間連続勤務は休憩が確保できず違反", func(t *testing.T) {
		ws := weekOf(dayWithTimes(t, "09:00", "16:00", "", ""))
		result := v.EvaluateWeek(ws)
		assert.Contains(t, codes(result.Violations), domain.IssueBreakInsufficient)
	})

	t.Run("区分間に1時間空けば7時間でも違反なし", func(t *testing.T) {
		ws := weekOf(dayWithTimes(t, "09:00", "13:00", "14:00", "17:00"))
		result := v.EvaluateWeek(ws)
		assert.NotContains(t, codes(result.Violations), domain.IssueBreakInsufficient)
	})

	t.Run("ちょうど6時間は休憩不要", func(t *testing.T) {
		ws := weekOf(dayWithTimes(t, "09:00", "15:00", "", ""))
		result := v.EvaluateWeek(ws)
		assert.False(t, result.HasViolations())
	})
}

func TestEvaluateWeek_AdvisoryWarnings(t *testing.T) {
	v := workhours.NewValidator(workhours.DefaultLimits())

	t.Run("深夜時間帯の勤務は警告", func(t *testing.T) {
		ws := weekOf(dayWithTimes(t, "", "", "22:00", "02:00"))
		result := v.EvaluateWeek(ws)
		assert.Contains(t, codes(result.Warnings), domain.IssueNightWork)
	})

	t.Run("10時間以上は長時間労働の警告", func(t *testing.T) {
		ws := weekOf(dayWithHours(5, 5))
		result := v.EvaluateWeek(ws)
		assert.Contains(t, codes(result.Warnings), domain.IssueLongDay)
	})
}

func TestEvaluateMonth(t *testing.T) {
	v := workhours.NewValidator(workhours.DefaultLimits())
	ms := &domain.MonthlySummary{TargetYear: 2025, TargetMonth: 10}

	// 掛け持ちのみ週28時間の週を作る（週次の制限・警告に掛からない構成）
	sidejobWeek := func() *domain.WeeklyShift {
		return weekOf(
			dayWithHours(0, 4), dayWithHours(0, 4), dayWithHours(0, 4), dayWithHours(0, 4),
			dayWithHours(0, 4), dayWithHours(0, 4), dayWithHours(0, 4),
		)
	}

	t.Run("6週で168時間は月間制限の違反", func(t *testing.T) {
		shifts := []*domain.WeeklyShift{
			sidejobWeek(), sidejobWeek(), sidejobWeek(),
			sidejobWeek(), sidejobWeek(), sidejobWeek(),
		}
		result := v.EvaluateMonth(ms, shifts)
		assert.Equal(t, []domain.IssueCode{domain.IssueMonthlyTotal}, codes(result.Violations))
	})

	t.Run("5週で140時間は警告のみ", func(t *testing.T) {
		shifts := []*domain.WeeklyShift{
			sidejobWeek(), sidejobWeek(), sidejobWeek(), sidejobWeek(), sidejobWeek(),
		}
		result := v.EvaluateMonth(ms, shifts)
		assert.False(t, result.HasViolations())
		assert.Contains(t, codes(result.Warnings), domain.IssueMonthlyTotal)
	})
}
