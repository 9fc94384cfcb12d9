package domain_test

import (
	"testing"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyShift_Totals(t *testing.T) {
	ws := &domain.WeeklyShift{
		DailySchedules: []*domain.DailySchedule{
			{CompanyHours: decimal.NewFromInt(4), SidejobHours: decimal.NewFromInt(2)},
			{CompanyHours: decimal.RequireFromString("3.5")},
			{},
		},
	}

	assert.True(t, ws.CompanyHours().Equal(decimal.RequireFromString("7.5")))
	assert.True(t, ws.SidejobHours().Equal(decimal.NewFromInt(2)))
	assert.True(t, ws.TotalHours().Equal(decimal.RequireFromString("9.5")))
	assert.True(t, ws.HoursOf(domain.BucketCompany).Equal(decimal.RequireFromString("7.5")))
	assert.True(t, ws.HoursOf(domain.BucketSidejob).Equal(decimal.NewFromInt(2)))
}

func TestWeeklyShift_ScheduleFor(t *testing.T) {
	date := time.Date(2025, 10, 8, 0, 0, 0, 0, time.UTC)
	ws := &domain.WeeklyShift{
		DailySchedules: []*domain.DailySchedule{
			{ID: 1, ScheduleDate: date.AddDate(0, 0, -1)},
			{ID: 2, ScheduleDate: date},
		},
	}

	found := ws.ScheduleFor(date)
	require.NotNil(t, found)
	assert.Equal(t, int64(2), found.ID)
	assert.Nil(t, ws.ScheduleFor(date.AddDate(0, 0, 3)))
}

func TestWeeklyShift_SubmitAndWithdraw(t *testing.T) {
	ws := &domain.WeeklyShift{Status: domain.WeeklyShiftDraft}

	require.NoError(t, ws.MarkSubmitted(now))
	assert.Equal(t, domain.WeeklyShiftSubmitted, ws.Status)
	require.NotNil(t, ws.SubmittedAt)

	// 提出済みの再提出はエラー
	assert.ErrorIs(t, ws.MarkSubmitted(now), domain.ErrInvalidTransition)

	require.NoError(t, ws.MarkWithdrawn())
	assert.Equal(t, domain.WeeklyShiftDraft, ws.Status)
	assert.Nil(t, ws.SubmittedAt)

	// 下書きの取り下げはエラー
	assert.ErrorIs(t, ws.MarkWithdrawn(), domain.ErrInvalidTransition)
}

func TestMonthlySummary_RecomputeTotals(t *testing.T) {
	ms := &domain.MonthlySummary{TargetYear: 2025, TargetMonth: 10}
	shifts := []*domain.WeeklyShift{
		{DailySchedules: []*domain.DailySchedule{
			{CompanyHours: decimal.NewFromInt(10), SidejobHours: decimal.NewFromInt(5)},
		}},
		{DailySchedules: []*domain.DailySchedule{
			{CompanyHours: decimal.NewFromInt(8)},
		}},
	}

	ms.RecomputeTotals(shifts)
	assert.True(t, ms.TotalCompanyHours.Equal(decimal.NewFromInt(18)))
	assert.True(t, ms.TotalSidejobHours.Equal(decimal.NewFromInt(5)))
	assert.True(t, ms.TotalHours.Equal(decimal.NewFromInt(23)))
}

func TestMonthlySummary_CanSubmit(t *testing.T) {
	working := []*domain.WeeklyShift{
		{DailySchedules: []*domain.DailySchedule{{CompanyHours: decimal.NewFromInt(4)}}},
	}
	empty := []*domain.WeeklyShift{{}}

	ms := &domain.MonthlySummary{Status: domain.MonthlySummaryDraft}
	assert.True(t, ms.CanSubmit(working))
	assert.False(t, ms.CanSubmit(empty))
	assert.False(t, ms.CanSubmit(nil))

	ms.Status = domain.MonthlySummarySubmitted
	assert.False(t, ms.CanSubmit(working))
}

func TestMonthEndClosing_Lifecycle(t *testing.T) {
	t.Run("承認から確定まで", func(t *testing.T) {
		mec := &domain.MonthEndClosing{Status: domain.MonthEndClosingOpen}
		require.NoError(t, mec.MarkSubmitted())
		require.NoError(t, mec.ApproveFinal(now))
		assert.Equal(t, domain.MonthEndClosingClosed, mec.Status)

		require.NoError(t, mec.MarkLocked(99, now))
		assert.Equal(t, domain.MonthEndClosingLocked, mec.Status)
		require.NotNil(t, mec.ClosedByID)
		assert.Equal(t, int64(99), *mec.ClosedByID)

		// 確定後の reopen は不可
		assert.ErrorIs(t, mec.MarkReopened(), domain.ErrInvalidTransition)
	})

	t.Run("承認済みの reopen で作業中に戻る", func(t *testing.T) {
		mec := &domain.MonthEndClosing{Status: domain.MonthEndClosingOpen}
		require.NoError(t, mec.MarkSubmitted())
		require.NoError(t, mec.ApproveFinal(now))
		require.NoError(t, mec.MarkReopened())
		assert.Equal(t, domain.MonthEndClosingOpen, mec.Status)
		assert.Nil(t, mec.ClosedAt)
	})

	t.Run("却下から再提出", func(t *testing.T) {
		mec := &domain.MonthEndClosing{Status: domain.MonthEndClosingOpen}
		require.NoError(t, mec.MarkSubmitted())
		require.NoError(t, mec.RejectFinal(now))
		require.NoError(t, mec.MarkResubmitted())
		assert.Equal(t, domain.MonthEndClosingPending, mec.Status)
	})

	t.Run("超過時間の導出", func(t *testing.T) {
		mec := &domain.MonthEndClosing{Status: domain.MonthEndClosingOpen}
		mec.RecomputeTotals(decimal.NewFromInt(170), 22, decimal.NewFromInt(160))
		assert.True(t, mec.OvertimeHours.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, 22, mec.TotalWorkDays)

		mec.RecomputeTotals(decimal.NewFromInt(150), 20, decimal.NewFromInt(160))
		assert.True(t, mec.OvertimeHours.IsZero())
	})
}
