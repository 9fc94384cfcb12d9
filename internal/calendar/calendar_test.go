package calendar_test

import (
	"testing"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekContaining(t *testing.T) {
	tests := []struct {
		name      string
		input     time.Time
		wantStart time.Time
		wantEnd   time.Time
		wantCross bool
	}{
		{
			name:      "週の途中の水曜日",
			input:     date(2025, time.October, 15),
			wantStart: date(2025, time.October, 13),
			wantEnd:   date(2025, time.October, 19),
			wantCross: false,
		},
		{
			name:      "月曜日そのもの",
			input:     date(2025, time.October, 13),
			wantStart: date(2025, time.October, 13),
			wantEnd:   date(2025, time.October, 19),
			wantCross: false,
		},
		{
			name:      "日曜日は前週の月曜に揃う",
			input:     date(2025, time.October, 19),
			wantStart: date(2025, time.October, 13),
			wantEnd:   date(2025, time.October, 19),
			wantCross: false,
		},
		{
			name:      "月跨ぎの週",
			input:     date(2025, time.September, 30),
			wantStart: date(2025, time.September, 29),
			wantEnd:   date(2025, time.October, 5),
			wantCross: true,
		},
		{
			name:      "年跨ぎの週",
			input:     date(2025, time.December, 31),
			wantStart: date(2025, time.December, 29),
			wantEnd:   date(2026, time.January, 4),
			wantCross: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := calendar.WeekContaining(tt.input)
			assert.Equal(t, tt.wantStart, w.StartDate)
			assert.Equal(t, tt.wantEnd, w.EndDate)
			assert.Equal(t, tt.wantCross, w.IsCrossMonth)
			assert.Equal(t, time.Monday, w.StartDate.Weekday())
			assert.Equal(t, tt.wantStart.AddDate(0, 0, 6), w.EndDate)
		})
	}
}

func TestWeekContaining_Idempotent(t *testing.T) {
	// 同じ週のどの日でも同一の識別子が得られる
	base := calendar.WeekContaining(date(2025, time.October, 13))
	for i := 0; i < 7; i++ {
		w := calendar.WeekContaining(date(2025, time.October, 13+i))
		require.Equal(t, base.Year, w.Year)
		require.Equal(t, base.WeekNumber, w.WeekNumber)
		require.Equal(t, base.StartDate, w.StartDate)
	}
}

func TestWeeksOverlapping(t *testing.T) {
	// 2025年10月: 10/1(水) 〜 10/31(金)。前後に月跨ぎ週を含めて 5 週
	weeks := calendar.WeeksOverlapping(2025, time.October)
	require.Len(t, weeks, 5)

	assert.Equal(t, date(2025, time.September, 29), weeks[0].StartDate)
	assert.True(t, weeks[0].IsCrossMonth)
	assert.Equal(t, date(2025, time.October, 27), weeks[4].StartDate)
	assert.True(t, weeks[4].IsCrossMonth)

	// 開始日順
	for i := 1; i < len(weeks); i++ {
		assert.True(t, weeks[i-1].StartDate.Before(weeks[i].StartDate))
	}
}

func TestDaysInMonth_CrossMonthSplit(t *testing.T) {
	// 月跨ぎ週の両月への配分は必ず合計 7 日になる
	w := calendar.WeekContaining(date(2025, time.September, 30))
	require.True(t, w.IsCrossMonth)

	sep := calendar.DaysInMonth(w, 2025, time.September)
	oct := calendar.DaysInMonth(w, 2025, time.October)
	assert.Equal(t, 2, sep) // 9/29, 9/30
	assert.Equal(t, 5, oct) // 10/1〜10/5
	assert.Equal(t, 7, sep+oct)
}

func TestSubmissionMonth(t *testing.T) {
	tests := []struct {
		name      string
		anyDay    time.Time
		wantYear  int
		wantMonth time.Month
	}{
		{
			name:      "月内に収まる週は開始月",
			anyDay:    date(2025, time.October, 15),
			wantYear:  2025,
			wantMonth: time.October,
		},
		{
			name:      "9/29始まりの週は10月側が5日で10月扱い",
			anyDay:    date(2025, time.September, 30),
			wantYear:  2025,
			wantMonth: time.October,
		},
		{
			name:      "10/27始まりの週は10月側が5日で10月扱い",
			anyDay:    date(2025, time.October, 29),
			wantYear:  2025,
			wantMonth: time.October,
		},
		{
			name:      "年跨ぎ週は日数の多い1月側",
			anyDay:    date(2025, time.December, 30),
			wantYear:  2026,
			wantMonth: time.January,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := calendar.WeekContaining(tt.anyDay)
			y, m := calendar.SubmissionMonth(w)
			assert.Equal(t, tt.wantYear, y)
			assert.Equal(t, tt.wantMonth, m)
		})
	}
}

func TestContains(t *testing.T) {
	w := calendar.WeekContaining(date(2025, time.October, 15))
	assert.True(t, calendar.Contains(w, date(2025, time.October, 13)))
	assert.True(t, calendar.Contains(w, date(2025, time.October, 19)))
	assert.False(t, calendar.Contains(w, date(2025, time.October, 20)))
	assert.False(t, calendar.Contains(w, date(2025, time.October, 12)))
}
