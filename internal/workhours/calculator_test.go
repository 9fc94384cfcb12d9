package workhours_test

import (
	"testing"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/arbeit-hub/attendance-manager/backend/internal/workhours"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestHoursBetween(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  string
	}{
		{"通常の勤務", "09:00", "17:00", "8"},
		{"深夜の日跨ぎ勤務", "22:00", "06:00", "8"},
		{"30分単位", "09:30", "13:00", "3.5"},
		{"短時間", "10:00", "10:15", "0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := workhours.HoursBetween(tt.start, tt.end)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestHoursBetween_InvalidInput(t *testing.T) {
	var vErr *domain.ValidationError

	_, err := workhours.HoursBetween("9時", "17:00")
	require.ErrorAs(t, err, &vErr)

	_, err = workhours.HoursBetween("25:00", "17:00")
	require.ErrorAs(t, err, &vErr)

	_, err = workhours.HoursBetween("09:60", "17:00")
	require.ErrorAs(t, err, &vErr)

	// 終了は開始より後でなければならない
	_, err = workhours.HoursBetween("09:00", "09:00")
	require.ErrorAs(t, err, &vErr)
}

func TestRangesOverlap(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		want                           bool
	}{
		{"完全に別の時間帯", "09:00", "12:00", "13:00", "17:00", false},
		{"重なる時間帯", "09:00", "13:00", "12:00", "17:00", true},
		{"内包される時間帯", "09:00", "18:00", "12:00", "13:00", true},
		{"終了と開始が接するのは重複ではない", "09:00", "12:00", "12:00", "17:00", false},
		{"逆順でも接するのは重複ではない", "12:00", "17:00", "09:00", "12:00", false},
		{"日跨ぎ勤務と夕方の勤務", "22:00", "06:00", "23:00", "23:30", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := workhours.RangesOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequiredBreak(t *testing.T) {
	threshold := decimal.NewFromInt(6)
	duration := decimal.NewFromInt(1)

	tests := []struct {
		worked string
		want   string
	}{
		{"4", "0"},
		{"6", "0"},    // ちょうど6時間は不要
		{"6.5", "1"},
		{"8", "1"},
		{"12", "1"},   // ちょうど12時間は追加なし
		{"12.5", "2"},
		{"18.1", "3"},
	}

	for _, tt := range tests {
		got := workhours.RequiredBreak(decimal.RequireFromString(tt.worked), threshold, duration)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "worked=%s got %s want %s", tt.worked, got, tt.want)
	}
}

func TestRecompute(t *testing.T) {
	ds := &domain.DailySchedule{
		CompanyStartTime: ptr("09:00"),
		CompanyEndTime:   ptr("13:00"),
		SidejobStartTime: ptr("18:00"),
		SidejobEndTime:   ptr("21:30"),
	}

	require.NoError(t, workhours.Recompute(ds))
	assert.True(t, ds.CompanyHours.Equal(decimal.NewFromInt(4)))
	assert.True(t, ds.SidejobHours.Equal(decimal.RequireFromString("3.5")))
	assert.True(t, ds.TotalHours().Equal(decimal.RequireFromString("7.5")))
}

func TestRecompute_MissingPairIsZero(t *testing.T) {
	// ペアの片方だけ残っている状態は勤務なしとして扱う（エラーにしない）
	ds := &domain.DailySchedule{
		CompanyStartTime: ptr("09:00"),
		CompanyHours:     decimal.NewFromInt(4),
	}

	require.NoError(t, workhours.Recompute(ds))
	assert.True(t, ds.CompanyHours.IsZero())
}
