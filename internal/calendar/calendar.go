// Package calendar は月曜始まりの週窓の生成と、月跨ぎ週の帰属判定を行う。
// 全て純粋関数で、有効な日付に対して失敗しない
package calendar

import (
	"time"
)

// Week は ISO 週番号 (Year, WeekNumber) で識別される不変の週窓。
// StartDate は必ず月曜、EndDate はその 6 日後の日曜
type Week struct {
	Year         int
	WeekNumber   int
	StartDate    time.Time
	EndDate      time.Time
	IsCrossMonth bool
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekContaining は指定日を含む月曜〜日曜の週窓を返す。
// 同じ週内のどの日付を渡しても同一の (Year, WeekNumber) が得られる
func WeekContaining(date time.Time) Week {
	d := truncateToDay(date)

	// time.Weekday は日曜が 0 なので月曜起点に読み替える
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)

	year, weekNumber := start.ISOWeek()

	return Week{
		Year:         year,
		WeekNumber:   weekNumber,
		StartDate:    start,
		EndDate:      end,
		IsCrossMonth: start.Month() != end.Month(),
	}
}

// WeeksOverlapping は指定月と重なる全ての週を開始日順に列挙する。
// 月初・月末の月跨ぎ週も含まれる
func WeeksOverlapping(year int, month time.Month) []Week {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	weeks := []Week{}
	for cur := WeekContaining(first); !cur.StartDate.After(last); cur = WeekContaining(cur.StartDate.AddDate(0, 0, 7)) {
		weeks = append(weeks, cur)
	}

	return weeks
}

// DaysInMonth は週のうち指定月に含まれる日数を返す
func DaysInMonth(w Week, year int, month time.Month) int {
	count := 0
	for d := w.StartDate; !d.After(w.EndDate); d = d.AddDate(0, 0, 1) {
		if d.Year() == year && d.Month() == month {
			count++
		}
	}
	return count
}

// SubmissionMonth は週の提出先となる年月を返す。
// 月跨ぎ週は日数の多い方の月に帰属し、同数（あり得ないが）の場合は開始日側とする
func SubmissionMonth(w Week) (int, time.Month) {
	if !w.IsCrossMonth {
		return w.StartDate.Year(), w.StartDate.Month()
	}

	startDays := DaysInMonth(w, w.StartDate.Year(), w.StartDate.Month())
	endDays := DaysInMonth(w, w.EndDate.Year(), w.EndDate.Month())

	if startDays >= endDays {
		return w.StartDate.Year(), w.StartDate.Month()
	}
	return w.EndDate.Year(), w.EndDate.Month()
}

// Contains は日付が週の範囲内にあるかを返す
func Contains(w Week, date time.Time) bool {
	d := truncateToDay(date)
	return !d.Before(w.StartDate) && !d.After(w.EndDate)
}
