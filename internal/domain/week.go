package domain

import (
	"fmt"
	"time"
)

// Week は月曜始まり・日曜終わりの固定窓。(year, weekNumber) は ISO 週番号で一意
type Week struct {
	ID           int64     `json:"id"`
	Year         int       `json:"year"`
	WeekNumber   int       `json:"weekNumber"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	IsCrossMonth bool      `json:"isCrossMonth"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

func (w *Week) ContainsDate(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(w.StartDate) && !d.After(w.EndDate)
}

func (w *Week) DisplayRange() string {
	return fmt.Sprintf("%s-%s", w.StartDate.Format("01/02"), w.EndDate.Format("01/02"))
}

func (w *Week) Title() string {
	return fmt.Sprintf("%d年 第%d週 (%s)", w.Year, w.WeekNumber, w.DisplayRange())
}
