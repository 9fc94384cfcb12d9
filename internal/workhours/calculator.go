// Package workhours は 1 日分の時刻ペアの実働計算と、
// 週次・月次の労働時間制限チェックを行う
package workhours

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/shopspring/decimal"
)

const secondsPerDay = 24 * 3600

var secondsPerHour = decimal.NewFromInt(3600)

// ParseClock は "15:04" 形式の時刻を 0 時からの経過秒に変換する
func ParseClock(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, domain.NewValidationError("time", fmt.Sprintf("時刻の形式が不正です（%s）", clock))
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, domain.NewValidationError("time", fmt.Sprintf("時刻の形式が不正です（%s）", clock))
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, domain.NewValidationError("time", fmt.Sprintf("時刻の形式が不正です（%s）", clock))
	}

	return hour*3600 + minute*60, nil
}

// HoursBetween は開始から終了までの実時間を時間単位で返す。
// 終了が開始より前の場合は日跨ぎ勤務（深夜勤務等）として 24 時間を加算する。
// 加算後も終了が開始より後にならない（＝同時刻の）場合はエラー。丸めは行わない
func HoursBetween(start, end string) (decimal.Decimal, error) {
	startSec, err := ParseClock(start)
	if err != nil {
		return decimal.Zero, err
	}
	endSec, err := ParseClock(end)
	if err != nil {
		return decimal.Zero, err
	}

	if endSec < startSec {
		endSec += secondsPerDay
	}
	if endSec == startSec {
		return decimal.Zero, domain.NewValidationError("endTime", "終了時刻は開始時刻より後にしてください")
	}

	return decimal.NewFromInt(int64(endSec - startSec)).Div(secondsPerHour), nil
}

// RangesOverlap は同一日内の 2 つの時間帯の重複を判定する。
// 各時間帯は [開始, 終了) の半開区間として比較する
func RangesOverlap(aStart, aEnd, bStart, bEnd string) (bool, error) {
	aS, err := ParseClock(aStart)
	if err != nil {
		return false, err
	}
	aE, err := ParseClock(aEnd)
	if err != nil {
		return false, err
	}
	bS, err := ParseClock(bStart)
	if err != nil {
		return false, err
	}
	bE, err := ParseClock(bEnd)
	if err != nil {
		return false, err
	}

	if aE < aS {
		aE += secondsPerDay
	}
	if bE < bS {
		bE += secondsPerDay
	}

	return (aS <= bS && bS < aE) || (bS <= aS && aS < bE), nil
}

// RequiredBreak は必要な休憩時間を返す。
// 実働が threshold 時間以下なら不要、超えたら duration、
// さらに threshold 時間まるごと働くごとに duration を追加する
func RequiredBreak(worked, threshold, duration decimal.Decimal) decimal.Decimal {
	if worked.LessThanOrEqual(threshold) {
		return decimal.Zero
	}
	blocks := worked.Sub(threshold).Div(threshold).Ceil()
	return duration.Mul(blocks)
}

// Recompute は日次スケジュールの実働時間を時刻ペアから導出し直す。
// 片方しか入力されていない区分は勤務なし（0 時間）として扱う
func Recompute(ds *domain.DailySchedule) error {
	if ds.HasCompanyWork() {
		hours, err := HoursBetween(*ds.CompanyStartTime, *ds.CompanyEndTime)
		if err != nil {
			return err
		}
		ds.CompanyHours = hours
	} else {
		ds.CompanyHours = decimal.Zero
	}

	if ds.HasSidejobWork() {
		hours, err := HoursBetween(*ds.SidejobStartTime, *ds.SidejobEndTime)
		if err != nil {
			return err
		}
		ds.SidejobHours = hours
	} else {
		ds.SidejobHours = decimal.Zero
	}

	return nil
}
