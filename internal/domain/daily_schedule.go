package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkBucket は勤務時間の区分。弊社勤務は週20時間制限の対象、
// 掛け持ち勤務は自己申告で週40時間の合算制限のみ対象
type WorkBucket string

const (
	BucketCompany WorkBucket = "company"
	BucketSidejob WorkBucket = "sidejob"
)

// DailySchedule は週間シフト 1 件につき 7 日分作成される。
// 時刻は "15:04" 形式の文字列で保持し、実働時間は時刻の変更のたびに再計算される
type DailySchedule struct {
	ID               int64           `json:"id"`
	WeeklyShiftID    int64           `json:"weeklyShiftID"`
	ScheduleDate     time.Time       `json:"scheduleDate"`
	CompanyStartTime *string         `json:"companyStartTime"`
	CompanyEndTime   *string         `json:"companyEndTime"`
	SidejobStartTime *string         `json:"sidejobStartTime"`
	SidejobEndTime   *string         `json:"sidejobEndTime"`
	CompanyHours     decimal.Decimal `json:"companyHours"`
	SidejobHours     decimal.Decimal `json:"sidejobHours"`
	Version          int32           `json:"-"`
}

func (ds *DailySchedule) HasCompanyWork() bool {
	return ds.CompanyStartTime != nil && ds.CompanyEndTime != nil
}

func (ds *DailySchedule) HasSidejobWork() bool {
	return ds.SidejobStartTime != nil && ds.SidejobEndTime != nil
}

func (ds *DailySchedule) HasWorkingHours() bool {
	return ds.HasCompanyWork() || ds.HasSidejobWork()
}

func (ds *DailySchedule) TotalHours() decimal.Decimal {
	return ds.CompanyHours.Add(ds.SidejobHours)
}

// SetTimes は指定区分の開始・終了時刻を書き換える。両方 nil なら勤務なしに戻す
func (ds *DailySchedule) SetTimes(bucket WorkBucket, start, end *string) {
	switch bucket {
	case BucketCompany:
		ds.CompanyStartTime = start
		ds.CompanyEndTime = end
		if start == nil || end == nil {
			ds.CompanyHours = decimal.Zero
		}
	case BucketSidejob:
		ds.SidejobStartTime = start
		ds.SidejobEndTime = end
		if start == nil || end == nil {
			ds.SidejobHours = decimal.Zero
		}
	}
}
