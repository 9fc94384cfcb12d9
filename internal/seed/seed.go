package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/calendar"
	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/arbeit-hub/attendance-manager/backend/internal/repository"
	"github.com/arbeit-hub/attendance-manager/backend/internal/workhours"
)

// CSV の曜日列。月曜始まりの並びで週間シフトの 7 日に対応する
var weekdayHeaders = []string{"月", "火", "水", "木", "金", "土", "日"}

var infoHeaders = []string{"username", "氏名", "メール", "役割", "部署"}

// SeedRealData はスタッフ名簿 CSV を読み込み、部署・ユーザー・今週の週間シフトを投入する。
// 曜日列には "09:00-13:00" 形式で弊社勤務の時間帯を記載する。空欄は勤務なし
func SeedRealData(r *repository.Repository) {
	file, err := os.Open("./internal/seed/data/staff.csv")
	if err != nil {
		slog.Error("ファイルを開けませんでした", "error", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		slog.Error("ヘッダーの読み込みに失敗しました", "error", err)
		return
	}

	for _, header := range infoHeaders {
		if !slices.Contains(headers, header) {
			slog.Error("必須の情報列が見つかりません", "header", header)
			return
		}
	}

	var records []map[string]string
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("ファイルの読み込みに失敗しました", "error", err)
			return
		}

		record := make(map[string]string)
		for i, value := range row {
			record[headers[i]] = value
		}
		records = append(records, record)
	}

	// 今週の週レコードを確保する
	cw := calendar.WeekContaining(time.Now())
	week := &domain.Week{
		Year:         cw.Year,
		WeekNumber:   cw.WeekNumber,
		StartDate:    cw.StartDate,
		EndDate:      cw.EndDate,
		IsCrossMonth: cw.IsCrossMonth,
	}
	if err := r.EnsureWeek(week); err != nil {
		slog.Error("週レコードの作成に失敗しました", "error", err)
		return
	}
	submissionYear, submissionMonth := calendar.SubmissionMonth(cw)

	// 部署は重複して作らないよう名前で引き当てる
	departmentIDs := make(map[string]int64)
	for _, department := range mustDepartments(r) {
		departmentIDs[department.Name] = department.ID
	}

	for _, record := range records {
		username := record["username"]
		if username == "" {
			slog.Error("username が空の行があります", "record", record)
			continue
		}

		departmentName := record["部署"]
		var departmentID *int64
		if departmentName != "" {
			id, ok := departmentIDs[departmentName]
			if !ok {
				department := &domain.Department{Name: departmentName}
				if err := r.CreateDepartment(department); err != nil {
					slog.Error("部署の作成に失敗しました", "name", departmentName, "error", err)
					continue
				}
				departmentIDs[departmentName] = department.ID
				id = department.ID
			}
			departmentID = &id
		}

		user, err := r.GetUserByUsername(username)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				user = &domain.User{
					Username:     username,
					PasswordHash: "$2a$10$aUTaWl3vmXuQFocBkb9Qx.YJPAzNoaAcj2VC5tI45l1Roh24meCgO", // arbeit@test8403
					FullName:     record["氏名"],
					Email:        record["メール"],
					Role:         domain.Role(record["役割"]),
					DepartmentID: departmentID,
				}

				if err := r.CreateUser(user); err != nil {
					slog.Error("ユーザーの作成に失敗しました", "username", username, "error", err)
					continue
				}
			default:
				slog.Error("ユーザーの取得に失敗しました", "username", username, "error", err)
				continue
			}
		}

		// 役割に関係なく曜日列があればシフトを投入する
		shift := &domain.WeeklyShift{
			UserID:          user.ID,
			WeekID:          week.ID,
			SubmissionYear:  submissionYear,
			SubmissionMonth: int(submissionMonth),
		}
		if err := r.EnsureWeeklyShift(shift, week); err != nil {
			slog.Error("週間シフトの作成に失敗しました", "username", username, "error", err)
			continue
		}

		for i, header := range weekdayHeaders {
			value := strings.TrimSpace(record[header])
			if value == "" {
				continue
			}

			parts := strings.SplitN(value, "-", 2)
			if len(parts) != 2 {
				slog.Error("時間帯の形式が不正です", "username", username, "day", header, "value", value)
				continue
			}
			start, end := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

			ds := shift.ScheduleFor(week.StartDate.AddDate(0, 0, i))
			if ds == nil {
				continue
			}

			ds.SetTimes(domain.BucketCompany, &start, &end)
			if err := workhours.Recompute(ds); err != nil {
				slog.Error("実働時間の計算に失敗しました", "username", username, "day", header, "error", err)
				continue
			}

			if err := r.UpdateDailySchedule(ds); err != nil {
				slog.Error("日次予定の保存に失敗しました", "username", username, "day", header, "error", err)
			}
		}
	}

	slog.Info("データの投入が完了しました")
}

func mustDepartments(r *repository.Repository) []*domain.Department {
	departments, err := r.GetAllDepartments()
	if err != nil {
		slog.Error("部署一覧の取得に失敗しました", "error", err)
		return nil
	}
	return departments
}
