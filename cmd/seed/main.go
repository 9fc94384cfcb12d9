package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/calendar"
	"github.com/arbeit-hub/attendance-manager/backend/internal/config"
	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/arbeit-hub/attendance-manager/backend/internal/repository"
	"github.com/arbeit-hub/attendance-manager/backend/internal/seed"
	"github.com/arbeit-hub/attendance-manager/backend/internal/utils"
	"github.com/arbeit-hub/attendance-manager/backend/internal/workhours"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var departmentNames = []string{"店舗運営部", "商品管理部", "カスタマーサポート部"}

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "実行する操作 (1: 部署の投入, 2: ランダムユーザーの投入, 3: 今週の週間シフトの投入, 4: 名簿 CSV の投入)")
	flag.IntVar(&n, "n", 5, "投入する件数")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("設定を読み込めませんでした", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// データベース接続プールの作成
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("データベース接続プールを作成できませんでした", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open は接続プールを作るだけで実際には接続しないため、明示的に ping する
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("データベースに接続できませんでした", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("操作が指定されていません")
	case 1:
		cnt := 0
		for _, name := range departmentNames {
			department := &domain.Department{Name: name}
			if err := repo.CreateDepartment(department); err != nil {
				slog.Error("部署を投入できませんでした", slog.String("name", name), slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("部署の投入に成功しました", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("有効なユーザー数を指定してください")
			return
		}

		departments, err := repo.GetAllDepartments()
		if err != nil {
			slog.Error("部署一覧を取得できませんでした", slog.String("error", err.Error()))
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("ランダムユーザーを生成できませんでした", slog.String("error", err.Error()))
				continue
			}

			if len(departments) > 0 {
				user.DepartmentID = &departments[rand.Intn(len(departments))].ID
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("ユーザーを投入できませんでした", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("ユーザーの投入に成功しました", slog.Int("count", n-cnt))
	case 3:
		// 今週の週レコードを確保してから全ユーザー分のシフトを作る
		cw := calendar.WeekContaining(time.Now())
		week := &domain.Week{
			Year:         cw.Year,
			WeekNumber:   cw.WeekNumber,
			StartDate:    cw.StartDate,
			EndDate:      cw.EndDate,
			IsCrossMonth: cw.IsCrossMonth,
		}
		if err := repo.EnsureWeek(week); err != nil {
			slog.Error("週レコードを作成できませんでした", slog.String("error", err.Error()))
			return
		}
		submissionYear, submissionMonth := calendar.SubmissionMonth(cw)

		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("ユーザー一覧を取得できませんでした", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, user := range users {
			if user.Role != domain.RoleStudent {
				continue
			}

			shift := &domain.WeeklyShift{
				UserID:          user.ID,
				WeekID:          week.ID,
				SubmissionYear:  submissionYear,
				SubmissionMonth: int(submissionMonth),
			}
			if err := repo.EnsureWeeklyShift(shift, week); err != nil {
				slog.Error("週間シフトを作成できませんでした", slog.String("username", user.Username), slog.String("error", err.Error()))
				continue
			}

			// 週 20 時間に収まるよう勤務日は 4 日まで
			workDays := rand.Intn(4) + 1
			for i := 0; i < workDays; i++ {
				ds := shift.ScheduleFor(week.StartDate.AddDate(0, 0, rand.Intn(7)))
				if ds == nil || ds.HasWorkingHours() {
					continue
				}

				start, end := utils.GenerateRandomWorkSlot()
				ds.SetTimes(domain.BucketCompany, &start, &end)
				if err := workhours.Recompute(ds); err != nil {
					slog.Error("実働時間を計算できませんでした", slog.String("error", err.Error()))
					continue
				}

				if err := repo.UpdateDailySchedule(ds); err != nil {
					slog.Error("日次予定を保存できませんでした", slog.String("error", err.Error()))
				}
			}

			cnt++
		}

		slog.Info("週間シフトの投入に成功しました", slog.Int("count", cnt))
	case 4:
		seed.SeedRealData(repo)
	default:
		slog.Error("指定された操作が不正です")
	}
}
