package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

// EnsureWeeklyShift は (user_id, week_id) の週間シフトを取得し、
// 存在しない場合は 7 日分の日次スケジュールと一緒に作成する。
// 作成と取得を同一トランザクションで行うため二重作成は起こらない
func (r *Repository) EnsureWeeklyShift(shift *domain.WeeklyShift, week *domain.Week) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		SELECT id, submission_year, submission_month, status, violation_notes, submitted_at, created_at, version
		FROM weekly_shifts
		WHERE user_id = $1 AND week_id = $2
	`

	dst := []any{&shift.ID, &shift.SubmissionYear, &shift.SubmissionMonth, &shift.Status, &shift.ViolationNotes, &shift.SubmittedAt, &shift.CreatedAt, &shift.Version}
	err = tx.QueryRowContext(ctx, query, shift.UserID, shift.WeekID).Scan(dst...)
	switch {
	case err == nil:
		// 既存のシフトに日次スケジュールを付けて返す
		if shift.DailySchedules, err = r.getDailySchedules(ctx, tx, shift.ID); err != nil {
			return err
		}
		return tx.Commit()
	case errors.Is(err, sql.ErrNoRows):
		// 作成ルートへ
	default:
		return err
	}

	query = `
		INSERT INTO weekly_shifts (user_id, week_id, submission_year, submission_month, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, violation_notes, created_at, version
	`

	shift.Status = domain.WeeklyShiftDraft
	args := []any{shift.UserID, shift.WeekID, shift.SubmissionYear, shift.SubmissionMonth, shift.Status}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.ViolationNotes, &shift.CreatedAt, &shift.Version); err != nil {
		return err
	}

	shift.DailySchedules = make([]*domain.DailySchedule, 0, 7)
	for i := 0; i < 7; i++ {
		query := `
			INSERT INTO daily_schedules (weekly_shift_id, schedule_date)
			VALUES ($1, $2)
			RETURNING id, version
		`

		ds := &domain.DailySchedule{
			WeeklyShiftID: shift.ID,
			ScheduleDate:  week.StartDate.AddDate(0, 0, i),
		}
		if err := tx.QueryRowContext(ctx, query, shift.ID, ds.ScheduleDate).Scan(&ds.ID, &ds.Version); err != nil {
			return err
		}
		shift.DailySchedules = append(shift.DailySchedules, ds)
	}

	return tx.Commit()
}

func (r *Repository) GetWeeklyShiftByID(id int64) (*domain.WeeklyShift, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT user_id, week_id, submission_year, submission_month, status, violation_notes, submitted_at, created_at, version
		FROM weekly_shifts WHERE id = $1
	`

	shift := &domain.WeeklyShift{
		ID: id,
	}

	dst := []any{&shift.UserID, &shift.WeekID, &shift.SubmissionYear, &shift.SubmissionMonth, &shift.Status, &shift.ViolationNotes, &shift.SubmittedAt, &shift.CreatedAt, &shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	var err error
	if shift.DailySchedules, err = r.getDailySchedules(ctx, r.dbpool, shift.ID); err != nil {
		return nil, err
	}

	return shift, nil
}

// GetWeeklyShiftsForMonth は提出先が (year, month) である本人の全シフトを返す
func (r *Repository) GetWeeklyShiftsForMonth(userID int64, year int, month int) ([]*domain.WeeklyShift, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, week_id, submission_year, submission_month, status, violation_notes, submitted_at, created_at, version
		FROM weekly_shifts
		WHERE user_id = $1 AND submission_year = $2 AND submission_month = $3
		ORDER BY week_id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, userID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.WeeklyShift, 0)
	for rows.Next() {
		shift := &domain.WeeklyShift{
			UserID: userID,
		}
		dst := []any{&shift.ID, &shift.WeekID, &shift.SubmissionYear, &shift.SubmissionMonth, &shift.Status, &shift.ViolationNotes, &shift.SubmittedAt, &shift.CreatedAt, &shift.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, shift := range shifts {
		if shift.DailySchedules, err = r.getDailySchedules(ctx, r.dbpool, shift.ID); err != nil {
			return nil, err
		}
	}

	return shifts, nil
}

// UpdateWeeklyShift は状態・違反メモ・提出時刻を楽観ロック付きで保存する
func (r *Repository) UpdateWeeklyShift(shift *domain.WeeklyShift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE weekly_shifts
		SET
			status = $1,
			violation_notes = $2,
			submitted_at = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	args := []any{shift.Status, shift.ViolationNotes, shift.SubmittedAt, shift.ID, shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.Version); err != nil {
		return err
	}

	return nil
}

// UpdateDailySchedule は時刻ペアと導出済みの実働時間をまとめて保存する
func (r *Repository) UpdateDailySchedule(ds *domain.DailySchedule) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE daily_schedules
		SET
			company_start_time = $1,
			company_end_time = $2,
			sidejob_start_time = $3,
			sidejob_end_time = $4,
			company_hours = $5,
			sidejob_hours = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	args := []any{ds.CompanyStartTime, ds.CompanyEndTime, ds.SidejobStartTime, ds.SidejobEndTime, ds.CompanyHours, ds.SidejobHours, ds.ID, ds.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&ds.Version); err != nil {
		return err
	}

	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *Repository) getDailySchedules(ctx context.Context, q queryer, weeklyShiftID int64) ([]*domain.DailySchedule, error) {
	query := `
		SELECT id, schedule_date, company_start_time, company_end_time, sidejob_start_time, sidejob_end_time, company_hours, sidejob_hours, version
		FROM daily_schedules
		WHERE weekly_shift_id = $1
		ORDER BY schedule_date
	`

	rows, err := q.QueryContext(ctx, query, weeklyShiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]*domain.DailySchedule, 0, 7)
	for rows.Next() {
		ds := &domain.DailySchedule{
			WeeklyShiftID: weeklyShiftID,
		}
		dst := []any{&ds.ID, &ds.ScheduleDate, &ds.CompanyStartTime, &ds.CompanyEndTime, &ds.SidejobStartTime, &ds.SidejobEndTime, &ds.CompanyHours, &ds.SidejobHours, &ds.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		schedules = append(schedules, ds)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}
