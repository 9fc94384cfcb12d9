package repository

import (
	"context"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

// EnsureWeek は (year, week_number) の週レコードを必要に応じて作成して返す。
// 既に存在する場合はそのまま返すため、並行呼び出しでも安全
func (r *Repository) EnsureWeek(week *domain.Week) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO weeks (year, week_number, start_date, end_date, is_cross_month)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (year, week_number) DO UPDATE SET year = EXCLUDED.year
		RETURNING id, start_date, end_date, is_cross_month, created_at, version
	`

	args := []any{week.Year, week.WeekNumber, week.StartDate, week.EndDate, week.IsCrossMonth}
	dst := []any{&week.ID, &week.StartDate, &week.EndDate, &week.IsCrossMonth, &week.CreatedAt, &week.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetWeekByID(id int64) (*domain.Week, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT year, week_number, start_date, end_date, is_cross_month, created_at, version
		FROM weeks WHERE id = $1
	`

	week := &domain.Week{
		ID: id,
	}

	dst := []any{&week.Year, &week.WeekNumber, &week.StartDate, &week.EndDate, &week.IsCrossMonth, &week.CreatedAt, &week.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return week, nil
}

func (r *Repository) GetWeekByNumber(year int, weekNumber int) (*domain.Week, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, start_date, end_date, is_cross_month, created_at, version
		FROM weeks WHERE year = $1 AND week_number = $2
	`

	week := &domain.Week{
		Year:       year,
		WeekNumber: weekNumber,
	}

	dst := []any{&week.ID, &week.StartDate, &week.EndDate, &week.IsCrossMonth, &week.CreatedAt, &week.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, year, weekNumber).Scan(dst...); err != nil {
		return nil, err
	}

	return week, nil
}
