package repository

import (
	"context"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

// EnsureMonthlySummary は (user_id, target_year, target_month) の月次集計を
// 必要に応じて作成して返す
func (r *Repository) EnsureMonthlySummary(summary *domain.MonthlySummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO monthly_summaries (user_id, target_year, target_month, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, target_year, target_month) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, total_company_hours, total_sidejob_hours, total_hours, status, submitted_at, created_at, version
	`

	args := []any{summary.UserID, summary.TargetYear, summary.TargetMonth, domain.MonthlySummaryDraft}
	dst := []any{&summary.ID, &summary.TotalCompanyHours, &summary.TotalSidejobHours, &summary.TotalHours, &summary.Status, &summary.SubmittedAt, &summary.CreatedAt, &summary.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetMonthlySummaryByID(id int64) (*domain.MonthlySummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT user_id, target_year, target_month, total_company_hours, total_sidejob_hours, total_hours, status, submitted_at, created_at, version
		FROM monthly_summaries WHERE id = $1
	`

	summary := &domain.MonthlySummary{
		ID: id,
	}

	dst := []any{&summary.UserID, &summary.TargetYear, &summary.TargetMonth, &summary.TotalCompanyHours, &summary.TotalSidejobHours, &summary.TotalHours, &summary.Status, &summary.SubmittedAt, &summary.CreatedAt, &summary.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return summary, nil
}

// UpdateMonthlySummary は再計算済みの合計値と状態を楽観ロック付きで保存する
func (r *Repository) UpdateMonthlySummary(summary *domain.MonthlySummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE monthly_summaries
		SET
			total_company_hours = $1,
			total_sidejob_hours = $2,
			total_hours = $3,
			status = $4,
			submitted_at = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	args := []any{summary.TotalCompanyHours, summary.TotalSidejobHours, summary.TotalHours, summary.Status, summary.SubmittedAt, summary.ID, summary.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&summary.Version); err != nil {
		return err
	}

	return nil
}
