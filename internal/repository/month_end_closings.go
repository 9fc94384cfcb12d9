package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

// EnsureMonthEndClosing は (user_id, year, month) の月末締めを必要に応じて作成して返す
func (r *Repository) EnsureMonthEndClosing(closing *domain.MonthEndClosing) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO month_end_closings (user_id, year, month, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, year, month) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, total_work_hours, total_work_days, overtime_hours, status, closed_by_id, closed_at, created_at, version
	`

	args := []any{closing.UserID, closing.Year, closing.Month, domain.MonthEndClosingOpen}
	dst := []any{&closing.ID, &closing.TotalWorkHours, &closing.TotalWorkDays, &closing.OvertimeHours, &closing.Status, &closing.ClosedByID, &closing.ClosedAt, &closing.CreatedAt, &closing.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetMonthEndClosingByID(id int64) (*domain.MonthEndClosing, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT user_id, year, month, total_work_hours, total_work_days, overtime_hours, status, closed_by_id, closed_at, created_at, version
		FROM month_end_closings WHERE id = $1
	`

	closing := &domain.MonthEndClosing{
		ID: id,
	}

	dst := []any{&closing.UserID, &closing.Year, &closing.Month, &closing.TotalWorkHours, &closing.TotalWorkDays, &closing.OvertimeHours, &closing.Status, &closing.ClosedByID, &closing.ClosedAt, &closing.CreatedAt, &closing.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return closing, nil
}

// UpdateMonthEndClosing は導出済みの合計値と状態を楽観ロック付きで保存する
func (r *Repository) UpdateMonthEndClosing(closing *domain.MonthEndClosing) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE month_end_closings
		SET
			total_work_hours = $1,
			total_work_days = $2,
			overtime_hours = $3,
			status = $4,
			closed_by_id = $5,
			closed_at = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	args := []any{closing.TotalWorkHours, closing.TotalWorkDays, closing.OvertimeHours, closing.Status, closing.ClosedByID, closing.ClosedAt, closing.ID, closing.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&closing.Version); err != nil {
		return err
	}

	return nil
}

// SubmitMonthEndClosing は締めの状態更新と承認トラックの作成を同一トランザクションで行う
func (r *Repository) SubmitMonthEndClosing(closing *domain.MonthEndClosing, approvers []*domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := r.saveMonthEndClosing(ctx, tx, closing); err != nil {
		return err
	}

	if err := r.createApprovalTracks(ctx, tx, domain.ApprovableMonthEndClosing, closing.ID, approvers); err != nil {
		return err
	}

	return tx.Commit()
}

// ResubmitMonthEndClosing は古いトラックを全て破棄してから作り直す
func (r *Repository) ResubmitMonthEndClosing(closing *domain.MonthEndClosing, approvers []*domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `DELETE FROM approvals WHERE approvable_type = $1 AND approvable_id = $2`
	if _, err := tx.ExecContext(ctx, query, domain.ApprovableMonthEndClosing, closing.ID); err != nil {
		return err
	}

	if err := r.saveMonthEndClosing(ctx, tx, closing); err != nil {
		return err
	}

	if err := r.createApprovalTracks(ctx, tx, domain.ApprovableMonthEndClosing, closing.ID, approvers); err != nil {
		return err
	}

	return tx.Commit()
}

// CancelMonthEndClosing は未判定のトラックだけを削除する
func (r *Repository) CancelMonthEndClosing(closing *domain.MonthEndClosing) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `DELETE FROM approvals WHERE approvable_type = $1 AND approvable_id = $2 AND status = $3`
	if _, err := tx.ExecContext(ctx, query, domain.ApprovableMonthEndClosing, closing.ID, domain.ApprovalPending); err != nil {
		return err
	}

	if err := r.saveMonthEndClosing(ctx, tx, closing); err != nil {
		return err
	}

	return tx.Commit()
}

// saveMonthEndClosing は状態と導出済みの合計値をトランザクション内で保存する。
// 合計値はキャッシュなので、状態が変わるたびに必ず一緒に書き戻す
func (r *Repository) saveMonthEndClosing(ctx context.Context, tx *sql.Tx, closing *domain.MonthEndClosing) error {
	query := `
		UPDATE month_end_closings
		SET
			total_work_hours = $1,
			total_work_days = $2,
			overtime_hours = $3,
			status = $4,
			closed_by_id = $5,
			closed_at = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	args := []any{closing.TotalWorkHours, closing.TotalWorkDays, closing.OvertimeHours, closing.Status, closing.ClosedByID, closing.ClosedAt, closing.ID, closing.Version}
	return tx.QueryRowContext(ctx, query, args...).Scan(&closing.Version)
}
