package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

// createApprovalTracks は承認対象 1 件に対するトラックを作成する。
// 必要種別ごとに、その種別を扱える承認者へ 1 件ずつ。
// 一意制約と DO NOTHING の組み合わせで再実行しても増えない
func (r *Repository) createApprovalTracks(ctx context.Context, tx *sql.Tx, approvableType domain.ApprovableType, approvableID int64, approvers []*domain.User) error {
	for _, kind := range domain.RequiredApprovalKinds(approvableType) {
		for _, approver := range approvers {
			if !approver.CanApprove(kind) {
				continue
			}

			query := `
				INSERT INTO approvals (approvable_type, approvable_id, approver_id, kind, status)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (approvable_type, approvable_id, approver_id, kind) DO NOTHING
			`
			if _, err := tx.ExecContext(ctx, query, approvableType, approvableID, approver.ID, kind, domain.ApprovalPending); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Repository) GetApprovalByID(id int64) (*domain.Approval, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT approvable_type, approvable_id, approver_id, kind, status, comment, decided_at, created_at, version
		FROM approvals WHERE id = $1
	`

	approval := &domain.Approval{
		ID: id,
	}

	dst := []any{&approval.ApprovableType, &approval.ApprovableID, &approval.ApproverID, &approval.Kind, &approval.Status, &approval.Comment, &approval.DecidedAt, &approval.CreatedAt, &approval.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return approval, nil
}

func (r *Repository) GetApprovalsFor(approvableType domain.ApprovableType, approvableID int64) ([]*domain.Approval, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	approvals, err := r.getApprovalsFor(ctx, r.dbpool, approvableType, approvableID)
	if err != nil {
		return nil, err
	}

	return approvals, nil
}

// GetPendingApprovalsByApproverID は承認者の未判定トラックを新しい順に返す
func (r *Repository) GetPendingApprovalsByApproverID(approverID int64) ([]*domain.Approval, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, approvable_type, approvable_id, kind, status, comment, decided_at, created_at, version
		FROM approvals
		WHERE approver_id = $1 AND status = $2
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, approverID, domain.ApprovalPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	approvals := make([]*domain.Approval, 0)
	for rows.Next() {
		approval := &domain.Approval{
			ApproverID: approverID,
		}
		dst := []any{&approval.ID, &approval.ApprovableType, &approval.ApprovableID, &approval.Kind, &approval.Status, &approval.Comment, &approval.DecidedAt, &approval.CreatedAt, &approval.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		approvals = append(approvals, approval)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return approvals, nil
}

// DecideApproval はトラックの判定と承認対象の折り返しを同一トランザクションで行う。
// 返り値は承認対象の状態が確定したかどうか。
// target には判定対象と同じエンティティを渡すこと
func (r *Repository) DecideApproval(approval *domain.Approval, target domain.Approvable, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	approvableType, approvableID := target.ApprovableRef()

	// 同じ承認対象の別トラックが並行して判定されると、互いに古いトラック集合を
	// 読んで折り返しを取りこぼすことがある。先にトラック全体を行ロックして直列化する
	lockQuery := `
		SELECT id FROM approvals
		WHERE approvable_type = $1 AND approvable_id = $2
		ORDER BY id
		FOR UPDATE
	`
	lockRows, err := tx.QueryContext(ctx, lockQuery, approvableType, approvableID)
	if err != nil {
		return false, err
	}
	lockRows.Close()
	if err := lockRows.Err(); err != nil {
		return false, err
	}

	query := `
		UPDATE approvals
		SET status = $1, comment = $2, decided_at = $3, version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	args := []any{approval.Status, approval.Comment, approval.DecidedAt, approval.ID, approval.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&approval.Version); err != nil {
		return false, err
	}

	tracks, err := r.getApprovalsFor(ctx, tx, approvableType, approvableID)
	if err != nil {
		return false, err
	}

	decided, err := domain.Reconcile(target, tracks, now)
	if err != nil {
		return false, err
	}

	if decided {
		switch t := target.(type) {
		case *domain.LeaveRequest:
			if err := r.updateLeaveRequestStatus(ctx, tx, t); err != nil {
				return false, err
			}
		case *domain.MonthEndClosing:
			if err := r.saveMonthEndClosing(ctx, tx, t); err != nil {
				return false, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return decided, nil
}

func (r *Repository) getApprovalsFor(ctx context.Context, q queryer, approvableType domain.ApprovableType, approvableID int64) ([]*domain.Approval, error) {
	query := `
		SELECT id, approver_id, kind, status, comment, decided_at, created_at, version
		FROM approvals
		WHERE approvable_type = $1 AND approvable_id = $2
		ORDER BY id
	`

	rows, err := q.QueryContext(ctx, query, approvableType, approvableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	approvals := make([]*domain.Approval, 0)
	for rows.Next() {
		approval := &domain.Approval{
			ApprovableType: approvableType,
			ApprovableID:   approvableID,
		}
		dst := []any{&approval.ID, &approval.ApproverID, &approval.Kind, &approval.Status, &approval.Comment, &approval.DecidedAt, &approval.CreatedAt, &approval.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		approvals = append(approvals, approval)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return approvals, nil
}
