package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

func (r *Repository) CreateLeaveRequest(request *domain.LeaveRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO leave_requests (user_id, request_type, request_date, start_time, end_time, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	request.Status = domain.LeaveRequestDraft
	args := []any{request.UserID, request.RequestType, request.RequestDate, request.StartTime, request.EndTime, request.Reason, request.Status}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&request.ID, &request.CreatedAt, &request.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetLeaveRequestByID(id int64) (*domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT user_id, request_type, request_date, start_time, end_time, reason, status, created_at, version
		FROM leave_requests WHERE id = $1
	`

	request := &domain.LeaveRequest{
		ID: id,
	}

	dst := []any{&request.UserID, &request.RequestType, &request.RequestDate, &request.StartTime, &request.EndTime, &request.Reason, &request.Status, &request.CreatedAt, &request.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return request, nil
}

func (r *Repository) GetLeaveRequestsByUserID(userID int64) ([]*domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, request_type, request_date, start_time, end_time, reason, status, created_at, version
		FROM leave_requests
		WHERE user_id = $1
		ORDER BY request_date DESC, id DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*domain.LeaveRequest, 0)
	for rows.Next() {
		request := &domain.LeaveRequest{
			UserID: userID,
		}
		dst := []any{&request.ID, &request.RequestType, &request.RequestDate, &request.StartTime, &request.EndTime, &request.Reason, &request.Status, &request.CreatedAt, &request.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *Repository) UpdateLeaveRequest(request *domain.LeaveRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE leave_requests
		SET
			request_type = $1,
			request_date = $2,
			start_time = $3,
			end_time = $4,
			reason = $5,
			status = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	args := []any{request.RequestType, request.RequestDate, request.StartTime, request.EndTime, request.Reason, request.Status, request.ID, request.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&request.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteLeaveRequest(id int64) error {
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
	if _, err := tx.ExecContext(ctx, query, domain.ApprovableLeaveRequest, id); err != nil {
		return err
	}

	query = `DELETE FROM leave_requests WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return tx.Commit()
}

// SubmitLeaveRequest は申請の状態更新と承認トラックの作成を
// 同一トランザクションで行う。トラックは承認者 1 人につき最大 1 件で、
// 既に存在する場合は作り直さない（再実行しても増えない）
func (r *Repository) SubmitLeaveRequest(request *domain.LeaveRequest, approvers []*domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := r.updateLeaveRequestStatus(ctx, tx, request); err != nil {
		return err
	}

	if err := r.createApprovalTracks(ctx, tx, domain.ApprovableLeaveRequest, request.ID, approvers); err != nil {
		return err
	}

	return tx.Commit()
}

// ResubmitLeaveRequest は古いトラックを全て破棄してから作り直す。
// 前回の判定履歴は残さない
func (r *Repository) ResubmitLeaveRequest(request *domain.LeaveRequest, approvers []*domain.User) error {
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
	if _, err := tx.ExecContext(ctx, query, domain.ApprovableLeaveRequest, request.ID); err != nil {
		return err
	}

	if err := r.updateLeaveRequestStatus(ctx, tx, request); err != nil {
		return err
	}

	if err := r.createApprovalTracks(ctx, tx, domain.ApprovableLeaveRequest, request.ID, approvers); err != nil {
		return err
	}

	return tx.Commit()
}

// CancelLeaveRequest は未判定のトラックだけを削除する。
// 判定済みのトラックは監査のために残す
func (r *Repository) CancelLeaveRequest(request *domain.LeaveRequest) error {
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
	if _, err := tx.ExecContext(ctx, query, domain.ApprovableLeaveRequest, request.ID, domain.ApprovalPending); err != nil {
		return err
	}

	if err := r.updateLeaveRequestStatus(ctx, tx, request); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) updateLeaveRequestStatus(ctx context.Context, tx *sql.Tx, request *domain.LeaveRequest) error {
	query := `
		UPDATE leave_requests
		SET status = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	return tx.QueryRowContext(ctx, query, request.Status, request.ID, request.Version).Scan(&request.Version)
}
