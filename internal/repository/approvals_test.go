package repository_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

func TestRepository_DecideApproval(t *testing.T) {
	// 判定前に対象のトラック全体を行ロックすること。
	// ロックなしだと同じ承認対象の別トラックを並行判定したとき、
	// 互いに古いトラック集合を読んで折り返しを取りこぼす
	repo, mock := newMockRepository(t)

	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)
	closing := pendingClosing()

	approval := &domain.Approval{
		ID:             21,
		ApprovableType: domain.ApprovableMonthEndClosing,
		ApprovableID:   closing.ID,
		ApproverID:     10,
		Kind:           domain.ApprovalKindDepartment,
		Status:         domain.ApprovalPending,
		Version:        1,
	}
	require.NoError(t, approval.Decide(domain.ApprovalRejected, "修正してください", now))

	createdAt := time.Date(2025, 10, 28, 18, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM approvals(.|\s)+FOR UPDATE`).
		WithArgs(domain.ApprovableMonthEndClosing, closing.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectQuery(`UPDATE approvals`).
		WithArgs(domain.ApprovalRejected, "修正してください", approval.DecidedAt, approval.ID, int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))
	mock.ExpectQuery(`SELECT id, approver_id, kind`).
		WithArgs(domain.ApprovableMonthEndClosing, closing.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "approver_id", "kind", "status", "comment", "decided_at", "created_at", "version"}).
			AddRow(int64(21), int64(10), "department", "rejected", "修正してください", now, createdAt, int64(2)))
	mock.ExpectQuery(`UPDATE month_end_closings`).
		WithArgs(closing.TotalWorkHours, closing.TotalWorkDays, decimal.NewFromInt(2), domain.MonthEndClosingRejected, nil, nil, closing.ID, closing.Version).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))
	mock.ExpectCommit()

	decided, err := repo.DecideApproval(approval, closing, now)
	require.NoError(t, err)
	assert.True(t, decided)
	assert.Equal(t, domain.MonthEndClosingRejected, closing.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
