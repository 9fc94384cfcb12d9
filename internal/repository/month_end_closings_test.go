package repository_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbeit-hub/attendance-manager/backend/internal/config"
	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/arbeit-hub/attendance-manager/backend/internal/repository"
)

func newMockRepository(t *testing.T) (*repository.Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10

	return repository.NewRepository(cfg, db), mock
}

func pendingClosing() *domain.MonthEndClosing {
	return &domain.MonthEndClosing{
		ID:             7,
		UserID:         3,
		Year:           2025,
		Month:          10,
		TotalWorkHours: decimal.NewFromInt(162),
		TotalWorkDays:  20,
		OvertimeHours:  decimal.NewFromInt(2),
		Status:         domain.MonthEndClosingPending,
		Version:        1,
	}
}

func TestRepository_SubmitMonthEndClosing(t *testing.T) {
	// 状態・合計値の保存とトラック作成が 1 つのトランザクションに収まること。
	// 途中で失敗した場合にトラックなしの pending が残ってはいけない
	repo, mock := newMockRepository(t)

	closing := pendingClosing()
	approver := &domain.User{ID: 10, Role: domain.RoleDepartmentManager}

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE month_end_closings`).
		WithArgs(closing.TotalWorkHours, closing.TotalWorkDays, closing.OvertimeHours, domain.MonthEndClosingPending, nil, nil, closing.ID, closing.Version).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))
	mock.ExpectExec(`INSERT INTO approvals`).
		WithArgs(domain.ApprovableMonthEndClosing, closing.ID, approver.ID, domain.ApprovalKindDepartment, domain.ApprovalPending).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SubmitMonthEndClosing(closing, []*domain.User{approver}))
	assert.Equal(t, int32(2), closing.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ResubmitMonthEndClosing(t *testing.T) {
	// 再提出では再計算済みの合計値も一緒に書き戻されること
	repo, mock := newMockRepository(t)

	closing := pendingClosing()
	closing.TotalWorkHours = decimal.NewFromInt(150)
	closing.OvertimeHours = decimal.Zero
	approver := &domain.User{ID: 10, Role: domain.RoleDepartmentManager}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM approvals`).
		WithArgs(domain.ApprovableMonthEndClosing, closing.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE month_end_closings`).
		WithArgs(closing.TotalWorkHours, closing.TotalWorkDays, closing.OvertimeHours, domain.MonthEndClosingPending, nil, nil, closing.ID, closing.Version).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))
	mock.ExpectExec(`INSERT INTO approvals`).
		WithArgs(domain.ApprovableMonthEndClosing, closing.ID, approver.ID, domain.ApprovalKindDepartment, domain.ApprovalPending).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ResubmitMonthEndClosing(closing, []*domain.User{approver}))
	assert.Equal(t, int32(2), closing.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
