package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbeit-hub/attendance-manager/backend/internal/config"
	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/arbeit-hub/attendance-manager/backend/internal/repository"
)

func TestSubmitWeeklyShift_ViolationBlocksAndPersistsNotes(t *testing.T) {
	// ハード違反のある提出は拒否するが、違反内容は違反メモとして保存される。
	// 状態は draft のまま
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10
	cfg.Compliance.DailyLimitHours = 8
	cfg.Compliance.WeeklyCompanyLimitHours = 20
	cfg.Compliance.WeeklyTotalLimitHours = 40
	cfg.Compliance.MonthlyLimitHours = 160
	cfg.Compliance.WarningRatio = 0.8
	cfg.Compliance.BreakThresholdHours = 6
	cfg.Compliance.BreakDurationHours = 1

	h, err := NewHandler(cfg, repository.NewRepository(cfg, db), nil, nil)
	require.NoError(t, err)

	shift := &domain.WeeklyShift{
		ID:     5,
		UserID: 3,
		Status: domain.WeeklyShiftDraft,
		DailySchedules: []*domain.DailySchedule{
			{
				ScheduleDate: time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC),
				CompanyHours: decimal.NewFromInt(12),
			},
		},
		Version: 1,
	}

	mock.ExpectQuery(`UPDATE weekly_shifts`).
		WithArgs(domain.WeeklyShiftDraft, sqlmock.AnyArg(), nil, shift.ID, shift.Version).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))

	req := httptest.NewRequest(http.MethodPost, "/weekly-shifts/5/submit", nil)
	req = req.WithContext(context.WithValue(req.Context(), WeeklyShiftCtx, shift))
	rec := httptest.NewRecorder()

	h.SubmitWeeklyShift(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "超過")

	assert.Equal(t, domain.WeeklyShiftDraft, shift.Status)
	assert.Nil(t, shift.SubmittedAt)
	assert.NotEmpty(t, shift.ViolationNotes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
