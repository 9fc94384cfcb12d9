package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validRequest(t domain.LeaveRequestType) *domain.LeaveRequest {
	lr := &domain.LeaveRequest{
		UserID:      1,
		RequestType: t,
		RequestDate: time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
		Reason:      "体調不良のため休ませていただきます",
		Status:      domain.LeaveRequestDraft,
	}
	switch t {
	case domain.LeaveLate:
		lr.StartTime = strPtr("10:00")
	case domain.LeaveEarlyLeave:
		lr.EndTime = strPtr("15:00")
	case domain.LeaveShiftChange:
		lr.StartTime = strPtr("13:00")
		lr.EndTime = strPtr("18:00")
	}
	return lr
}

func TestLeaveRequest_Validate(t *testing.T) {
	for _, rt := range []domain.LeaveRequestType{
		domain.LeaveAbsence, domain.LeaveLate, domain.LeaveEarlyLeave, domain.LeaveShiftChange,
	} {
		t.Run(string(rt)+"の正常な申請", func(t *testing.T) {
			assert.NoError(t, validRequest(rt).Validate())
		})
	}

	t.Run("理由が短すぎる", func(t *testing.T) {
		lr := validRequest(domain.LeaveAbsence)
		lr.Reason = "私用のため"
		var vErr *domain.ValidationError
		require.ErrorAs(t, lr.Validate(), &vErr)
		assert.Equal(t, "reason", vErr.Field)
	})

	t.Run("理由が長すぎる", func(t *testing.T) {
		lr := validRequest(domain.LeaveAbsence)
		lr.Reason = strings.Repeat("あ", 501)
		assert.Error(t, lr.Validate())
	})

	t.Run("マルチバイトは文字数で数える", func(t *testing.T) {
		lr := validRequest(domain.LeaveAbsence)
		lr.Reason = strings.Repeat("あ", 10)
		assert.NoError(t, lr.Validate())
	})

	t.Run("欠勤申請に時刻を付けるとエラー", func(t *testing.T) {
		lr := validRequest(domain.LeaveAbsence)
		lr.StartTime = strPtr("09:00")
		assert.Error(t, lr.Validate())
	})

	t.Run("遅刻申請に開始時刻がないとエラー", func(t *testing.T) {
		lr := validRequest(domain.LeaveLate)
		lr.StartTime = nil
		assert.Error(t, lr.Validate())
	})

	t.Run("早退申請に終了時刻がないとエラー", func(t *testing.T) {
		lr := validRequest(domain.LeaveEarlyLeave)
		lr.EndTime = nil
		assert.Error(t, lr.Validate())
	})

	t.Run("シフト変更申請は開始が終了より前", func(t *testing.T) {
		lr := validRequest(domain.LeaveShiftChange)
		lr.StartTime = strPtr("18:00")
		lr.EndTime = strPtr("13:00")
		assert.Error(t, lr.Validate())
	})

	t.Run("不正な申請種別", func(t *testing.T) {
		lr := validRequest(domain.LeaveAbsence)
		lr.RequestType = "vacation"
		assert.Error(t, lr.Validate())
	})
}

func TestLeaveRequest_Transitions(t *testing.T) {
	t.Run("提出から承認まで", func(t *testing.T) {
		lr := validRequest(domain.LeaveAbsence)
		require.NoError(t, lr.MarkSubmitted())
		assert.Equal(t, domain.LeaveRequestPending, lr.Status)
		require.NoError(t, lr.ApproveFinal(now))
		assert.Equal(t, domain.LeaveRequestApproved, lr.Status)
	})

	t.Run("承認待ち以外からの提出はエラー", func(t *testing.T) {
		lr := validRequest(domain.LeaveAbsence)
		require.NoError(t, lr.MarkSubmitted())
		assert.ErrorIs(t, lr.MarkSubmitted(), domain.ErrInvalidTransition)
	})

	t.Run("却下からの再提出", func(t *testing.T) {
		lr := validRequest(domain.LeaveAbsence)
		require.NoError(t, lr.MarkSubmitted())
		require.NoError(t, lr.RejectFinal(now))
		require.NoError(t, lr.MarkResubmitted())
		assert.Equal(t, domain.LeaveRequestPending, lr.Status)
	})

	t.Run("下書きの再提出はエラー", func(t *testing.T) {
		lr := validRequest(domain.LeaveAbsence)
		assert.ErrorIs(t, lr.MarkResubmitted(), domain.ErrInvalidTransition)
	})

	t.Run("承認待ちの取り消しと再提出", func(t *testing.T) {
		lr := validRequest(domain.LeaveAbsence)
		require.NoError(t, lr.MarkSubmitted())
		require.NoError(t, lr.MarkCanceled())
		assert.Equal(t, domain.LeaveRequestCanceled, lr.Status)
		require.NoError(t, lr.MarkResubmitted())
		assert.Equal(t, domain.LeaveRequestPending, lr.Status)
	})

	t.Run("承認済みの取り消しはエラー", func(t *testing.T) {
		lr := validRequest(domain.LeaveAbsence)
		require.NoError(t, lr.MarkSubmitted())
		require.NoError(t, lr.ApproveFinal(now))
		assert.ErrorIs(t, lr.MarkCanceled(), domain.ErrInvalidTransition)
	})
}
