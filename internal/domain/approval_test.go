package domain_test

import (
	"testing"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

func pendingTrack(kind domain.ApprovalKind) *domain.Approval {
	return &domain.Approval{
		ApprovableType: domain.ApprovableLeaveRequest,
		ApprovableID:   1,
		ApproverID:     10,
		Kind:           kind,
		Status:         domain.ApprovalPending,
	}
}

func TestApproval_Decide(t *testing.T) {
	t.Run("承認", func(t *testing.T) {
		a := pendingTrack(domain.ApprovalKindDepartment)
		require.NoError(t, a.Decide(domain.ApprovalApproved, "問題ありません", now))
		assert.Equal(t, domain.ApprovalApproved, a.Status)
		assert.Equal(t, "問題ありません", a.Comment)
		require.NotNil(t, a.DecidedAt)
		assert.Equal(t, now, *a.DecidedAt)
	})

	t.Run("判定済みトラックへの再判定はエラー", func(t *testing.T) {
		a := pendingTrack(domain.ApprovalKindDepartment)
		require.NoError(t, a.Decide(domain.ApprovalRejected, "", now))
		err := a.Decide(domain.ApprovalApproved, "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.ApprovalRejected, a.Status)
	})

	t.Run("pending への差し戻しは判定として認めない", func(t *testing.T) {
		a := pendingTrack(domain.ApprovalKindDepartment)
		err := a.Decide(domain.ApprovalPending, "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestDecideReconciliation(t *testing.T) {
	required := []domain.ApprovalKind{domain.ApprovalKindDepartment}

	t.Run("未判定トラックが残っていれば待機", func(t *testing.T) {
		tracks := []*domain.Approval{pendingTrack(domain.ApprovalKindDepartment)}
		assert.Equal(t, domain.ReconcileWait, domain.DecideReconciliation(tracks, required))
	})

	t.Run("必要な種別が全て承認済みなら承認", func(t *testing.T) {
		a := pendingTrack(domain.ApprovalKindDepartment)
		require.NoError(t, a.Decide(domain.ApprovalApproved, "", now))
		assert.Equal(t, domain.ReconcileApprove, domain.DecideReconciliation([]*domain.Approval{a}, required))
	})

	t.Run("却下が1件でもあれば他の状態に関わらず却下", func(t *testing.T) {
		approved := pendingTrack(domain.ApprovalKindDepartment)
		require.NoError(t, approved.Decide(domain.ApprovalApproved, "", now))
		rejected := pendingTrack(domain.ApprovalKindLabor)
		require.NoError(t, rejected.Decide(domain.ApprovalRejected, "内容に不備があります", now))

		tracks := []*domain.Approval{approved, rejected}
		assert.Equal(t, domain.ReconcileReject, domain.DecideReconciliation(tracks, required))
	})

	t.Run("複数種別が必要な場合は片方の承認だけでは待機", func(t *testing.T) {
		both := []domain.ApprovalKind{domain.ApprovalKindDepartment, domain.ApprovalKindLabor}
		dept := pendingTrack(domain.ApprovalKindDepartment)
		require.NoError(t, dept.Decide(domain.ApprovalApproved, "", now))
		labor := pendingTrack(domain.ApprovalKindLabor)

		tracks := []*domain.Approval{dept, labor}
		assert.Equal(t, domain.ReconcileWait, domain.DecideReconciliation(tracks, both))

		require.NoError(t, labor.Decide(domain.ApprovalApproved, "", now))
		assert.Equal(t, domain.ReconcileApprove, domain.DecideReconciliation(tracks, both))
	})

	t.Run("トラックが空なら待機", func(t *testing.T) {
		assert.Equal(t, domain.ReconcileWait, domain.DecideReconciliation(nil, required))
	})
}

func TestReconcile(t *testing.T) {
	t.Run("全承認で申請が承認状態になる", func(t *testing.T) {
		lr := &domain.LeaveRequest{ID: 1, Status: domain.LeaveRequestPending}
		track := pendingTrack(domain.ApprovalKindDepartment)
		require.NoError(t, track.Decide(domain.ApprovalApproved, "", now))

		changed, err := domain.Reconcile(lr, []*domain.Approval{track}, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.LeaveRequestApproved, lr.Status)

		// 確定後の再実行は何も起こさない
		changed, err = domain.Reconcile(lr, []*domain.Approval{track}, now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, domain.LeaveRequestApproved, lr.Status)
	})

	t.Run("却下トラックで申請が却下状態になる", func(t *testing.T) {
		lr := &domain.LeaveRequest{ID: 1, Status: domain.LeaveRequestPending}
		track := pendingTrack(domain.ApprovalKindDepartment)
		require.NoError(t, track.Decide(domain.ApprovalRejected, "", now))

		changed, err := domain.Reconcile(lr, []*domain.Approval{track}, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.LeaveRequestRejected, lr.Status)
	})

	t.Run("未判定のうちは状態が変わらない", func(t *testing.T) {
		lr := &domain.LeaveRequest{ID: 1, Status: domain.LeaveRequestPending}
		track := pendingTrack(domain.ApprovalKindDepartment)

		changed, err := domain.Reconcile(lr, []*domain.Approval{track}, now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, domain.LeaveRequestPending, lr.Status)
	})

	t.Run("月末締めの承認で closed になり ClosedAt が入る", func(t *testing.T) {
		mec := &domain.MonthEndClosing{ID: 2, Status: domain.MonthEndClosingPending}
		track := pendingTrack(domain.ApprovalKindDepartment)
		track.ApprovableType = domain.ApprovableMonthEndClosing
		track.ApprovableID = 2
		require.NoError(t, track.Decide(domain.ApprovalApproved, "", now))

		changed, err := domain.Reconcile(mec, []*domain.Approval{track}, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.MonthEndClosingClosed, mec.Status)
		require.NotNil(t, mec.ClosedAt)
		assert.Equal(t, now, *mec.ClosedAt)
	})
}
