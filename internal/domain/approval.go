package domain

import (
	"time"
)

type ApprovableType string

const (
	ApprovableLeaveRequest    ApprovableType = "leave_request"
	ApprovableMonthEndClosing ApprovableType = "month_end_closing"
)

type ApprovalKind string

const (
	ApprovalKindDepartment ApprovalKind = "department"
	// ApprovalKindLabor はデータモデル上は存在するが運用上は停止中。
	// RequiredApprovalKinds には含めない
	ApprovalKindLabor ApprovalKind = "labor"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Approval は承認対象 1 件・承認者 1 人・種別 1 つにつき最大 1 レコード。
// decidedAt は承認または却下されたときのみ設定される
type Approval struct {
	ID             int64          `json:"id"`
	ApprovableType ApprovableType `json:"approvableType"`
	ApprovableID   int64          `json:"approvableID"`
	ApproverID     int64          `json:"approverID"`
	Kind           ApprovalKind   `json:"kind"`
	Status         ApprovalStatus `json:"status"`
	Comment        string         `json:"comment"`
	DecidedAt      *time.Time     `json:"decidedAt"`
	CreatedAt      time.Time      `json:"createdAt"`
	Version        int32          `json:"-"`
}

func (a *Approval) IsDecided() bool {
	return a.Status == ApprovalApproved || a.Status == ApprovalRejected
}

// Decide は pending のレコードにのみ判定を記録する。二重判定は ErrInvalidTransition
func (a *Approval) Decide(outcome ApprovalStatus, comment string, now time.Time) error {
	if a.Status != ApprovalPending {
		return ErrInvalidTransition
	}
	if outcome != ApprovalApproved && outcome != ApprovalRejected {
		return ErrInvalidTransition
	}
	a.Status = outcome
	a.Comment = comment
	a.DecidedAt = &now
	return nil
}

// RequiredApprovalKinds は承認対象の種類ごとに必要な承認種別を返す。
// 現在はいずれも部署承認のみ
func RequiredApprovalKinds(t ApprovableType) []ApprovalKind {
	switch t {
	case ApprovableLeaveRequest, ApprovableMonthEndClosing:
		return []ApprovalKind{ApprovalKindDepartment}
	default:
		return nil
	}
}

// Approvable は承認トラックを所有できるエンティティの最小の能力契約。
// Reconciler はこの契約だけに依存し、具体的なエンティティに依存しない
type Approvable interface {
	ApprovableRef() (ApprovableType, int64)
	// IsAwaitingDecision は自身が承認待ち状態のときのみ true
	IsAwaitingDecision() bool
	ApproveFinal(now time.Time) error
	RejectFinal(now time.Time) error
}

type ReconcileDecision string

const (
	ReconcileApprove ReconcileDecision = "approve"
	ReconcileReject  ReconcileDecision = "reject"
	ReconcileWait    ReconcileDecision = "wait"
)

// DecideReconciliation はトラックの状態から承認対象の次の状態を決める純粋関数。
// 却下が 1 件でもあれば即却下、必要な種別が全て承認済みなら承認、それ以外は待機
func DecideReconciliation(tracks []*Approval, requiredKinds []ApprovalKind) ReconcileDecision {
	approvedKinds := make(map[ApprovalKind]bool)
	for _, t := range tracks {
		switch t.Status {
		case ApprovalRejected:
			return ReconcileReject
		case ApprovalApproved:
			approvedKinds[t.Kind] = true
		}
	}

	for _, kind := range requiredKinds {
		if !approvedKinds[kind] {
			return ReconcileWait
		}
	}
	return ReconcileApprove
}

// Reconcile は承認対象が承認待ちのときだけ状態を折り返す。
// 既に確定済みの対象に対しては何もしない（再実行は no-op）
func Reconcile(a Approvable, tracks []*Approval, now time.Time) (bool, error) {
	if !a.IsAwaitingDecision() {
		return false, nil
	}

	t, _ := a.ApprovableRef()
	switch DecideReconciliation(tracks, RequiredApprovalKinds(t)) {
	case ReconcileApprove:
		if err := a.ApproveFinal(now); err != nil {
			return false, err
		}
		return true, nil
	case ReconcileReject:
		if err := a.RejectFinal(now); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, nil
	}
}
