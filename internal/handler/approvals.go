package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

func (h *Handler) GetMyPendingApprovals(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	approvals, err := h.repository.GetPendingApprovalsByApproverID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "承認待ち一覧を取得しました", approvals)
}

func (h *Handler) GetApproval(w http.ResponseWriter, r *http.Request) {
	approval := r.Context().Value(ApprovalCtx).(*domain.Approval)
	h.successResponse(w, r, "承認レコードを取得しました", approval)
}

// DecideApproval はトラック 1 件を判定し、必要なら承認対象の状態を確定させる。
// 全ての必要種別が承認されると対象は承認、却下が 1 件でもあれば即却下になる
func (h *Handler) DecideApproval(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	approval := r.Context().Value(ApprovalCtx).(*domain.Approval)

	var req struct {
		Outcome string `json:"outcome" validate:"required,oneof=approved rejected"`
		Comment string `json:"comment" validate:"max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !myInfo.CanApprove(approval.Kind) {
		h.errorResponse(w, r, "この種別の承認権限がありません")
		return
	}

	// 承認対象を読み込む
	var target domain.Approvable
	var applicantID int64
	var subject string

	switch approval.ApprovableType {
	case domain.ApprovableLeaveRequest:
		request, err := h.repository.GetLeaveRequestByID(approval.ApprovableID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "承認対象の申請が存在しません")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		target = request
		applicantID = request.UserID
		subject = request.Summary()
	case domain.ApprovableMonthEndClosing:
		closing, err := h.repository.GetMonthEndClosingByID(approval.ApprovableID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "承認対象の月末締めが存在しません")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		target = closing
		applicantID = closing.UserID
		subject = closing.PeriodDisplay() + "の月末締め"
	default:
		h.errorResponse(w, r, "承認対象の種類が不正です")
		return
	}

	now := time.Now()
	outcome := domain.ApprovalStatus(req.Outcome)

	if err := approval.Decide(outcome, req.Comment, now); err != nil {
		h.errorResponse(w, r, "このトラックは既に判定済みです")
		return
	}

	decided, err := h.repository.DecideApproval(approval, target, now)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "判定に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 対象の状態が確定したら申請者にメールで知らせる
	if decided {
		applicant, err := h.repository.GetUserByID(applicantID)
		if err != nil {
			h.logInternalServerError(r, err)
		} else if err := h.notifyApplicant(applicant, subject, outcome, req.Comment); err != nil {
			h.logInternalServerError(r, err)
		}
	}

	message := "判定を記録しました"
	if decided {
		message = "判定を記録し、承認対象の状態を確定しました"
	}

	h.successResponse(w, r, message, approval)
}
