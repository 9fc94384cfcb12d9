package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

type leaveRequestWithApprovals struct {
	*domain.LeaveRequest
	Approvals []*domain.Approval `json:"approvals"`
}

func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		RequestType string  `json:"requestType" validate:"required"`
		RequestDate string  `json:"requestDate" validate:"required,datetime=2006-01-02"`
		StartTime   *string `json:"startTime" validate:"omitempty,datetime=15:04"`
		EndTime     *string `json:"endTime" validate:"omitempty,datetime=15:04"`
		Reason      string  `json:"reason" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	requestDate, err := time.Parse("2006-01-02", req.RequestDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	request := &domain.LeaveRequest{
		UserID:      myInfo.ID,
		RequestType: domain.LeaveRequestType(req.RequestType),
		RequestDate: requestDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Reason:      req.Reason,
	}

	if err := request.Validate(); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			h.errorResponse(w, r, vErr.Message)
			return
		}
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateLeaveRequest(request); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "申請を作成しました", request)
}

func (h *Handler) GetMyLeaveRequests(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	requests, err := h.repository.GetLeaveRequestsByUserID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "申請一覧を取得しました", requests)
}

func (h *Handler) GetLeaveRequest(w http.ResponseWriter, r *http.Request) {
	request := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	approvals, err := h.repository.GetApprovalsFor(domain.ApprovableLeaveRequest, request.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "申請を取得しました", leaveRequestWithApprovals{
		LeaveRequest: request,
		Approvals:    approvals,
	})
}

// UpdateLeaveRequest は下書きの申請のみ編集できる
func (h *Handler) UpdateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	request := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	if request.Status != domain.LeaveRequestDraft {
		h.errorResponse(w, r, "下書き以外の申請は編集できません")
		return
	}

	var req struct {
		RequestType *string `json:"requestType"`
		RequestDate *string `json:"requestDate" validate:"omitempty,datetime=2006-01-02"`
		StartTime   *string `json:"startTime" validate:"omitempty,datetime=15:04"`
		EndTime     *string `json:"endTime" validate:"omitempty,datetime=15:04"`
		Reason      *string `json:"reason"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.RequestType != nil {
		request.RequestType = domain.LeaveRequestType(*req.RequestType)
	}
	if req.RequestDate != nil {
		requestDate, err := time.Parse("2006-01-02", *req.RequestDate)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		request.RequestDate = requestDate
	}
	// 種別を切り替えた場合に古い時刻が残らないよう、時刻は毎回置き換える
	request.StartTime = req.StartTime
	request.EndTime = req.EndTime
	if req.Reason != nil {
		request.Reason = *req.Reason
	}

	if err := request.Validate(); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			h.errorResponse(w, r, vErr.Message)
			return
		}
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateLeaveRequest(request); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "申請を更新しました", request)
}

func (h *Handler) DeleteLeaveRequest(w http.ResponseWriter, r *http.Request) {
	request := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	if request.Status != domain.LeaveRequestDraft {
		h.errorResponse(w, r, "下書き以外の申請は削除できません")
		return
	}

	if err := h.repository.DeleteLeaveRequest(request.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "申請を削除しました", nil)
}

// SubmitLeaveRequest は申請を承認待ちに遷移させ、承認者ごとの承認トラックを作成する。
// 承認者が 1 人も見つからない場合は提出自体を失敗させる
func (h *Handler) SubmitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	request := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	if request.UserID != myInfo.ID {
		h.errorResponse(w, r, "本人の申請のみ提出できます")
		return
	}

	if err := request.Validate(); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			h.errorResponse(w, r, vErr.Message)
			return
		}
		h.badRequest(w, r, err)
		return
	}

	approvers, err := h.repository.GetApproversForUser(myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(approvers) == 0 {
		h.errorResponse(w, r, "承認者が見つかりません。管理者にお問い合わせください")
		return
	}

	if err := request.MarkSubmitted(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.SubmitLeaveRequest(request, approvers); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "提出に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.notifyApprovers(approvers, myInfo, request.Summary()); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "申請を提出しました", request)
}

// ResubmitLeaveRequest は却下・取り消し済みの申請を出し直す。
// 前回の承認トラックは全て破棄され、新しいトラックが作られる
func (h *Handler) ResubmitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	request := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	if request.UserID != myInfo.ID {
		h.errorResponse(w, r, "本人の申請のみ提出できます")
		return
	}

	approvers, err := h.repository.GetApproversForUser(myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(approvers) == 0 {
		h.errorResponse(w, r, "承認者が見つかりません。管理者にお問い合わせください")
		return
	}

	if err := request.MarkResubmitted(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.ResubmitLeaveRequest(request, approvers); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "再提出に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.notifyApprovers(approvers, myInfo, request.Summary()); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "申請を再提出しました", request)
}

// CancelLeaveRequest は承認待ちの申請を取り消す。
// 既に判定済みのトラックは記録として残る
func (h *Handler) CancelLeaveRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	request := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	if request.UserID != myInfo.ID {
		h.errorResponse(w, r, "本人の申請のみ取り消しできます")
		return
	}

	if err := request.MarkCanceled(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CancelLeaveRequest(request); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "取り消しに失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "申請を取り消しました", request)
}
