package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

type monthEndClosingWithApprovals struct {
	*domain.MonthEndClosing
	Approvals []*domain.Approval `json:"approvals"`
}

// EnsureMonthEndClosing は対象月の月末締めを取得し、なければ作成する
func (h *Handler) EnsureMonthEndClosing(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Year  int `json:"year" validate:"required,min=2000,max=2100"`
		Month int `json:"month" validate:"required,min=1,max=12"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	closing := &domain.MonthEndClosing{
		UserID: myInfo.ID,
		Year:   req.Year,
		Month:  req.Month,
	}

	if err := h.repository.EnsureMonthEndClosing(closing); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "月末締めを取得しました", closing)
}

func (h *Handler) GetMonthEndClosing(w http.ResponseWriter, r *http.Request) {
	closing := r.Context().Value(MonthEndClosingCtx).(*domain.MonthEndClosing)

	approvals, err := h.repository.GetApprovalsFor(domain.ApprovableMonthEndClosing, closing.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "月末締めを取得しました", monthEndClosingWithApprovals{
		MonthEndClosing: closing,
		Approvals:       approvals,
	})
}

// recomputeClosingTotals は対象月の週間シフトから合計勤務時間・勤務日数を導出し直す
func (h *Handler) recomputeClosingTotals(closing *domain.MonthEndClosing) error {
	shifts, err := h.repository.GetWeeklyShiftsForMonth(closing.UserID, closing.Year, closing.Month)
	if err != nil {
		return err
	}

	totalHours := decimal.Zero
	workDays := 0
	for _, shift := range shifts {
		totalHours = totalHours.Add(shift.TotalHours())
		for _, ds := range shift.DailySchedules {
			if ds.HasWorkingHours() {
				workDays++
			}
		}
	}

	monthlyLimit := decimal.NewFromFloat(h.config.Compliance.MonthlyLimitHours)
	closing.RecomputeTotals(totalHours, workDays, monthlyLimit)
	return nil
}

// SubmitMonthEndClosing は合計値を確定させたうえで承認待ちに遷移させる
func (h *Handler) SubmitMonthEndClosing(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	closing := r.Context().Value(MonthEndClosingCtx).(*domain.MonthEndClosing)

	if closing.UserID != myInfo.ID {
		h.errorResponse(w, r, "本人の月末締めのみ提出できます")
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

	if err := h.recomputeClosingTotals(closing); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := closing.MarkSubmitted(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.SubmitMonthEndClosing(closing, approvers); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "提出に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.notifyApprovers(approvers, myInfo, closing.PeriodDisplay()+"の月末締め"); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "月末締めを提出しました", closing)
}

// ResubmitMonthEndClosing は却下・取り消し済みの締めを出し直す
func (h *Handler) ResubmitMonthEndClosing(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	closing := r.Context().Value(MonthEndClosingCtx).(*domain.MonthEndClosing)

	if closing.UserID != myInfo.ID {
		h.errorResponse(w, r, "本人の月末締めのみ提出できます")
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

	if err := h.recomputeClosingTotals(closing); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := closing.MarkResubmitted(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.ResubmitMonthEndClosing(closing, approvers); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "再提出に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.notifyApprovers(approvers, myInfo, closing.PeriodDisplay()+"の月末締め"); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "月末締めを再提出しました", closing)
}

func (h *Handler) CancelMonthEndClosing(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	closing := r.Context().Value(MonthEndClosingCtx).(*domain.MonthEndClosing)

	if closing.UserID != myInfo.ID {
		h.errorResponse(w, r, "本人の月末締めのみ取り消しできます")
		return
	}

	if err := closing.MarkCanceled(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CancelMonthEndClosing(closing); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "取り消しに失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "月末締めを取り消しました", closing)
}

// LockMonthEndClosing は承認済みの締めを確定させる。以後は reopen できない
func (h *Handler) LockMonthEndClosing(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	closing := r.Context().Value(MonthEndClosingCtx).(*domain.MonthEndClosing)

	if err := closing.MarkLocked(myInfo.ID, time.Now()); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateMonthEndClosing(closing); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "確定に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "月末締めを確定しました", closing)
}

func (h *Handler) ReopenMonthEndClosing(w http.ResponseWriter, r *http.Request) {
	closing := r.Context().Value(MonthEndClosingCtx).(*domain.MonthEndClosing)

	if err := closing.MarkReopened(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateMonthEndClosing(closing); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "差し戻しに失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "月末締めを作業中に戻しました", closing)
}
