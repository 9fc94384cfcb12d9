package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/arbeit-hub/attendance-manager/backend/internal/workhours"
)

type monthlySummaryWithEvaluation struct {
	*domain.MonthlySummary
	WeeklyShifts []*domain.WeeklyShift `json:"weeklyShifts"`
	Evaluation   workhours.Result      `json:"evaluation"`
}

// EnsureMonthlySummary は対象月の月次集計を取得し、なければ作成する。
// 合計値は常に構成週から再計算して返す
func (h *Handler) EnsureMonthlySummary(w http.ResponseWriter, r *http.Request) {
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

	summary := &domain.MonthlySummary{
		UserID:      myInfo.ID,
		TargetYear:  req.Year,
		TargetMonth: req.Month,
	}

	if err := h.repository.EnsureMonthlySummary(summary); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.respondWithRecomputedSummary(w, r, summary, "月次集計を取得しました")
}

func (h *Handler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	summary := r.Context().Value(MonthlySummaryCtx).(*domain.MonthlySummary)
	h.respondWithRecomputedSummary(w, r, summary, "月次集計を取得しました")
}

// SubmitMonthlySummary は実働のある週が 1 つ以上あり、
// かつ月間のハード違反がない場合のみ提出できる
func (h *Handler) SubmitMonthlySummary(w http.ResponseWriter, r *http.Request) {
	summary := r.Context().Value(MonthlySummaryCtx).(*domain.MonthlySummary)

	shifts, err := h.repository.GetWeeklyShiftsForMonth(summary.UserID, summary.TargetYear, summary.TargetMonth)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if !summary.CanSubmit(shifts) {
		h.errorResponse(w, r, "実働のある週間シフトがないか、既に提出済みです")
		return
	}

	result := h.compliance.EvaluateMonth(summary, shifts)
	if result.HasViolations() {
		violation := &domain.ComplianceViolationError{
			Violations: result.Violations,
			Warnings:   result.Warnings,
		}
		h.errorResponse(w, r, violation.Error())
		return
	}

	summary.RecomputeTotals(shifts)
	if err := summary.MarkSubmitted(time.Now()); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateMonthlySummary(summary); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "提出に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "月次集計を提出しました", monthlySummaryWithEvaluation{
		MonthlySummary: summary,
		WeeklyShifts:   shifts,
		Evaluation:     result,
	})
}

func (h *Handler) WithdrawMonthlySummary(w http.ResponseWriter, r *http.Request) {
	summary := r.Context().Value(MonthlySummaryCtx).(*domain.MonthlySummary)

	if err := summary.MarkWithdrawn(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateMonthlySummary(summary); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "取り下げに失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "月次集計を取り下げました", summary)
}

func (h *Handler) respondWithRecomputedSummary(w http.ResponseWriter, r *http.Request, summary *domain.MonthlySummary, msg string) {
	shifts, err := h.repository.GetWeeklyShiftsForMonth(summary.UserID, summary.TargetYear, summary.TargetMonth)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	summary.RecomputeTotals(shifts)

	h.successResponse(w, r, msg, monthlySummaryWithEvaluation{
		MonthlySummary: summary,
		WeeklyShifts:   shifts,
		Evaluation:     h.compliance.EvaluateMonth(summary, shifts),
	})
}
