package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arbeit-hub/attendance-manager/backend/internal/calendar"
	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/arbeit-hub/attendance-manager/backend/internal/workhours"
)

// weeklyShiftWithEvaluation はシフト本体と検査結果をまとめて返すための応答
type weeklyShiftWithEvaluation struct {
	*domain.WeeklyShift
	Evaluation workhours.Result `json:"evaluation"`
}

// EnsureWeeklyShift は指定日を含む週の週間シフトを取得し、なければ作成する。
// 週レコード自体もここで確保されるため、事前の準備は不要
func (h *Handler) EnsureWeeklyShift(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Date string `json:"date" validate:"required,datetime=2006-01-02"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	cw := calendar.WeekContaining(date)
	week := &domain.Week{
		Year:         cw.Year,
		WeekNumber:   cw.WeekNumber,
		StartDate:    cw.StartDate,
		EndDate:      cw.EndDate,
		IsCrossMonth: cw.IsCrossMonth,
	}

	if err := h.repository.EnsureWeek(week); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	submissionYear, submissionMonth := calendar.SubmissionMonth(cw)

	shift := &domain.WeeklyShift{
		UserID:          myInfo.ID,
		WeekID:          week.ID,
		SubmissionYear:  submissionYear,
		SubmissionMonth: int(submissionMonth),
	}

	if err := h.repository.EnsureWeeklyShift(shift, week); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "週間シフトを取得しました", weeklyShiftWithEvaluation{
		WeeklyShift: shift,
		Evaluation:  h.compliance.EvaluateWeek(shift),
	})
}

func (h *Handler) GetMyWeeklyShifts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		h.errorResponse(w, r, "年の指定が不正です")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		h.errorResponse(w, r, "月の指定が不正です")
		return
	}

	shifts, err := h.repository.GetWeeklyShiftsForMonth(myInfo.ID, year, month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "週間シフト一覧を取得しました", shifts)
}

func (h *Handler) GetWeeklyShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(WeeklyShiftCtx).(*domain.WeeklyShift)

	h.successResponse(w, r, "週間シフトを取得しました", weeklyShiftWithEvaluation{
		WeeklyShift: shift,
		Evaluation:  h.compliance.EvaluateWeek(shift),
	})
}

// UpdateDailySchedule は 1 日分の時刻ペアを書き換え、実働時間を再計算して保存する。
// 提出済みのシフトは取り下げるまで編集できない
func (h *Handler) UpdateDailySchedule(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(WeeklyShiftCtx).(*domain.WeeklyShift)

	if shift.Status != domain.WeeklyShiftDraft {
		h.errorResponse(w, r, "提出済みのシフトは編集できません。先に取り下げてください")
		return
	}

	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		h.errorResponse(w, r, "日付の指定が不正です")
		return
	}

	ds := shift.ScheduleFor(date)
	if ds == nil {
		h.errorResponse(w, r, "指定された日付はこの週に含まれていません")
		return
	}

	var req struct {
		CompanyStartTime *string `json:"companyStartTime" validate:"omitempty,datetime=15:04"`
		CompanyEndTime   *string `json:"companyEndTime" validate:"omitempty,datetime=15:04"`
		SidejobStartTime *string `json:"sidejobStartTime" validate:"omitempty,datetime=15:04"`
		SidejobEndTime   *string `json:"sidejobEndTime" validate:"omitempty,datetime=15:04"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 開始・終了は対で指定する
	if (req.CompanyStartTime == nil) != (req.CompanyEndTime == nil) {
		h.errorResponse(w, r, "弊社勤務の開始・終了時刻は両方指定してください")
		return
	}
	if (req.SidejobStartTime == nil) != (req.SidejobEndTime == nil) {
		h.errorResponse(w, r, "掛け持ち勤務の開始・終了時刻は両方指定してください")
		return
	}

	ds.SetTimes(domain.BucketCompany, req.CompanyStartTime, req.CompanyEndTime)
	ds.SetTimes(domain.BucketSidejob, req.SidejobStartTime, req.SidejobEndTime)

	if err := workhours.Recompute(ds); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			h.errorResponse(w, r, vErr.Message)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.UpdateDailySchedule(ds); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "保存に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "勤務時間を保存しました", weeklyShiftWithEvaluation{
		WeeklyShift: shift,
		Evaluation:  h.compliance.EvaluateWeek(shift),
	})
}

// SubmitWeeklyShift はハード違反がない場合のみ draft -> submitted の遷移を行う。
// 警告だけの場合は提出できるが、内容は違反メモとして保存される
func (h *Handler) SubmitWeeklyShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(WeeklyShiftCtx).(*domain.WeeklyShift)

	result := h.compliance.EvaluateWeek(shift)
	if result.HasViolations() {
		violation := &domain.ComplianceViolationError{
			Violations: result.Violations,
			Warnings:   result.Warnings,
		}

		// 却下理由は下書きのまま違反メモとして残す
		shift.ViolationNotes = violation.Error()
		if err := h.repository.UpdateWeeklyShift(shift); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "提出に失敗しました。もう一度お試しください")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		h.errorResponse(w, r, violation.Error())
		return
	}

	if err := shift.MarkSubmitted(time.Now()); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	shift.ViolationNotes = ""
	for i, warning := range result.Warnings {
		if i > 0 {
			shift.ViolationNotes += "\n"
		}
		shift.ViolationNotes += warning.Message
	}

	if err := h.repository.UpdateWeeklyShift(shift); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "提出に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "週間シフトを提出しました", weeklyShiftWithEvaluation{
		WeeklyShift: shift,
		Evaluation:  result,
	})
}

func (h *Handler) WithdrawWeeklyShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(WeeklyShiftCtx).(*domain.WeeklyShift)

	if err := shift.MarkWithdrawn(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateWeeklyShift(shift); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "取り下げに失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "週間シフトを取り下げました", shift)
}
