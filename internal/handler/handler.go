package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/ja"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ja_translations "github.com/go-playground/validator/v10/translations/ja"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/arbeit-hub/attendance-manager/backend/internal/config"
	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
	"github.com/arbeit-hub/attendance-manager/backend/internal/repository"
	"github.com/arbeit-hub/attendance-manager/backend/internal/workhours"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	compliance  *workhours.Validator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	ja := ja.New()
	uni := ut.New(ja, ja)
	trans, _ := uni.GetTranslator("ja")
	if err := ja_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	limits := workhours.NewLimits(
		cfg.Compliance.DailyLimitHours,
		cfg.Compliance.WeeklyCompanyLimitHours,
		cfg.Compliance.WeeklyTotalLimitHours,
		cfg.Compliance.MonthlyLimitHours,
		cfg.Compliance.WarningRatio,
		cfg.Compliance.BreakThresholdHours,
		cfg.Compliance.BreakDurationHours,
	)

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		compliance:  workhours.NewValidator(limits),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 認証関連
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下の API はログイン後のみ呼び出せる
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleSystemAdmin})).Post("/", h.CreateUser)
			r.With(h.RequiredRole([]domain.Role{domain.RoleDepartmentManager, domain.RoleHRManager, domain.RoleSystemAdmin})).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleSystemAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleSystemAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleSystemAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/departments", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleSystemAdmin})).Post("/", h.CreateDepartment)
			r.Get("/", h.GetAllDepartments)
		})

		// 週間シフト。作成は (対象日) → 週の確保 → シフトの確保 の順で内部的に行う
		r.Route("/weekly-shifts", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Use(h.preventInactiveUser)
			r.Post("/", h.EnsureWeeklyShift)
			r.Get("/", h.GetMyWeeklyShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.weeklyShift)
				r.Get("/", h.GetWeeklyShift)
				r.Patch("/days/{date}", h.UpdateDailySchedule)
				r.Post("/submit", h.SubmitWeeklyShift)
				r.Post("/withdraw", h.WithdrawWeeklyShift)
			})
		})

		r.Route("/monthly-summaries", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Use(h.preventInactiveUser)
			r.Post("/", h.EnsureMonthlySummary)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.monthlySummary)
				r.Get("/", h.GetMonthlySummary)
				r.Post("/submit", h.SubmitMonthlySummary)
				r.Post("/withdraw", h.WithdrawMonthlySummary)
			})
		})

		r.Route("/leave-requests", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Use(h.preventInactiveUser)
			r.Post("/", h.CreateLeaveRequest)
			r.Get("/", h.GetMyLeaveRequests)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.leaveRequest)
				r.Get("/", h.GetLeaveRequest)
				r.Patch("/", h.UpdateLeaveRequest)
				r.Delete("/", h.DeleteLeaveRequest)
				r.Post("/submit", h.SubmitLeaveRequest)
				r.Post("/resubmit", h.ResubmitLeaveRequest)
				r.Post("/cancel", h.CancelLeaveRequest)
			})
		})

		r.Route("/month-end-closings", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Use(h.preventInactiveUser)
			r.Post("/", h.EnsureMonthEndClosing)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.monthEndClosing)
				r.Get("/", h.GetMonthEndClosing)
				r.Post("/submit", h.SubmitMonthEndClosing)
				r.Post("/resubmit", h.ResubmitMonthEndClosing)
				r.Post("/cancel", h.CancelMonthEndClosing)
				r.With(h.RequiredRole([]domain.Role{domain.RoleHRManager, domain.RoleSystemAdmin})).Post("/lock", h.LockMonthEndClosing)
				r.With(h.RequiredRole([]domain.Role{domain.RoleHRManager, domain.RoleSystemAdmin})).Post("/reopen", h.ReopenMonthEndClosing)
			})
		})

		r.Route("/approvals", func(r chi.Router) {
			r.Use(h.myInfo)
			r.With(h.RequiredRole([]domain.Role{domain.RoleDepartmentManager, domain.RoleHRManager, domain.RoleSystemAdmin})).Get("/pending", h.GetMyPendingApprovals)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.approval)
				r.Get("/", h.GetApproval)
				r.Post("/decide", h.DecideApproval)
			})
		})
	})
}
