package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("リクエストを処理しました", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // ここで slog を使うと出力が崩れる
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// cookie から token を取り出す
		cookie, err := r.Cookie("__attendance_manager_token")
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.errorResponse(w, r, "ログインしていません")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		// token を検証する
		tokenString := cookie.Value
		claims := &AuthClaims{}
		_, err = jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		})
		if err != nil {
			h.errorResponse(w, r, "無効なトークンです")
			return
		}

		// claims の role と sub を context に載せる
		ctx := r.Context()
		ctx = context.WithValue(ctx, RoleCtxKey, claims.Role)
		ctx = context.WithValue(ctx, SubCtxKey, claims.Subject)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subString := r.Context().Value(SubCtxKey).(string)

		sub, err := strconv.ParseInt(subString, 10, 64)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		myInfo, err := h.repository.GetUserByID(sub)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "個人情報が見つかりません")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, myInfo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleCtx := r.Context().Value(RoleCtxKey).(string)
			role := domain.Role(roleCtx)
			if !slices.Contains(roles, role) {
				h.errorResponse(w, r, "権限がありません")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) userInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDParam := chi.URLParam(r, "id")
		userID, err := strconv.ParseInt(userIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "ユーザーIDが不正です")
			return
		}

		user, err := h.repository.GetUserByID(userID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "ユーザーが存在しません")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), UserInfoCtx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) preventOperateInitialAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(UserInfoCtx).(*domain.User)
		if user.Username == h.config.InitialAdmin.Username {
			h.errorResponse(w, r, "初期管理者は操作できません")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// canAccessRecord は本人のレコードか、管理側ロールかを確認する
func (h *Handler) canAccessRecord(r *http.Request, ownerID int64) bool {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	if myInfo.ID == ownerID {
		return true
	}
	managerRoles := []domain.Role{domain.RoleDepartmentManager, domain.RoleHRManager, domain.RoleSystemAdmin}
	return slices.Contains(managerRoles, myInfo.Role)
}

func (h *Handler) parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) weeklyShift(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shiftID, err := h.parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "シフトIDが不正です")
			return
		}

		shift, err := h.repository.GetWeeklyShiftByID(shiftID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "週間シフトが存在しません")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		if !h.canAccessRecord(r, shift.UserID) {
			h.errorResponse(w, r, "権限がありません")
			return
		}

		ctx := context.WithValue(r.Context(), WeeklyShiftCtx, shift)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) monthlySummary(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		summaryID, err := h.parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "集計IDが不正です")
			return
		}

		summary, err := h.repository.GetMonthlySummaryByID(summaryID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "月次集計が存在しません")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		if !h.canAccessRecord(r, summary.UserID) {
			h.errorResponse(w, r, "権限がありません")
			return
		}

		ctx := context.WithValue(r.Context(), MonthlySummaryCtx, summary)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) leaveRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, err := h.parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "申請IDが不正です")
			return
		}

		request, err := h.repository.GetLeaveRequestByID(requestID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "申請が存在しません")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		if !h.canAccessRecord(r, request.UserID) {
			h.errorResponse(w, r, "権限がありません")
			return
		}

		ctx := context.WithValue(r.Context(), LeaveRequestCtx, request)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) monthEndClosing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		closingID, err := h.parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "締めIDが不正です")
			return
		}

		closing, err := h.repository.GetMonthEndClosingByID(closingID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "月末締めが存在しません")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		if !h.canAccessRecord(r, closing.UserID) {
			h.errorResponse(w, r, "権限がありません")
			return
		}

		ctx := context.WithValue(r.Context(), MonthEndClosingCtx, closing)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// approval は担当承認者本人（またはシステム管理者）のみ通す
func (h *Handler) approval(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		approvalID, err := h.parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "承認IDが不正です")
			return
		}

		approval, err := h.repository.GetApprovalByID(approvalID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "承認レコードが存在しません")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
		if approval.ApproverID != myInfo.ID && myInfo.Role != domain.RoleSystemAdmin {
			h.errorResponse(w, r, "権限がありません")
			return
		}

		ctx := context.WithValue(r.Context(), ApprovalCtx, approval)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) preventInactiveUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
		if !myInfo.IsActive {
			h.errorResponse(w, r, "退職済みのため操作できません")
			return
		}
		next.ServeHTTP(w, r)
	})
}
