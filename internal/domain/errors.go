package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTransition は現在の状態から許可されていない遷移を表す
	ErrInvalidTransition = errors.New("現在の状態ではこの操作は実行できません")
	// ErrNotFound は参照先の週・集計・承認レコードが存在しないことを表す
	ErrNotFound = errors.New("対象のレコードが見つかりません")
)

// ValidationError は入力された時刻などが論理的に不正な場合のエラー
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IssueCode は違反・警告の種別
type IssueCode string

const (
	IssueTimeOverlap       IssueCode = "time_overlap"
	IssueDailyLimit        IssueCode = "daily_limit"
	IssueDailyBucketLimit  IssueCode = "daily_bucket_limit"
	IssueBreakInsufficient IssueCode = "break_insufficient"
	IssueWeeklyCompany     IssueCode = "weekly_company_limit"
	IssueWeeklyTotal       IssueCode = "weekly_total_limit"
	IssueMonthlyTotal      IssueCode = "monthly_total_limit"
	IssueLongDay           IssueCode = "long_day"
	IssueNightWork         IssueCode = "night_work"
)

// Issue は個々の違反または警告。Date は日単位のルールのみ設定される
type Issue struct {
	Code    IssueCode `json:"code"`
	Date    string    `json:"date,omitempty"`
	Message string    `json:"message"`
}

// ComplianceViolationError は提出をブロックするハード違反。
// 呼び出し側が再入力を促せるよう、違反と警告の一覧をそのまま持ち回る
type ComplianceViolationError struct {
	Violations []Issue
	Warnings   []Issue
}

func (e *ComplianceViolationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "\n")
}
