package handler

type ContextKey string

var (
	RoleCtxKey         ContextKey = "role"
	SubCtxKey          ContextKey = "sub"
	MyInfoCtx          ContextKey = "myInfo"
	UserInfoCtx        ContextKey = "userInfo"
	WeeklyShiftCtx     ContextKey = "weeklyShift"
	MonthlySummaryCtx  ContextKey = "monthlySummary"
	LeaveRequestCtx    ContextKey = "leaveRequest"
	MonthEndClosingCtx ContextKey = "monthEndClosing"
	ApprovalCtx        ContextKey = "approval"
)
