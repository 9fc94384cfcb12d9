package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

// ApprovalRequestedMailData は申請の提出時に承認者へ送る通知
type ApprovalRequestedMailData struct {
	ApproverName  string `json:"approverName"`
	ApplicantName string `json:"applicantName"`
	Subject       string `json:"subject"`
}

// ApprovalDecidedMailData は承認・却下の結果を申請者へ送る通知
type ApprovalDecidedMailData struct {
	ApplicantName string `json:"applicantName"`
	Subject       string `json:"subject"`
	Outcome       string `json:"outcome"`
	Comment       string `json:"comment"`
}
