package handler

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

// publishMail はメールをシリアライズしてメッセージキューに送る。
// 実際の送信は cmd/mail のコンシューマが行う
func (h *Handler) publishMail(message domain.MailMessage) error {
	mailData, err := json.Marshal(message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	)
}

// notifyApprovers は承認トラックの担当者全員に承認依頼メールを送る。
// メール送信の失敗で申請自体を失敗させたくないため、エラーはログに留める
func (h *Handler) notifyApprovers(approvers []*domain.User, applicant *domain.User, subject string) error {
	for _, approver := range approvers {
		message := domain.MailMessage{
			Type: "approval_requested",
			To:   approver.Email,
			Data: domain.ApprovalRequestedMailData{
				ApproverName:  approver.FullName,
				ApplicantName: applicant.FullName,
				Subject:       subject,
			},
		}
		if err := h.publishMail(message); err != nil {
			return err
		}
	}

	return nil
}

// notifyApplicant は判定結果を申請者本人にメールで知らせる
func (h *Handler) notifyApplicant(applicant *domain.User, subject string, outcome domain.ApprovalStatus, comment string) error {
	outcomeText := "承認"
	if outcome == domain.ApprovalRejected {
		outcomeText = "却下"
	}

	message := domain.MailMessage{
		Type: "approval_decided",
		To:   applicant.Email,
		Data: domain.ApprovalDecidedMailData{
			ApplicantName: applicant.FullName,
			Subject:       subject,
			Outcome:       outcomeText,
			Comment:       comment,
		},
	}

	return h.publishMail(message)
}
