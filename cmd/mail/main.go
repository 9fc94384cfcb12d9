package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/arbeit-hub/attendance-manager/backend/internal/config"
	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

// メール種別ごとのテンプレートと件名
var mailKinds = map[string]struct {
	TemplatePath string
	Subject      string
}{
	"create_user": {
		TemplatePath: "./templates/new_account_email.html",
		Subject:      "勤怠管理システム - アカウント情報",
	},
	"reset_password": {
		TemplatePath: "./templates/reset_password_otp_email.html",
		Subject:      "勤怠管理システム - パスワード再設定",
	},
	"change_email": {
		TemplatePath: "./templates/change_email_email.html",
		Subject:      "勤怠管理システム - メールアドレス変更",
	},
	"approval_requested": {
		TemplatePath: "./templates/approval_requested_email.html",
		Subject:      "勤怠管理システム - 承認依頼",
	},
	"approval_decided": {
		TemplatePath: "./templates/approval_decided_email.html",
		Subject:      "勤怠管理システム - 承認結果のお知らせ",
	},
}

func main() {
	/**********************************************
	 * logger の作成
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * 設定の読み込み
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("設定を読み込めませんでした", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * メールクライアントの作成
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("メールクライアントを作成できませんでした", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// メールサーバーに接続できるかを確認しておく
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("メールサーバーに接続できませんでした", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * RabbitMQ 接続
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("RabbitMQ に接続できませんでした", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// チャネルの作成
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("チャネルを作成できませんでした", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// キューの宣言
	q, err := ch.QueueDeclare(
		"email_queue", // キュー名
		true,          // 永続化する
		false,         // コンシューマー不在でも自動削除しない
		false,         // 排他キューにしない
		false,         // RabbitMQ の応答を待つ
		nil,           // 追加引数
	)
	if err != nil {
		logger.Error("キューを宣言できませんでした", slog.String("error", err.Error()))
		return
	}

	// CTRL+C を監視する
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// メッセージの消費
	msgs, err := ch.Consume(
		q.Name, // キュー
		"",     // コンシューマータグは RabbitMQ に割り当てさせる
		false,  // 手動 ack
		false,  // 排他にしない
		false,  // RabbitMQ はこのパラメータをサポートしないため false
		false,  // RabbitMQ の応答を待つ
		nil,    // 追加引数
	)
	if err != nil {
		logger.Error("メッセージを消費できませんでした", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// goroutine 停止用のコンテキスト
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("メッセージを受信しました", slog.String("message", string(msg.Body)))
				// メール情報のデシリアライズ
				mailMessage := domain.MailMessage{}
				if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
					logger.Error("メール情報のデシリアライズに失敗しました", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				kind, ok := mailKinds[mailMessage.Type]
				if !ok {
					logger.Error("サポートされていないメール種別です", slog.String("type", mailMessage.Type))
					_ = msg.Nack(false, false)
					continue
				}

				// メールの組み立て
				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("差出人を設定できませんでした", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(mailMessage.To); err != nil {
					logger.Error("宛先を設定できませんでした", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				tmpl, err := template.ParseFiles(kind.TemplatePath)
				if err != nil {
					logger.Error("メールテンプレートを解析できませんでした", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
					logger.Error("メール本文を設定できませんでした", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				m.Subject(kind.Subject)

				// メールの送信
				if err := client.DialAndSend(m); err != nil {
					logger.Error("メールの送信に失敗しました", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // 再送のためキューに戻す
					continue
				}

				// メッセージの確認
				_ = msg.Ack(false)
			}
		}
	}()

	// CTRL+C 信号を待つ
	logger.Info("メッセージを待機しています...（CTRL+C で終了）")
	<-sigChan

	// 優雅に終了する
	slog.Info("mail worker を停止しています...")
	cancel()
	wg.Wait() // 全ての goroutine の完了を待つ
	slog.Info("mail worker を正常に停止しました")
}
