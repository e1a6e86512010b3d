package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"bloghive/internal/utils"
)

type Purpose string

const (
	PurposeSignup Purpose = "signup"
	PurposeReset  Purpose = "password_reset"
)

// NotificationSender delivers codes and transactional emails. Any failure is returned.
type NotificationSender interface {
	SendCode(ctx context.Context, email string, purpose Purpose, code string) error
	SendMessage(ctx context.Context, email, subject, body string) error
}

func codeEmail(purpose Purpose, code string) (subject, html string) {
	switch purpose {
	case PurposeReset:
		subject = "BlogHive password reset code"
		html = fmt.Sprintf(`
		<h2>Password reset</h2>
		<p>Use this code to reset your BlogHive password:</p>
		<p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p>
		<p>The code expires in 5 minutes. If you did not request a reset, ignore this email.</p>
	`, code)
	default:
		subject = "Your BlogHive verification code"
		html = fmt.Sprintf(`
		<h2>Welcome to BlogHive!</h2>
		<p>Your verification code is:</p>
		<p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p>
		<p>The code expires in 5 minutes.</p>
	`, code)
	}
	return subject, html
}

func messageEmail(body string) string {
	return fmt.Sprintf(`
		<p>%s</p>
		<p>Best regards,<br>The BlogHive Team</p>
	`, body)
}

// ---------- SMTP ----------

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

func NewSMTPSender(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, fromName string) NotificationSender {
	return &smtpSender{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
		name:   fromName,
	}
}

func (s *smtpSender) send(email, subject, html string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.name)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)
	return s.dialer.DialAndSend(m)
}

func (s *smtpSender) SendCode(_ context.Context, email string, purpose Purpose, code string) error {
	subject, html := codeEmail(purpose, code)
	if err := s.send(email, subject, html); err != nil {
		return fmt.Errorf("failed to send %s code: %w", purpose, err)
	}
	return nil
}

func (s *smtpSender) SendMessage(_ context.Context, email, subject, body string) error {
	if err := s.send(email, subject, messageEmail(body)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// ---------- SendGrid ----------

type sendgridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridSender(apiKey, fromEmail, fromName string) NotificationSender {
	return &sendgridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

func (s *sendgridSender) send(email, subject, plain, html string) error {
	msg := mail.NewSingleEmail(s.from, subject, mail.NewEmail("", email), plain, html)
	resp, err := s.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (s *sendgridSender) SendCode(_ context.Context, email string, purpose Purpose, code string) error {
	subject, html := codeEmail(purpose, code)
	plain := fmt.Sprintf("Your BlogHive code is %s. It expires in 5 minutes.", code)
	if err := s.send(email, subject, plain, html); err != nil {
		return fmt.Errorf("failed to send %s code: %w", purpose, err)
	}
	return nil
}

func (s *sendgridSender) SendMessage(_ context.Context, email, subject, body string) error {
	if err := s.send(email, subject, body, messageEmail(body)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// ---------- log (dev) ----------

type logSender struct{}

// NewLogSender only writes a log line. Code values are not logged.
func NewLogSender() NotificationSender { return logSender{} }

func (logSender) SendCode(_ context.Context, email string, purpose Purpose, _ string) error {
	utils.Logger.WithField("email", email).Infof("[email][log] %s code issued", purpose)
	return nil
}

func (logSender) SendMessage(_ context.Context, email, subject, _ string) error {
	utils.Logger.WithField("email", email).Infof("[email][log] message %q", subject)
	return nil
}
