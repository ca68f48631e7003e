package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/guhospital/hospital-api/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, to, name, tempPassword string) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendAnnouncement(ctx context.Context, to, title, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (s *smtpService) SendWelcome(ctx context.Context, to, name, tempPassword string) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your patient account has been created. Sign in with your national id
		and the temporary password below. You will be asked to choose a new
		password on first login.</p>
		<p><b>%s</b></p>
	`, name, tempPassword)
	return s.send(to, "Welcome to the hospital portal", body)
}

func (s *smtpService) SendPasswordReset(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(`
		<p>A password reset was requested for your account.</p>
		<p>Use this token to set a new password: <b>%s</b></p>
		<p>The token expires in one hour. If you did not request a reset,
		ignore this message.</p>
	`, token)
	return s.send(to, "Password reset", body)
}

func (s *smtpService) SendAnnouncement(ctx context.Context, to, title, content string) error {
	body := fmt.Sprintf("<h3>%s</h3><p>%s</p>", title, content)
	return s.send(to, title, body)
}
