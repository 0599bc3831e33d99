package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/petmatch-api/internal/config"
)

// Service sends transactional mail. Delivery is best-effort; callers
// log failures and move on.
type Service interface {
	SendMatchAlert(ctx context.Context, to, petName, otherPetName string) error
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.EmailConfig) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) SendMatchAlert(ctx context.Context, to, petName, otherPetName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "It's a match!")
	m.SetBody("text/html", fmt.Sprintf(
		"<p>Great news! <strong>%s</strong> and <strong>%s</strong> liked each other. Open the app to start chatting.</p>",
		petName, otherPetName,
	))

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send match alert: %w", err)
		}
		return nil
	}
}

type noopService struct{}

// NewNoopService returns a mailer that does nothing, for deployments
// without SMTP configured.
func NewNoopService() Service {
	return noopService{}
}

func (noopService) SendMatchAlert(context.Context, string, string, string) error {
	return nil
}
