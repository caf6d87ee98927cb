package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/shoplytic/reminder-api/internal/model"
)

type smtpService struct{}

// NewSMTPService returns a gomail-backed sender. A dialer is built per
// send because each reminder level may use a different account.
func NewSMTPService() Service {
	return &smtpService{}
}

func (s *smtpService) Send(ctx context.Context, account *model.EmailAccount, msg *Message) error {
	if account == nil {
		return fmt.Errorf("email account is required")
	}
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", account.Email, account.DisplayName)
	m.SetAddressHeader("To", msg.To, msg.ToName)
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	m.SetHeader("Subject", msg.Subject)
	if msg.HTML {
		m.SetBody("text/html", msg.Body)
	} else {
		m.SetBody("text/plain", msg.Body)
	}

	dialer := gomail.NewDialer(account.Host, account.Port, account.Username, account.Password)
	dialer.SSL = account.UseTLS

	// gomail has no context support; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
