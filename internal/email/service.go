package email

import (
	"context"

	"github.com/shoplytic/reminder-api/internal/model"
)

// Message is one outgoing email, already composed.
type Message struct {
	To      string
	ToName  string
	Bcc     []string
	Subject string
	Body    string
	HTML    bool
}

// Service sends mail through the SMTP account a reminder level is
// configured with.
type Service interface {
	Send(ctx context.Context, account *model.EmailAccount, msg *Message) error
}
