package message

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shoplytic/reminder-api/internal/email"
	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/internal/repository"
	"github.com/shoplytic/reminder-api/internal/service/activity"
)

const maxRecipientNameLength = 300

// EmailDispatcher sends reminder level messages over SMTP. A false return
// tells the caller not to record the send; the level is retried on the
// next pass.
type EmailDispatcher struct {
	accounts repository.EmailAccountRepository
	tokens   *TokenProvider
	mailer   email.Service
	activity *activity.Service
	logger   zerolog.Logger
}

func NewEmailDispatcher(
	accounts repository.EmailAccountRepository,
	tokens *TokenProvider,
	mailer email.Service,
	activity *activity.Service,
	logger zerolog.Logger,
) *EmailDispatcher {
	return &EmailDispatcher{
		accounts: accounts,
		tokens:   tokens,
		mailer:   mailer,
		activity: activity,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// SendLevel renders and sends one reminder level to the customer.
func (d *EmailDispatcher) SendLevel(ctx context.Context, customer *model.Customer, rem *model.Reminder, levelID uuid.UUID) bool {
	level := rem.LevelByID(levelID)
	if level == nil {
		d.logger.Error().
			Str("reminder_id", rem.ID.String()).
			Str("level_id", levelID.String()).
			Msg("unknown reminder level")
		return false
	}

	account, err := d.accounts.Get(ctx, level.EmailAccountID)
	if err != nil {
		d.logger.Error().Err(err).
			Str("reminder_id", rem.ID.String()).
			Str("email_account_id", level.EmailAccountID.String()).
			Msg("failed to load email account")
		return false
	}

	values := d.tokens.Build(ctx, rem.RuleType, customer)
	subject := Replace(level.Subject, values, false)
	body := Replace(level.Body, values, true)

	toName := customer.FullName()
	if len(toName) > maxRecipientNameLength {
		toName = toName[:maxRecipientNameLength]
	}

	msg := &email.Message{
		To:      customer.Email,
		ToName:  toName,
		Bcc:     splitAddresses(level.BccEmailAddresses),
		Subject: subject,
		Body:    body,
		HTML:    true,
	}
	if err := d.mailer.Send(ctx, account, msg); err != nil {
		d.logger.Error().Err(err).
			Str("reminder_id", rem.ID.String()).
			Str("customer_id", customer.ID.String()).
			Int("level", level.Level).
			Msg("failed to send reminder email")
		return false
	}

	d.activity.Log(ctx, model.ActivityKindAbandonedCart, customer.ID, "Send reminder to customer", rem.Name)
	d.logger.Info().
		Str("reminder_id", rem.ID.String()).
		Str("customer_id", customer.ID.String()).
		Int("level", level.Level).
		Msg("reminder level sent")
	return true
}

// splitAddresses parses a semicolon or comma separated address list.
func splitAddresses(list string) []string {
	if list == "" {
		return nil
	}
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ';' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
