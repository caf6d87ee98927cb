package message

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytic/reminder-api/internal/email"
	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/internal/service/activity"
)

type fakeAccountRepo struct {
	account *model.EmailAccount
}

func (r *fakeAccountRepo) Get(ctx context.Context, id uuid.UUID) (*model.EmailAccount, error) {
	if r.account == nil {
		return nil, fmt.Errorf("email account not found")
	}
	return r.account, nil
}

type fakeMailer struct {
	sent []*email.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, account *model.EmailAccount, msg *email.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeActivityRepo struct {
	entries []*model.ActivityLog
}

func (r *fakeActivityRepo) Insert(ctx context.Context, entry *model.ActivityLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func dispatchFixture(mailer *fakeMailer, account *model.EmailAccount) (*EmailDispatcher, *fakeActivityRepo, *model.Reminder, *model.Customer) {
	activityRepo := &fakeActivityRepo{}
	d := NewEmailDispatcher(
		&fakeAccountRepo{account: account},
		NewTokenProvider(testStore(), staticCatalog{}),
		mailer,
		activity.NewService(activityRepo, zerolog.Nop()),
		zerolog.Nop(),
	)

	rem := &model.Reminder{
		Name:     "Abandoned cart",
		RuleType: model.RuleTypeAbandonedCart,
		Levels: model.ReminderLevels{{
			ID:                uuid.New(),
			Level:             1,
			Subject:           "Hi %Customer.FirstName%",
			Body:              "<p>Visit %Store.Name%</p>",
			BccEmailAddresses: "audit@shoplytic.io; sales@shoplytic.io",
			EmailAccountID:    uuid.New(),
		}},
	}
	rem.ID = uuid.New()

	customer := &model.Customer{Email: "jo@example.com", FirstName: "Jo"}
	customer.ID = uuid.New()
	return d, activityRepo, rem, customer
}

func testAccount() *model.EmailAccount {
	a := &model.EmailAccount{Email: "noreply@shoplytic.io", DisplayName: "Shoplytic"}
	a.ID = uuid.New()
	return a
}

func TestSendLevelRendersAndSends(t *testing.T) {
	mailer := &fakeMailer{}
	d, activityRepo, rem, customer := dispatchFixture(mailer, testAccount())

	ok := d.SendLevel(context.Background(), customer, rem, rem.Levels[0].ID)
	require.True(t, ok)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "jo@example.com", msg.To)
	assert.Equal(t, "Hi Jo", msg.Subject)
	assert.Contains(t, msg.Body, "Shoplytic Demo")
	assert.Equal(t, []string{"audit@shoplytic.io", "sales@shoplytic.io"}, msg.Bcc)
	assert.True(t, msg.HTML)

	require.Len(t, activityRepo.entries, 1)
	assert.Equal(t, model.ActivityKindAbandonedCart, activityRepo.entries[0].Kind)
}

func TestSendLevelUnknownLevel(t *testing.T) {
	mailer := &fakeMailer{}
	d, _, rem, customer := dispatchFixture(mailer, testAccount())

	assert.False(t, d.SendLevel(context.Background(), customer, rem, uuid.New()))
	assert.Empty(t, mailer.sent)
}

func TestSendLevelMissingAccount(t *testing.T) {
	mailer := &fakeMailer{}
	d, activityRepo, rem, customer := dispatchFixture(mailer, nil)

	assert.False(t, d.SendLevel(context.Background(), customer, rem, rem.Levels[0].ID))
	assert.Empty(t, mailer.sent)
	assert.Empty(t, activityRepo.entries)
}

func TestSendLevelMailerFailure(t *testing.T) {
	mailer := &fakeMailer{err: fmt.Errorf("smtp refused")}
	d, activityRepo, rem, customer := dispatchFixture(mailer, testAccount())

	assert.False(t, d.SendLevel(context.Background(), customer, rem, rem.Levels[0].ID))
	assert.Empty(t, activityRepo.entries)
}
