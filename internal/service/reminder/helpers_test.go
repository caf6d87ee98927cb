package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/internal/service/attribute"
)

type fakeCatalog struct {
	products map[uuid.UUID]*model.Product
	failing  map[uuid.UUID]error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: make(map[uuid.UUID]*model.Product),
		failing:  make(map[uuid.UUID]error),
	}
}

func (c *fakeCatalog) add(p *model.Product) *fakeCatalog {
	c.products[p.ID] = p
	return c
}

func (c *fakeCatalog) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if err, ok := c.failing[id]; ok {
		return nil, err
	}
	return c.products[id], nil
}

type fakeHistoryRepo struct {
	records []*model.ReminderHistory
	inserts int
	updates int
	failErr error
}

func (r *fakeHistoryRepo) ListForPair(ctx context.Context, customerID, reminderID uuid.UUID) ([]*model.ReminderHistory, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	var out []*model.ReminderHistory
	for _, h := range r.records {
		if h.CustomerID == customerID && h.ReminderID == reminderID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]*model.ReminderHistory, error) {
	var out []*model.ReminderHistory
	for _, h := range r.records {
		if h.CustomerID == customerID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) Insert(ctx context.Context, history *model.ReminderHistory) error {
	if r.failErr != nil {
		return r.failErr
	}
	history.ID = uuid.New()
	r.records = append(r.records, history)
	r.inserts++
	return nil
}

func (r *fakeHistoryRepo) Update(ctx context.Context, history *model.ReminderHistory) error {
	if r.failErr != nil {
		return r.failErr
	}
	r.updates++
	return nil
}

type fakeReminderRepo struct {
	active []*model.Reminder
}

func (r *fakeReminderRepo) Create(ctx context.Context, reminder *model.Reminder) error { return nil }
func (r *fakeReminderRepo) Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	return nil, nil
}
func (r *fakeReminderRepo) List(ctx context.Context) ([]*model.Reminder, error) { return nil, nil }
func (r *fakeReminderRepo) ListActive(ctx context.Context, now time.Time) ([]*model.Reminder, error) {
	return r.active, nil
}
func (r *fakeReminderRepo) Update(ctx context.Context, reminder *model.Reminder) error { return nil }
func (r *fakeReminderRepo) Delete(ctx context.Context, id uuid.UUID) error             { return nil }

type fakeCustomerRepo struct {
	eligible []*model.Customer
}

func (r *fakeCustomerRepo) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return nil, nil
}
func (r *fakeCustomerRepo) ListEligible(ctx context.Context, reminder *model.Reminder) ([]*model.Customer, error) {
	return r.eligible, nil
}

type sendCall struct {
	customerID uuid.UUID
	levelID    uuid.UUID
}

type fakeDispatcher struct {
	result bool
	calls  []sendCall
}

func (d *fakeDispatcher) SendLevel(ctx context.Context, customer *model.Customer, rem *model.Reminder, levelID uuid.UUID) bool {
	d.calls = append(d.calls, sendCall{customerID: customer.ID, levelID: levelID})
	return d.result
}

func newTestEvaluator(catalog *fakeCatalog) *Evaluator {
	return NewEvaluator(catalog, attribute.NewParser(), zerolog.Nop())
}

func timePtr(t time.Time) *time.Time { return &t }

// threeLevelReminder builds a rule with levels due 1h, 1d and 1d after the
// previous trigger.
func threeLevelReminder() *model.Reminder {
	rem := &model.Reminder{
		Name:       "Abandoned cart",
		RuleType:   model.RuleTypeAbandonedCart,
		Active:     true,
		AllowRenew: true,
		RenewedDay: 7,
		Levels: model.ReminderLevels{
			{ID: uuid.New(), Level: 1, Hour: 1, Subject: "Forgot something?"},
			{ID: uuid.New(), Level: 2, Day: 1, Subject: "Still waiting"},
			{ID: uuid.New(), Level: 3, Day: 1, Subject: "Last chance"},
		},
	}
	rem.ID = uuid.New()
	return rem
}

func testCustomer(cartIdle time.Duration) *model.Customer {
	c := &model.Customer{
		Email:          "jo@example.com",
		FirstName:      "Jo",
		HasCartItems:   true,
		CartProductIDs: model.UUIDSlice{uuid.New()},
		CartUpdatedAt:  timePtr(time.Now().UTC().Add(-cartIdle)),
	}
	c.ID = uuid.New()
	return c
}
