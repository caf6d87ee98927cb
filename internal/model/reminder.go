package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReminderRuleType identifies the trigger domain of a reminder. The token
// allow-list is keyed by it.
type ReminderRuleType string

const (
	RuleTypeAbandonedCart ReminderRuleType = "abandoned_cart"
)

// ConditionType discriminates the payload of a ReminderCondition.
type ConditionType string

const (
	ConditionTypeCategory        ConditionType = "category"
	ConditionTypeProduct         ConditionType = "product"
	ConditionTypeManufacturer    ConditionType = "manufacturer"
	ConditionTypeCustomerTag     ConditionType = "customer_tag"
	ConditionTypeCustomerRole    ConditionType = "customer_role"
	ConditionTypeRegisterField   ConditionType = "customer_register_field"
	ConditionTypeCustomAttribute ConditionType = "custom_customer_attribute"
)

// MatchMode controls how a condition's own target list is matched.
type MatchMode string

const (
	MatchAllOfThem MatchMode = "all_of_them"
	MatchOneOfThem MatchMode = "one_of_them"
)

// Reminder is a configured automation: an ordered set of escalating levels
// plus the conditions a customer must satisfy to enter a cycle.
type Reminder struct {
	Base
	Name           string             `json:"name" db:"name" binding:"required"`
	RuleType       ReminderRuleType   `json:"rule_type" db:"rule_type"`
	Active         bool               `json:"active" db:"active"`
	DisplayOrder   int                `json:"display_order" db:"display_order"`
	StartDateUTC   time.Time          `json:"start_date_utc" db:"start_date_utc"`
	EndDateUTC     time.Time          `json:"end_date_utc" db:"end_date_utc"`
	LastUpdateDate time.Time          `json:"last_update_date" db:"last_update_date"`
	AllowRenew     bool               `json:"allow_renew" db:"allow_renew"`
	RenewedDay     int                `json:"renewed_day" db:"renewed_day"`
	Levels         ReminderLevels     `json:"levels" db:"levels"`
	Conditions     ReminderConditions `json:"conditions" db:"conditions"`
}

// ReminderLevel is one stage of the escalation sequence. Day/Hour form the
// offset from the triggering timestamp (cart update for the first level,
// previous send for later ones).
type ReminderLevel struct {
	ID                uuid.UUID `json:"id"`
	Level             int       `json:"level"`
	Day               int       `json:"day"`
	Hour              int       `json:"hour"`
	Subject           string    `json:"subject"`
	Body              string    `json:"body"`
	BccEmailAddresses string    `json:"bcc_email_addresses,omitempty"`
	EmailAccountID    uuid.UUID `json:"email_account_id"`
}

// Offset returns the level's configured delay.
func (l ReminderLevel) Offset() time.Duration {
	return time.Duration(l.Day)*24*time.Hour + time.Duration(l.Hour)*time.Hour
}

// FieldMatch is a key/value pair matched against customer attributes. For
// custom-attribute conditions Field carries a composite
// "attributeId:valueId" key.
type FieldMatch struct {
	Field string `json:"field"`
	Value string `json:"value,omitempty"`
}

// ReminderCondition is a tagged variant: Type selects which target list is
// meaningful, Mode selects AllOfThem/OneOfThem semantics over that list.
type ReminderCondition struct {
	ID               uuid.UUID     `json:"id"`
	Type             ConditionType `json:"type"`
	Mode             MatchMode     `json:"mode"`
	CategoryIDs      []uuid.UUID   `json:"category_ids,omitempty"`
	ProductIDs       []uuid.UUID   `json:"product_ids,omitempty"`
	ManufacturerIDs  []uuid.UUID   `json:"manufacturer_ids,omitempty"`
	CustomerTags     []string      `json:"customer_tags,omitempty"`
	CustomerRoleIDs  []uuid.UUID   `json:"customer_role_ids,omitempty"`
	RegisterFields   []FieldMatch  `json:"register_fields,omitempty"`
	CustomAttributes []FieldMatch  `json:"custom_attributes,omitempty"`
}

// ReminderLevels is stored as a JSONB column.
type ReminderLevels []ReminderLevel

func (l ReminderLevels) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *ReminderLevels) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type %T for reminder levels", src)
	}
	return json.Unmarshal(b, l)
}

// ReminderConditions is stored as a JSONB column.
type ReminderConditions []ReminderCondition

func (c ReminderConditions) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *ReminderConditions) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type %T for reminder conditions", src)
	}
	return json.Unmarshal(b, c)
}

// FirstLevel returns the lowest-numbered level, or nil when the reminder
// has none.
func (r *Reminder) FirstLevel() *ReminderLevel {
	var first *ReminderLevel
	for i := range r.Levels {
		if first == nil || r.Levels[i].Level < first.Level {
			first = &r.Levels[i]
		}
	}
	return first
}

// NextLevelAfter returns the lowest level strictly greater than n, or nil
// when n is already the terminal level.
func (r *Reminder) NextLevelAfter(n int) *ReminderLevel {
	var next *ReminderLevel
	for i := range r.Levels {
		if r.Levels[i].Level <= n {
			continue
		}
		if next == nil || r.Levels[i].Level < next.Level {
			next = &r.Levels[i]
		}
	}
	return next
}

// MaxLevel returns the highest level number, or 0 when no levels exist.
func (r *Reminder) MaxLevel() int {
	max := 0
	for i := range r.Levels {
		if r.Levels[i].Level > max {
			max = r.Levels[i].Level
		}
	}
	return max
}

// LevelByID returns the level with the given identity, or nil.
func (r *Reminder) LevelByID(id uuid.UUID) *ReminderLevel {
	for i := range r.Levels {
		if r.Levels[i].ID == id {
			return &r.Levels[i]
		}
	}
	return nil
}

// CreateReminderRequest is the admin API payload for creating a reminder.
type CreateReminderRequest struct {
	Name           string             `json:"name" binding:"required"`
	RuleType       ReminderRuleType   `json:"rule_type"`
	Active         bool               `json:"active"`
	DisplayOrder   int                `json:"display_order"`
	StartDateUTC   time.Time          `json:"start_date_utc" binding:"required"`
	EndDateUTC     time.Time          `json:"end_date_utc" binding:"required"`
	LastUpdateDate time.Time          `json:"last_update_date"`
	AllowRenew     bool               `json:"allow_renew"`
	RenewedDay     int                `json:"renewed_day" binding:"min=0"`
	Levels         ReminderLevels     `json:"levels" binding:"required,min=1"`
	Conditions     ReminderConditions `json:"conditions"`
}

// UpdateReminderRequest is the admin API payload for updating a reminder.
type UpdateReminderRequest struct {
	Name           *string             `json:"name,omitempty"`
	Active         *bool               `json:"active,omitempty"`
	DisplayOrder   *int                `json:"display_order,omitempty"`
	StartDateUTC   *time.Time          `json:"start_date_utc,omitempty"`
	EndDateUTC     *time.Time          `json:"end_date_utc,omitempty"`
	LastUpdateDate *time.Time          `json:"last_update_date,omitempty"`
	AllowRenew     *bool               `json:"allow_renew,omitempty"`
	RenewedDay     *int                `json:"renewed_day,omitempty"`
	Levels         *ReminderLevels     `json:"levels,omitempty"`
	Conditions     *ReminderConditions `json:"conditions,omitempty"`
}
