package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AttributeCustomCustomerAttributes is the generic-attribute key holding
// the encoded custom-attribute blob.
const AttributeCustomCustomerAttributes = "CustomCustomerAttributes"

// GenericAttribute is a key/value pair attached to a customer.
type GenericAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GenericAttributes is stored as a JSONB column.
type GenericAttributes []GenericAttribute

func (a GenericAttributes) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *GenericAttributes) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type %T for generic attributes", src)
	}
	return json.Unmarshal(b, a)
}

// Get returns the value for key and whether it is present.
func (a GenericAttributes) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// UUIDSlice is stored as a JSONB column.
type UUIDSlice []uuid.UUID

func (s UUIDSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *UUIDSlice) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type %T for uuid slice", src)
	}
	return json.Unmarshal(b, s)
}

// StringSlice is stored as a JSONB column.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringSlice) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type %T for string slice", src)
	}
	return json.Unmarshal(b, s)
}

// Customer is the read-only snapshot the scanner evaluates. The reminder
// core never mutates it.
type Customer struct {
	Base
	Email             string            `json:"email" db:"email"`
	Username          string            `json:"username" db:"username"`
	FirstName         string            `json:"first_name" db:"first_name"`
	LastName          string            `json:"last_name" db:"last_name"`
	HasCartItems      bool              `json:"has_cart_items" db:"has_cart_items"`
	CartProductIDs    UUIDSlice         `json:"cart_product_ids" db:"cart_product_ids"`
	CartUpdatedAt     *time.Time        `json:"cart_updated_at" db:"cart_updated_at"`
	RoleIDs           UUIDSlice         `json:"role_ids" db:"role_ids"`
	Tags              StringSlice       `json:"tags" db:"tags"`
	GenericAttributes GenericAttributes `json:"generic_attributes" db:"generic_attributes"`
}

// FullName returns the display name used for outgoing mail.
func (c *Customer) FullName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	case c.LastName != "":
		return c.LastName
	default:
		return c.Email
	}
}
