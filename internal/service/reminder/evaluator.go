package reminder

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/internal/repository"
	"github.com/shoplytic/reminder-api/internal/service/attribute"
)

// Evaluator matches a reminder's conditions against a customer snapshot.
// It is read-only and safe to call repeatedly.
//
// Missing catalog entities never propagate as errors: an unresolved product
// lookup counts as a failed condition (fail-closed).
type Evaluator struct {
	catalog repository.ProductRepository
	attrs   attribute.Parser
	logger  zerolog.Logger
}

func NewEvaluator(catalog repository.ProductRepository, attrs attribute.Parser, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		catalog: catalog,
		attrs:   attrs,
		logger:  logger,
	}
}

// Evaluate reports whether the customer satisfies the condition list. An
// empty list means no restriction.
//
// Conditions are not conjoined: each condition's result overwrites the
// previous one, so the last condition in the list decides. This mirrors
// the legacy rule engine; existing rule configurations rely on it.
func (e *Evaluator) Evaluate(ctx context.Context, conditions []model.ReminderCondition, customer *model.Customer) bool {
	if len(conditions) == 0 {
		return true
	}

	matched := false
	for _, cond := range conditions {
		switch cond.Type {
		case model.ConditionTypeCategory:
			matched = e.matchCategory(ctx, cond, customer.CartProductIDs)
		case model.ConditionTypeProduct:
			matched = matchProducts(cond, customer.CartProductIDs)
		case model.ConditionTypeManufacturer:
			matched = e.matchManufacturer(ctx, cond, customer.CartProductIDs)
		case model.ConditionTypeCustomerTag:
			matched = matchTags(cond, customer)
		case model.ConditionTypeCustomerRole:
			matched = matchRoles(cond, customer)
		case model.ConditionTypeRegisterField:
			matched = matchRegisterFields(cond, customer)
		case model.ConditionTypeCustomAttribute:
			matched = e.matchCustomAttributes(cond, customer)
		}
	}
	return matched
}

func (e *Evaluator) matchCategory(ctx context.Context, cond model.ReminderCondition, cartProductIDs []uuid.UUID) bool {
	switch cond.Mode {
	case model.MatchAllOfThem:
		for _, categoryID := range cond.CategoryIDs {
			for _, productID := range cartProductIDs {
				product, err := e.catalog.Get(ctx, productID)
				if err != nil {
					e.logger.Warn().Err(err).Str("product_id", productID.String()).Msg("catalog lookup failed, treating condition as unmet")
					return false
				}
				if product == nil || !containsUUID(product.CategoryIDs, categoryID) {
					return false
				}
			}
		}
		return true
	case model.MatchOneOfThem:
		for _, categoryID := range cond.CategoryIDs {
			for _, productID := range cartProductIDs {
				product, err := e.catalog.Get(ctx, productID)
				if err != nil {
					e.logger.Warn().Err(err).Str("product_id", productID.String()).Msg("catalog lookup failed, treating condition as unmet")
					continue
				}
				if product != nil && containsUUID(product.CategoryIDs, categoryID) {
					return true
				}
			}
		}
		return false
	}
	return false
}

func (e *Evaluator) matchManufacturer(ctx context.Context, cond model.ReminderCondition, cartProductIDs []uuid.UUID) bool {
	switch cond.Mode {
	case model.MatchAllOfThem:
		for _, manufacturerID := range cond.ManufacturerIDs {
			for _, productID := range cartProductIDs {
				product, err := e.catalog.Get(ctx, productID)
				if err != nil {
					e.logger.Warn().Err(err).Str("product_id", productID.String()).Msg("catalog lookup failed, treating condition as unmet")
					return false
				}
				if product == nil || !containsUUID(product.ManufacturerIDs, manufacturerID) {
					return false
				}
			}
		}
		return true
	case model.MatchOneOfThem:
		for _, manufacturerID := range cond.ManufacturerIDs {
			for _, productID := range cartProductIDs {
				product, err := e.catalog.Get(ctx, productID)
				if err != nil {
					e.logger.Warn().Err(err).Str("product_id", productID.String()).Msg("catalog lookup failed, treating condition as unmet")
					continue
				}
				if product != nil && containsUUID(product.ManufacturerIDs, manufacturerID) {
					return true
				}
			}
		}
		return false
	}
	return false
}

func matchProducts(cond model.ReminderCondition, cartProductIDs []uuid.UUID) bool {
	switch cond.Mode {
	case model.MatchAllOfThem:
		return containsAllUUIDs(cartProductIDs, cond.ProductIDs)
	case model.MatchOneOfThem:
		return containsAnyUUID(cartProductIDs, cond.ProductIDs)
	}
	return true
}

func matchRoles(cond model.ReminderCondition, customer *model.Customer) bool {
	if customer == nil {
		return false
	}
	switch cond.Mode {
	case model.MatchAllOfThem:
		return containsAllUUIDs(customer.RoleIDs, cond.CustomerRoleIDs)
	case model.MatchOneOfThem:
		return containsAnyUUID(customer.RoleIDs, cond.CustomerRoleIDs)
	}
	return false
}

func matchTags(cond model.ReminderCondition, customer *model.Customer) bool {
	if customer == nil {
		return false
	}
	switch cond.Mode {
	case model.MatchAllOfThem:
		for _, tag := range cond.CustomerTags {
			if !containsString(customer.Tags, tag) {
				return false
			}
		}
		return true
	case model.MatchOneOfThem:
		for _, tag := range cond.CustomerTags {
			if containsString(customer.Tags, tag) {
				return true
			}
		}
		return false
	}
	return false
}

func matchRegisterFields(cond model.ReminderCondition, customer *model.Customer) bool {
	if customer == nil {
		return false
	}
	hasPair := func(m model.FieldMatch) bool {
		for _, attr := range customer.GenericAttributes {
			if attr.Key == m.Field && attr.Value == m.Value {
				return true
			}
		}
		return false
	}

	switch cond.Mode {
	case model.MatchAllOfThem:
		for _, m := range cond.RegisterFields {
			if !hasPair(m) {
				return false
			}
		}
		return true
	case model.MatchOneOfThem:
		for _, m := range cond.RegisterFields {
			if hasPair(m) {
				return true
			}
		}
		return false
	}
	return false
}

func (e *Evaluator) matchCustomAttributes(cond model.ReminderCondition, customer *model.Customer) bool {
	if customer == nil {
		return false
	}
	blob, ok := customer.GenericAttributes.Get(model.AttributeCustomCustomerAttributes)
	if !ok || blob == "" {
		return false
	}

	selected, err := e.attrs.Parse(blob)
	if err != nil {
		e.logger.Warn().Err(err).Str("customer_id", customer.ID.String()).Msg("attribute blob parse failed, treating condition as unmet")
		return false
	}

	hasSelected := func(attributeID, valueID string) bool {
		for _, v := range selected {
			if v.AttributeID == attributeID && v.ValueID == valueID {
				return true
			}
		}
		return false
	}

	switch cond.Mode {
	case model.MatchAllOfThem:
		for _, m := range cond.CustomAttributes {
			fields := strings.Split(m.Field, ":")
			if len(fields) < 2 || !hasSelected(fields[0], fields[len(fields)-1]) {
				return false
			}
		}
		return true
	case model.MatchOneOfThem:
		for _, m := range cond.CustomAttributes {
			fields := strings.Split(m.Field, ":")
			if len(fields) > 1 && hasSelected(fields[0], fields[len(fields)-1]) {
				return true
			}
		}
		return false
	}
	return false
}

func containsUUID(haystack []uuid.UUID, needle uuid.UUID) bool {
	for _, id := range haystack {
		if id == needle {
			return true
		}
	}
	return false
}

func containsAllUUIDs(haystack, needles []uuid.UUID) bool {
	for _, needle := range needles {
		if !containsUUID(haystack, needle) {
			return false
		}
	}
	return true
}

func containsAnyUUID(haystack, needles []uuid.UUID) bool {
	for _, needle := range needles {
		if containsUUID(haystack, needle) {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
