package model

// Product is the catalog view the condition evaluator consults. Category
// and manufacturer membership is all it needs.
type Product struct {
	Base
	Name            string    `json:"name" db:"name"`
	CategoryIDs     UUIDSlice `json:"category_ids" db:"category_ids"`
	ManufacturerIDs UUIDSlice `json:"manufacturer_ids" db:"manufacturer_ids"`
	Price           float64   `json:"price" db:"price"`
}
