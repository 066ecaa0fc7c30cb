package models

import "github.com/shopspring/decimal"

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a sellable item in the catalog.
type Product struct {
	ID      int             `json:"id" gorm:"primaryKey"`
	Name    string          `json:"name" gorm:"not null"`
	Price   decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Version int             `json:"version,omitempty" gorm:"not null;default:1"`
}

// TableName returns the table backing Product.
func (Product) TableName() string {
	return "products"
}

// ProductSummary is the listing projection of a Product.
type ProductSummary struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Summary projects p onto the fields exposed by the listing endpoint.
func (p Product) Summary() ProductSummary {
	return ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price}
}
