package models

import (
	"gorm.io/gorm"
)

// PortfolioEntry is one row of the append-only trade ledger. Shares is
// signed: positive for a buy, negative for a sell. Rows are never
// updated or deleted; current holdings are derived by summing.
type PortfolioEntry struct {
	gorm.Model
	UserID uint   `gorm:"index"`
	Symbol string `gorm:"index"`
	Shares int
	Price  float64
}

// Holding is the derived net position for one symbol, decorated with a
// live quote when the aggregator attaches one. Not persisted.
type Holding struct {
	Symbol string
	Shares int
	Name   string
	Price  float64
}

// Value returns the holding's market value at the attached price.
func (h Holding) Value() float64 {
	return float64(h.Shares) * h.Price
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &PortfolioEntry{})
}
