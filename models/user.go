package models

import (
	"gorm.io/gorm"
)

// User is an account holder. Cash is a running balance maintained
// alongside the ledger; every trade updates both in one transaction.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex"`
	PasswordHash string
	Cash         float64
}
