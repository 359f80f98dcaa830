package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Поступление оплаты по проекту.
type Payment struct {
	gorm.Model
	ProjectID uint
	Project   Project

	Date      time.Time       `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reference string          `gorm:"size:200"` // номер платёжки и т.п.
	Notes     string          `gorm:"type:text"`
}
