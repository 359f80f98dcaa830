package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Запись о работе/технике по проекту.
// RateUsed и LineTotal — снимок на момент сохранения: пересчитываются
// только при явном повторном сохранении записи, а не при смене ставок.
type WorkEntry struct {
	gorm.Model
	ProjectID uint
	Project   Project

	AssetID uint
	Asset   Asset

	Date     time.Time       `gorm:"not null"`
	Quantity decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"` // часы или единицы
	Notes    string          `gorm:"type:text"`

	RateUsed  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}
