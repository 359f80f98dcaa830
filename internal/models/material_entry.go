package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Запись о материалах по проекту.
// MarkupPercent == nil означает "наценка проекта по умолчанию";
// явный ноль — это валидный override, не то же самое, что nil.
type MaterialEntry struct {
	gorm.Model
	ProjectID uint
	Project   Project

	Date          time.Time        `gorm:"not null"`
	Description   string           `gorm:"size:255;not null"`
	Cost          decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	MarkupPercent *decimal.Decimal `gorm:"type:decimal(12,2)"`

	SellPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"` // снимок на момент сохранения
}
