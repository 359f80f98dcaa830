package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RateOverride — связь "проект → ресурс → особая ставка".
// На пару (проект, ресурс) допустима ровно одна запись,
// дубль отбивается уникальным индексом на уровне БД.
type RateOverride struct {
	gorm.Model

	ProjectID uint `gorm:"uniqueIndex:idx_project_asset"`
	AssetID   uint `gorm:"uniqueIndex:idx_project_asset"`

	Project Project
	Asset   Asset

	Rate decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
