package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AssetUnit string

const (
	UnitHour AssetUnit = "hour"
	UnitDay  AssetUnit = "day"
	UnitEach AssetUnit = "each"
)

// Ресурс: рабочая сила или техника с базовой ставкой.
// ClientID nullable — старые "общие" ресурсы не привязаны к заказчику.
type Asset struct {
	gorm.Model
	ClientID *uint
	Client   *Client

	Name        string          `gorm:"size:200;not null"`
	IsLabor     bool            `gorm:"not null;default:false"` // труд или техника
	Unit        AssetUnit       `gorm:"type:varchar(16);not null;default:'hour'"`
	DefaultRate decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// без default-тега: с ним gorm не пишет false при создании
	Active bool `gorm:"not null"`
}
