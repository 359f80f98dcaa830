package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Проект ("заказ") одного заказчика.
// Пара (client_id, name) уникальна.
type Project struct {
	gorm.Model
	ClientID uint `gorm:"uniqueIndex:idx_client_project_name"`
	Client   Client

	Name                  string          `gorm:"size:200;not null;uniqueIndex:idx_client_project_name"`
	Location              string          `gorm:"size:200"`
	HourlyRate            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"` // ставка по умолчанию, если нет override
	// default-теги тут намеренно не ставим: при создании gorm пропускает
	// нулевые поля с default, и явные false/0 молча терялись бы
	MaterialMarkupPercent decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StartDate             *time.Time
	EndDate               *time.Time
	Active                bool `gorm:"not null"`

	WorkEntries     []WorkEntry     `gorm:"constraint:OnDelete:CASCADE"`
	MaterialEntries []MaterialEntry `gorm:"constraint:OnDelete:CASCADE"`
	Payments        []Payment       `gorm:"constraint:OnDelete:CASCADE"`
	RateOverrides   []RateOverride  `gorm:"constraint:OnDelete:CASCADE"`
}
