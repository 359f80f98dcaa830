package models

import "gorm.io/gorm"

type Client struct {
	gorm.Model
	Name   string `gorm:"size:200;not null;uniqueIndex"` // Название заказчика, уникально глобально
	Active bool   `gorm:"not null"` // без default-тега: с ним gorm не пишет false при создании

	Assets   []Asset   `gorm:"constraint:OnDelete:SET NULL"`
	Projects []Project `gorm:"constraint:OnDelete:CASCADE"`
}
