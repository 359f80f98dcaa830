package services

import (
	"errors"
	"fmt"

	"jobtool/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// BillingService — расчёт ставок, наценок и фиксация денежных полей
// строк журнала на момент сохранения.
//
// Правило округления по всему приложению: Round(2) у shopspring/decimal,
// т.е. половина от нуля (65.005 -> 65.01, -65.005 -> -65.01).
// Округляются только замороженные поля, суммы считаются точно.
type BillingService struct {
	db *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{db: db}
}

// ResolveRate возвращает ставку для пары (проект, ресурс):
// override по паре, иначе ставка ресурса, иначе ставка проекта.
// Отсутствие override — штатная ситуация, не ошибка.
func (s *BillingService) ResolveRate(projectID, assetID uint) (decimal.Decimal, error) {
	return resolveRate(s.db, projectID, assetID)
}

func resolveRate(tx *gorm.DB, projectID, assetID uint) (decimal.Decimal, error) {
	var override models.RateOverride
	err := tx.Where("project_id = ? AND asset_id = ?", projectID, assetID).
		First(&override).Error
	if err == nil {
		return override.Rate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, fmt.Errorf("lookup rate override: %w", err)
	}

	var asset models.Asset
	if err := tx.First(&asset, assetID).Error; err != nil {
		return decimal.Zero, fmt.Errorf("lookup asset %d: %w", assetID, err)
	}
	if !asset.DefaultRate.IsZero() {
		return asset.DefaultRate, nil
	}

	// у ресурса ставка не задана — берём ставку проекта (может быть 0)
	var project models.Project
	if err := tx.First(&project, projectID).Error; err != nil {
		return decimal.Zero, fmt.Errorf("lookup project %d: %w", projectID, err)
	}
	return project.HourlyRate, nil
}

// ResolveMarkup возвращает процент наценки на материалы.
// Явный override (в т.ч. ноль) побеждает; nil — наценка проекта.
func ResolveMarkup(project *models.Project, entryOverride *decimal.Decimal) decimal.Decimal {
	if entryOverride != nil {
		return *entryOverride
	}
	return project.MaterialMarkupPercent
}

// SaveWorkEntry сохраняет запись о работе, фиксируя RateUsed и LineTotal.
// Вызывается и при создании, и при правке: повторное сохранение
// пересчитывает запись по текущим ставкам.
func (s *BillingService) SaveWorkEntry(entry *models.WorkEntry) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		rate, err := resolveRate(tx, entry.ProjectID, entry.AssetID)
		if err != nil {
			return err
		}
		entry.RateUsed = rate
		entry.LineTotal = rate.Mul(entry.Quantity).Round(2)
		return tx.Save(entry).Error
	})
}

// SaveMaterialEntry сохраняет запись о материалах, фиксируя SellPrice.
func (s *BillingService) SaveMaterialEntry(entry *models.MaterialEntry) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, entry.ProjectID).Error; err != nil {
			return fmt.Errorf("lookup project %d: %w", entry.ProjectID, err)
		}
		m := ResolveMarkup(&project, entry.MarkupPercent)
		entry.SellPrice = entry.Cost.Mul(hundred.Add(m)).Div(hundred).Round(2)
		return tx.Save(entry).Error
	})
}
