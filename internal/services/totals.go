package services

import (
	"jobtool/internal/models"

	"github.com/shopspring/decimal"
)

// ProjectTotals — сводка по проекту: работы + материалы − оплаты.
type ProjectTotals struct {
	Labor     decimal.Decimal
	Materials decimal.Decimal
	Payments  decimal.Decimal
	Balance   decimal.Decimal
}

// GrandTotal — начислено всего, без учёта оплат.
func (t ProjectTotals) GrandTotal() decimal.Decimal {
	return t.Labor.Add(t.Materials)
}

// TotalsFor пересчитывает сводку, читая сохранённые строки проекта.
// Ставки заново не резолвятся: суммируются замороженные поля.
// Чистое чтение, без побочных эффектов.
func (s *BillingService) TotalsFor(projectID uint) (ProjectTotals, error) {
	totals := ProjectTotals{
		Labor:     decimal.Zero,
		Materials: decimal.Zero,
		Payments:  decimal.Zero,
	}

	var work []models.WorkEntry
	if err := s.db.Where("project_id = ?", projectID).Find(&work).Error; err != nil {
		return totals, err
	}
	for _, w := range work {
		totals.Labor = totals.Labor.Add(w.LineTotal)
	}

	var materials []models.MaterialEntry
	if err := s.db.Where("project_id = ?", projectID).Find(&materials).Error; err != nil {
		return totals, err
	}
	for _, m := range materials {
		totals.Materials = totals.Materials.Add(m.SellPrice)
	}

	var payments []models.Payment
	if err := s.db.Where("project_id = ?", projectID).Find(&payments).Error; err != nil {
		return totals, err
	}
	for _, p := range payments {
		totals.Payments = totals.Payments.Add(p.Amount)
	}

	totals.Balance = totals.Labor.Add(totals.Materials).Sub(totals.Payments)
	return totals, nil
}

// ClientBalance — суммарный баланс по активным проектам заказчика,
// колонка "running balance" в списке клиентов.
func (s *BillingService) ClientBalance(clientID uint) (decimal.Decimal, error) {
	var projects []models.Project
	if err := s.db.Where("client_id = ? AND active = ?", clientID, true).
		Find(&projects).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range projects {
		t, err := s.TotalsFor(p.ID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(t.Balance)
	}
	return total, nil
}
