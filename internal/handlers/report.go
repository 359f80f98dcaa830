package handlers

import (
	"net/http"
	"strconv"

	"jobtool/internal/database"
	"jobtool/internal/models"
	"jobtool/internal/services"

	"github.com/gin-gonic/gin"
)

// ОТЧЁТ ПО ПРОЕКТУ
//
// Сводка строится из замороженных полей строк журналов:
// отчёт никогда не резолвит ставки заново.

func ShowProjectReport(c *gin.Context) {
	idStr := c.Param("id")
	pid, err := strconv.Atoi(idStr)
	if err != nil || pid <= 0 {
		c.String(http.StatusBadRequest, "Некорректный ID проекта")
		return
	}

	var project models.Project
	if err := database.DB.Preload("Client").First(&project, pid).Error; err != nil {
		c.String(http.StatusNotFound, "Проект не найден")
		return
	}

	var workEntries []models.WorkEntry
	database.DB.Preload("Asset").
		Where("project_id = ?", pid).
		Order("date desc, id asc").
		Find(&workEntries)

	var materialEntries []models.MaterialEntry
	database.DB.Where("project_id = ?", pid).
		Order("date desc, id asc").
		Find(&materialEntries)

	var payments []models.Payment
	database.DB.Where("project_id = ?", pid).
		Order("date desc, id asc").
		Find(&payments)

	billing := services.NewBillingService(database.DB)
	totals, err := billing.TotalsFor(project.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Ошибка расчёта сводки")
		return
	}

	render(c, http.StatusOK, "report.html", gin.H{
		"project":         project,
		"workEntries":     workEntries,
		"materialEntries": materialEntries,
		"payments":        payments,
		"totals":          totals,
		"grandTotal":      totals.GrandTotal(),
	})
}
