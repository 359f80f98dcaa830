package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"jobtool/internal/database"
	"jobtool/internal/models"
	"jobtool/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ЖУРНАЛ РАБОТ И ТЕХНИКИ
//
// Сохранение (и создание, и правка) идёт через BillingService:
// он резолвит ставку и фиксирует rate_used / line_total.

func ShowNewWorkEntry(c *gin.Context) {
	var projects []models.Project
	database.DB.Preload("Client").Where("active = ?", true).
		Order("name asc").Find(&projects)

	// ресурсы фильтруем по заказчику выбранного проекта, если он передан
	assetQ := database.DB.Where("active = ?", true)
	if pidStr := c.Query("project"); pidStr != "" {
		var project models.Project
		if err := database.DB.First(&project, pidStr).Error; err == nil {
			assetQ = assetQ.Where("client_id IS NULL OR client_id = ?", project.ClientID)
		}
	}
	var assets []models.Asset
	assetQ.Order("name asc").Find(&assets)

	render(c, http.StatusOK, "work_entry_form.html", gin.H{
		"projects":        projects,
		"assets":          assets,
		"SelectedProject": c.Query("project"),
		"error":           "",
	})
}

func CreateWorkEntry(c *gin.Context) {
	projectIDStr := c.PostForm("project_id")
	assetIDStr := c.PostForm("asset_id")
	dateStr := c.PostForm("date")
	quantityStr := c.PostForm("quantity")
	notes := strings.TrimSpace(c.PostForm("notes"))

	pid, err := strconv.Atoi(projectIDStr)
	if err != nil || pid <= 0 {
		renderWorkEntryError(c, "Выберите проект")
		return
	}

	var project models.Project
	if err := database.DB.First(&project, pid).Error; err != nil {
		renderWorkEntryError(c, "Проект не найден")
		return
	}

	aid, err := strconv.Atoi(assetIDStr)
	if err != nil || aid <= 0 {
		renderWorkEntryError(c, "Выберите ресурс")
		return
	}

	var asset models.Asset
	if err := database.DB.First(&asset, aid).Error; err != nil {
		renderWorkEntryError(c, "Ресурс не найден")
		return
	}

	date, err := parseDateOrToday(dateStr)
	if err != nil {
		renderWorkEntryError(c, "Некорректная дата")
		return
	}

	// пустое количество = 0, это не ошибка
	quantity, err := parseMoney(quantityStr)
	if err != nil {
		renderWorkEntryError(c, "Некорректное количество")
		return
	}

	entry := models.WorkEntry{
		ProjectID: project.ID,
		AssetID:   asset.ID,
		Date:      date,
		Quantity:  quantity,
		Notes:     notes,
	}

	billing := services.NewBillingService(database.DB)
	if err := billing.SaveWorkEntry(&entry); err != nil {
		renderWorkEntryError(c, "Ошибка сохранения записи")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "work_entry", entry.ID, "create",
			"Работы по проекту "+project.Name+": "+asset.Name+
				" x "+entry.Quantity.String()+" = "+entry.LineTotal.String())
	}

	c.Redirect(http.StatusFound, "/projects/"+strconv.Itoa(int(project.ID))+"/report")
}

func renderWorkEntryError(c *gin.Context, msg string) {
	var projects []models.Project
	database.DB.Preload("Client").Where("active = ?", true).
		Order("name asc").Find(&projects)

	var assets []models.Asset
	database.DB.Where("active = ?", true).Order("name asc").Find(&assets)

	render(c, http.StatusBadRequest, "work_entry_form.html", gin.H{
		"error":    msg,
		"projects": projects,
		"assets":   assets,
	})
}

//
// ПРАВКА ЗАПИСИ
//
// Повторное сохранение пересчитывает запись по ставкам,
// действующим сейчас, а не на момент первого сохранения.

func ShowEditWorkEntry(c *gin.Context) {
	if !isManager(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	id := c.Param("id")

	var entry models.WorkEntry
	if err := database.DB.Preload("Project").Preload("Asset").First(&entry, id).Error; err != nil {
		c.String(http.StatusNotFound, "Запись не найдена")
		return
	}

	var assets []models.Asset
	database.DB.Where("active = ?", true).
		Where("client_id IS NULL OR client_id = ?", entry.Project.ClientID).
		Order("name asc").Find(&assets)

	render(c, http.StatusOK, "work_entry_edit.html", gin.H{
		"entry":  entry,
		"assets": assets,
		"error":  "",
	})
}

func UpdateWorkEntry(c *gin.Context) {
	if !isManager(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	id := c.Param("id")

	var entry models.WorkEntry
	if err := database.DB.First(&entry, id).Error; err != nil {
		c.String(http.StatusNotFound, "Запись не найдена")
		return
	}

	assetIDStr := c.PostForm("asset_id")
	dateStr := c.PostForm("date")
	quantityStr := c.PostForm("quantity")
	notes := strings.TrimSpace(c.PostForm("notes"))

	aid, err := strconv.Atoi(assetIDStr)
	if err != nil || aid <= 0 {
		c.String(http.StatusBadRequest, "Выберите ресурс")
		return
	}

	var asset models.Asset
	if err := database.DB.First(&asset, aid).Error; err != nil {
		c.String(http.StatusNotFound, "Ресурс не найден")
		return
	}

	date, err := parseDateOrToday(dateStr)
	if err != nil {
		c.String(http.StatusBadRequest, "Некорректная дата")
		return
	}

	quantity, err := parseMoney(quantityStr)
	if err != nil {
		c.String(http.StatusBadRequest, "Некорректное количество")
		return
	}

	entry.AssetID = asset.ID
	entry.Date = date
	entry.Quantity = quantity
	entry.Notes = notes

	billing := services.NewBillingService(database.DB)
	if err := billing.SaveWorkEntry(&entry); err != nil {
		c.String(http.StatusInternalServerError, "Ошибка сохранения записи")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "work_entry", entry.ID, "update",
			"Запись о работах пересохранена, сумма "+entry.LineTotal.String())
	}

	c.Redirect(http.StatusFound, "/projects/"+strconv.Itoa(int(entry.ProjectID))+"/report")
}

func DeleteWorkEntry(c *gin.Context) {
	if !isManager(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	id := c.Param("id")

	var entry models.WorkEntry
	if err := database.DB.First(&entry, id).Error; err != nil {
		c.String(http.StatusNotFound, "Запись не найдена")
		return
	}

	if err := database.DB.Delete(&entry).Error; err != nil {
		c.String(http.StatusInternalServerError, "Ошибка удаления")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "work_entry", entry.ID, "delete", "Удалена запись о работах")
	}

	c.Redirect(http.StatusFound, "/projects/"+strconv.Itoa(int(entry.ProjectID))+"/report")
}
