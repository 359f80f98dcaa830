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

// ЖУРНАЛ МАТЕРИАЛОВ

func ShowNewMaterialEntry(c *gin.Context) {
	var projects []models.Project
	database.DB.Preload("Client").Where("active = ?", true).
		Order("name asc").Find(&projects)

	render(c, http.StatusOK, "material_entry_form.html", gin.H{
		"projects":        projects,
		"SelectedProject": c.Query("project"),
		"error":           "",
	})
}

func CreateMaterialEntry(c *gin.Context) {
	projectIDStr := c.PostForm("project_id")
	dateStr := c.PostForm("date")
	description := strings.TrimSpace(c.PostForm("description"))
	costStr := c.PostForm("cost")
	markupStr := c.PostForm("markup_percent")

	pid, err := strconv.Atoi(projectIDStr)
	if err != nil || pid <= 0 {
		renderMaterialEntryError(c, "Выберите проект")
		return
	}

	var project models.Project
	if err := database.DB.First(&project, pid).Error; err != nil {
		renderMaterialEntryError(c, "Проект не найден")
		return
	}

	if description == "" {
		renderMaterialEntryError(c, "Укажите описание материала")
		return
	}

	date, err := parseDateOrToday(dateStr)
	if err != nil {
		renderMaterialEntryError(c, "Некорректная дата")
		return
	}

	cost, err := parseMoney(costStr)
	if err != nil {
		renderMaterialEntryError(c, "Некорректная стоимость")
		return
	}

	// пустая наценка = наценка проекта; явный "0" = без наценки
	markup, err := parseOptionalPercent(markupStr)
	if err != nil {
		renderMaterialEntryError(c, "Некорректный процент наценки")
		return
	}

	entry := models.MaterialEntry{
		ProjectID:     project.ID,
		Date:          date,
		Description:   description,
		Cost:          cost,
		MarkupPercent: markup,
	}

	billing := services.NewBillingService(database.DB)
	if err := billing.SaveMaterialEntry(&entry); err != nil {
		renderMaterialEntryError(c, "Ошибка сохранения записи")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "material_entry", entry.ID, "create",
			"Материалы по проекту "+project.Name+": "+entry.Description+
				", к оплате "+entry.SellPrice.String())
	}

	c.Redirect(http.StatusFound, "/projects/"+strconv.Itoa(int(project.ID))+"/report")
}

func renderMaterialEntryError(c *gin.Context, msg string) {
	var projects []models.Project
	database.DB.Preload("Client").Where("active = ?", true).
		Order("name asc").Find(&projects)

	render(c, http.StatusBadRequest, "material_entry_form.html", gin.H{
		"error":    msg,
		"projects": projects,
	})
}

//
// ПРАВКА ЗАПИСИ
//

func ShowEditMaterialEntry(c *gin.Context) {
	if !isManager(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	id := c.Param("id")

	var entry models.MaterialEntry
	if err := database.DB.Preload("Project").First(&entry, id).Error; err != nil {
		c.String(http.StatusNotFound, "Запись не найдена")
		return
	}

	render(c, http.StatusOK, "material_entry_edit.html", gin.H{
		"entry": entry,
		"error": "",
	})
}

func UpdateMaterialEntry(c *gin.Context) {
	if !isManager(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	id := c.Param("id")

	var entry models.MaterialEntry
	if err := database.DB.First(&entry, id).Error; err != nil {
		c.String(http.StatusNotFound, "Запись не найдена")
		return
	}

	description := strings.TrimSpace(c.PostForm("description"))
	if description == "" {
		c.String(http.StatusBadRequest, "Укажите описание материала")
		return
	}

	date, err := parseDateOrToday(c.PostForm("date"))
	if err != nil {
		c.String(http.StatusBadRequest, "Некорректная дата")
		return
	}

	cost, err := parseMoney(c.PostForm("cost"))
	if err != nil {
		c.String(http.StatusBadRequest, "Некорректная стоимость")
		return
	}

	markup, err := parseOptionalPercent(c.PostForm("markup_percent"))
	if err != nil {
		c.String(http.StatusBadRequest, "Некорректный процент наценки")
		return
	}

	entry.Date = date
	entry.Description = description
	entry.Cost = cost
	entry.MarkupPercent = markup

	billing := services.NewBillingService(database.DB)
	if err := billing.SaveMaterialEntry(&entry); err != nil {
		c.String(http.StatusInternalServerError, "Ошибка сохранения записи")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "material_entry", entry.ID, "update",
			"Запись о материалах пересохранена, к оплате "+entry.SellPrice.String())
	}

	c.Redirect(http.StatusFound, "/projects/"+strconv.Itoa(int(entry.ProjectID))+"/report")
}

func DeleteMaterialEntry(c *gin.Context) {
	if !isManager(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	id := c.Param("id")

	var entry models.MaterialEntry
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
		database.CreateAuditLog(uid, "material_entry", entry.ID, "delete", "Удалена запись о материалах")
	}

	c.Redirect(http.StatusFound, "/projects/"+strconv.Itoa(int(entry.ProjectID))+"/report")
}
