package handlers

import (
	"net/http"
	"strconv"

	"jobtool/internal/database"
	"jobtool/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ОСОБЫЕ СТАВКИ ПРОЕКТА

func ShowProjectOverrides(c *gin.Context) {
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

	var overrides []models.RateOverride
	database.DB.Preload("Asset").
		Where("project_id = ?", pid).
		Order("asset_id asc").
		Find(&overrides)

	// ресурсы заказчика проекта + общие, без уже назначенных
	assetQ := database.DB.Where("active = ?", true)
	assetQ = assetQ.Where("client_id IS NULL OR client_id = ?", project.ClientID)
	var assets []models.Asset
	assetQ.Order("name asc").Find(&assets)

	render(c, http.StatusOK, "overrides_list.html", gin.H{
		"project":   project,
		"overrides": overrides,
		"assets":    assets,
		"error":     "",
	})
}

func CreateProjectOverride(c *gin.Context) {
	idStr := c.Param("id")
	pid, err := strconv.Atoi(idStr)
	if err != nil || pid <= 0 {
		c.String(http.StatusBadRequest, "Некорректный ID проекта")
		return
	}

	var project models.Project
	if err := database.DB.First(&project, pid).Error; err != nil {
		c.String(http.StatusNotFound, "Проект не найден")
		return
	}

	assetIDStr := c.PostForm("asset_id")
	rateStr := c.PostForm("rate")

	aid, err := strconv.Atoi(assetIDStr)
	if err != nil || aid <= 0 {
		renderOverrideError(c, project, "Выберите ресурс")
		return
	}

	var asset models.Asset
	if err := database.DB.First(&asset, aid).Error; err != nil {
		renderOverrideError(c, project, "Ресурс не найден")
		return
	}

	rate, err := parseMoney(rateStr)
	if err != nil {
		renderOverrideError(c, project, "Некорректная ставка")
		return
	}

	// на пару (проект, ресурс) — максимум один override;
	// дубль отбивает и уникальный индекс, но проверяем заранее,
	// чтобы показать внятную ошибку
	var count int64
	database.DB.Model(&models.RateOverride{}).
		Where("project_id = ? AND asset_id = ?", project.ID, asset.ID).
		Count(&count)
	if count > 0 {
		renderOverrideError(c, project, "Ставка для этой пары проект/ресурс уже задана — отредактируйте существующую")
		return
	}

	override := models.RateOverride{
		ProjectID: project.ID,
		AssetID:   asset.ID,
		Rate:      rate,
	}

	if err := database.DB.Create(&override).Error; err != nil {
		// гонка двух создателей: проигравший упирается в индекс
		renderOverrideError(c, project, "Ставка для этой пары проект/ресурс уже задана")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "rate_override", override.ID, "create",
			"Особая ставка: "+project.Name+" / "+asset.Name)
	}

	c.Redirect(http.StatusFound, "/projects/"+idStr+"/overrides")
}

func UpdateProjectOverride(c *gin.Context) {
	idStr := c.Param("id")
	overrideIDStr := c.Param("override_id")

	oid, err := strconv.Atoi(overrideIDStr)
	if err != nil || oid <= 0 {
		c.String(http.StatusBadRequest, "Некорректный ID ставки")
		return
	}

	var override models.RateOverride
	if err := database.DB.Preload("Project").First(&override, oid).Error; err != nil {
		c.String(http.StatusNotFound, "Ставка не найдена")
		return
	}

	rate, err := parseMoney(c.PostForm("rate"))
	if err != nil {
		c.String(http.StatusBadRequest, "Некорректная ставка")
		return
	}

	override.Rate = rate
	if err := database.DB.Save(&override).Error; err != nil {
		c.String(http.StatusInternalServerError, "Ошибка сохранения ставки")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "rate_override", override.ID, "update",
			"Изменена особая ставка проекта: "+override.Project.Name)
	}

	c.Redirect(http.StatusFound, "/projects/"+idStr+"/overrides")
}

func DeleteProjectOverride(c *gin.Context) {
	idStr := c.Param("id")
	overrideIDStr := c.Param("override_id")

	oid, err := strconv.Atoi(overrideIDStr)
	if err != nil || oid <= 0 {
		c.String(http.StatusBadRequest, "Некорректный ID ставки")
		return
	}

	var override models.RateOverride
	if err := database.DB.First(&override, oid).Error; err != nil {
		c.String(http.StatusNotFound, "Ставка не найдена")
		return
	}

	// жёсткое удаление: мягко удалённая запись продолжала бы занимать
	// уникальный индекс (project_id, asset_id), и новую ставку для пары
	// было бы не создать
	if err := database.DB.Unscoped().Delete(&override).Error; err != nil {
		c.String(http.StatusInternalServerError, "Ошибка удаления")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "rate_override", override.ID, "delete", "Удалена особая ставка")
	}

	c.Redirect(http.StatusFound, "/projects/"+idStr+"/overrides")
}

func renderOverrideError(c *gin.Context, project models.Project, msg string) {
	var overrides []models.RateOverride
	database.DB.Preload("Asset").
		Where("project_id = ?", project.ID).
		Order("asset_id asc").
		Find(&overrides)

	var assets []models.Asset
	database.DB.Where("active = ?", true).
		Where("client_id IS NULL OR client_id = ?", project.ClientID).
		Order("name asc").
		Find(&assets)

	render(c, http.StatusBadRequest, "overrides_list.html", gin.H{
		"project":   project,
		"overrides": overrides,
		"assets":    assets,
		"error":     msg,
	})
}
