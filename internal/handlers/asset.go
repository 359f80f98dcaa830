package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"jobtool/internal/database"
	"jobtool/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// СПИСОК РЕСУРСОВ

func ListAssets(c *gin.Context) {
	sess := sessions.Default(c)
	roleStr, _ := sess.Get("role").(string)

	var assets []models.Asset
	database.DB.Preload("Client").Order("client_id asc, name asc").Find(&assets)

	render(c, http.StatusOK, "assets_list.html", gin.H{
		"assets": assets,
		"role":   roleStr,
	})
}

// СОЗДАНИЕ НОВОГО РЕСУРСА

func ShowNewAsset(c *gin.Context) {
	var clients []models.Client
	database.DB.Order("name asc").Find(&clients)

	render(c, http.StatusOK, "assets_new.html", gin.H{
		"clients": clients,
		"error":   "",
	})
}

func CreateAsset(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	clientIDStr := c.PostForm("client_id")
	unitStr := strings.TrimSpace(c.PostForm("unit"))
	isLabor := c.PostForm("is_labor") == "1"
	rateStr := c.PostForm("default_rate")

	if len(name) < 2 {
		renderAssetError(c, "Название ресурса должно быть не короче 2 символов")
		return
	}

	unit := models.AssetUnit(unitStr)
	switch unit {
	case models.UnitHour, models.UnitDay, models.UnitEach:
	default:
		renderAssetError(c, "Укажите единицу измерения: hour, day или each")
		return
	}

	rate, err := parseMoney(rateStr)
	if err != nil {
		renderAssetError(c, "Некорректная ставка")
		return
	}

	// клиент необязателен: без клиента ресурс общий
	var clientID *uint
	if clientIDStr != "" {
		var client models.Client
		if err := database.DB.First(&client, clientIDStr).Error; err != nil {
			renderAssetError(c, "Заказчик не найден")
			return
		}
		clientID = &client.ID

		// --- УНИКАЛЬНОСТЬ (client, name) ---
		var count int64
		database.DB.Model(&models.Asset{}).
			Where("client_id = ? AND LOWER(name) = LOWER(?)", client.ID, name).
			Count(&count)
		if count > 0 {
			renderAssetError(c, "У этого заказчика уже есть ресурс с таким названием")
			return
		}
	}

	asset := models.Asset{
		ClientID:    clientID,
		Name:        name,
		IsLabor:     isLabor,
		Unit:        unit,
		DefaultRate: rate,
		Active:      true,
	}

	if err := database.DB.Create(&asset).Error; err != nil {
		renderAssetError(c, "Ошибка сохранения ресурса в БД")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "asset", asset.ID, "create", "Создан ресурс: "+asset.Name)
	}

	c.Redirect(http.StatusFound, "/assets")
}

func renderAssetError(c *gin.Context, msg string) {
	var clients []models.Client
	database.DB.Order("name asc").Find(&clients)

	render(c, http.StatusBadRequest, "assets_new.html", gin.H{
		"error":   msg,
		"clients": clients,
	})
}

// РЕДАКТИРОВАНИЕ РЕСУРСА

func ShowEditAsset(c *gin.Context) {
	if !isManager(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	id := c.Param("id")

	var asset models.Asset
	if err := database.DB.Preload("Client").First(&asset, id).Error; err != nil {
		c.String(http.StatusNotFound, "Ресурс не найден")
		return
	}

	var clients []models.Client
	database.DB.Order("name asc").Find(&clients)

	render(c, http.StatusOK, "assets_edit.html", gin.H{
		"asset":   asset,
		"clients": clients,
		"error":   "",
	})
}

func UpdateAsset(c *gin.Context) {
	if !isManager(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "Некорректный ID ресурса")
		return
	}

	var asset models.Asset
	if err := database.DB.First(&asset, id).Error; err != nil {
		c.String(http.StatusNotFound, "Ресурс не найден")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	clientIDStr := c.PostForm("client_id")
	unitStr := strings.TrimSpace(c.PostForm("unit"))
	isLabor := c.PostForm("is_labor") == "1"
	rateStr := c.PostForm("default_rate")
	active := c.PostForm("active") != "0"

	if len(name) < 2 {
		renderAssetEditError(c, asset, "Название ресурса должно быть не короче 2 символов")
		return
	}

	unit := models.AssetUnit(unitStr)
	switch unit {
	case models.UnitHour, models.UnitDay, models.UnitEach:
	default:
		renderAssetEditError(c, asset, "Укажите единицу измерения: hour, day или each")
		return
	}

	rate, err := parseMoney(rateStr)
	if err != nil {
		renderAssetEditError(c, asset, "Некорректная ставка")
		return
	}

	var clientID *uint
	if clientIDStr != "" {
		var client models.Client
		if err := database.DB.First(&client, clientIDStr).Error; err != nil {
			renderAssetEditError(c, asset, "Заказчик не найден")
			return
		}
		clientID = &client.ID

		var count int64
		database.DB.Model(&models.Asset{}).
			Where("client_id = ? AND LOWER(name) = LOWER(?) AND id <> ?", client.ID, name, asset.ID).
			Count(&count)
		if count > 0 {
			renderAssetEditError(c, asset, "У этого заказчика уже есть ресурс с таким названием")
			return
		}
	}

	asset.ClientID = clientID
	asset.Name = name
	asset.IsLabor = isLabor
	asset.Unit = unit
	asset.DefaultRate = rate
	asset.Active = active

	if err := database.DB.Save(&asset).Error; err != nil {
		renderAssetEditError(c, asset, "Ошибка сохранения ресурса в БД")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "asset", asset.ID, "update", "Изменён ресурс: "+asset.Name)
	}

	c.Redirect(http.StatusFound, "/assets")
}

func renderAssetEditError(c *gin.Context, asset models.Asset, msg string) {
	var clients []models.Client
	database.DB.Order("name asc").Find(&clients)

	render(c, http.StatusBadRequest, "assets_edit.html", gin.H{
		"error":   msg,
		"asset":   asset,
		"clients": clients,
	})
}
