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
	"github.com/shopspring/decimal"
)

// helper: кто может управлять клиентами (admin + office)
func isManager(c *gin.Context) bool {
	sess := sessions.Default(c)
	roleStr, _ := sess.Get("role").(string)
	role := models.UserRole(roleStr)
	return role == models.RoleAdmin || role == models.RoleOffice
}

//
// СПИСОК / СОЗДАНИЕ
//

func ListClients(c *gin.Context) {
	sess := sessions.Default(c)
	roleStr, _ := sess.Get("role").(string)
	role := models.UserRole(roleStr)

	var clients []models.Client
	database.DB.Order("name asc").Find(&clients)

	// текущий баланс по активным проектам каждого клиента
	billing := services.NewBillingService(database.DB)
	balances := make(map[uint]decimal.Decimal, len(clients))
	for _, cl := range clients {
		b, err := billing.ClientBalance(cl.ID)
		if err != nil {
			b = decimal.Zero
		}
		balances[cl.ID] = b
	}

	render(c, http.StatusOK, "clients_list.html", gin.H{
		"clients":  clients,
		"balances": balances,
		"IsAdmin":  role == models.RoleAdmin,
	})
}

func ShowNewClient(c *gin.Context) {
	if !isManager(c) {
		c.String(http.StatusForbidden, "Недостаточно прав")
		return
	}

	render(c, http.StatusOK, "clients_new.html", gin.H{
		"error": "",
	})
}

func CreateClient(c *gin.Context) {
	if !isManager(c) {
		c.String(http.StatusForbidden, "Недостаточно прав")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	active := c.PostForm("active") != "0"

	if len(name) < 2 {
		renderClientError(c, "Название заказчика должно быть не короче 2 символов")
		return
	}

	// --- ПРОВЕРКА УНИКАЛЬНОСТИ ИМЕНИ ---
	var count int64
	database.DB.Model(&models.Client{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count)
	if count > 0 {
		renderClientError(c, "Заказчик с таким названием уже существует")
		return
	}

	client := models.Client{
		Name:   name,
		Active: active,
	}

	if err := database.DB.Create(&client).Error; err != nil {
		renderClientError(c, "Ошибка сохранения заказчика в БД")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "client", client.ID, "create", "Создан заказчик: "+client.Name)
	}

	c.Redirect(http.StatusFound, "/clients")
}

func renderClientError(c *gin.Context, msg string) {
	render(c, http.StatusBadRequest, "clients_new.html", gin.H{
		"error": msg,
	})
}

//
// КАРТОЧКА КЛИЕНТА
//

func ShowClientDetail(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		c.String(http.StatusBadRequest, "Некорректный ID заказчика")
		return
	}

	var client models.Client
	if err := database.DB.
		Preload("Assets").
		Preload("Projects").
		First(&client, id).Error; err != nil {
		c.String(http.StatusNotFound, "Заказчик не найден")
		return
	}

	render(c, http.StatusOK, "client_detail.html", gin.H{
		"client": client,
	})
}

//
// РЕДАКТИРОВАНИЕ
//

func ShowEditClient(c *gin.Context) {
	if !isManager(c) {
		c.String(http.StatusForbidden, "Недостаточно прав")
		return
	}

	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "Некорректный ID заказчика")
		return
	}

	var client models.Client
	if err := database.DB.First(&client, id).Error; err != nil {
		c.String(http.StatusNotFound, "Заказчик не найден")
		return
	}

	render(c, http.StatusOK, "clients_edit.html", gin.H{
		"client": client,
		"error":  "",
	})
}

func UpdateClient(c *gin.Context) {
	if !isManager(c) {
		c.String(http.StatusForbidden, "Недостаточно прав")
		return
	}

	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "Некорректный ID заказчика")
		return
	}

	var client models.Client
	if err := database.DB.First(&client, id).Error; err != nil {
		c.String(http.StatusNotFound, "Заказчик не найден")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	active := c.PostForm("active") != "0"

	if len(name) < 2 {
		render(c, http.StatusBadRequest, "clients_edit.html", gin.H{
			"client": client,
			"error":  "Название заказчика должно быть не короче 2 символов",
		})
		return
	}

	// --- ПРОВЕРКА УНИКАЛЬНОСТИ ИМЕНИ (кроме текущего) ---
	if name != client.Name {
		var count int64
		database.DB.Model(&models.Client{}).
			Where("LOWER(name) = LOWER(?) AND id <> ?", name, client.ID).
			Count(&count)
		if count > 0 {
			render(c, http.StatusBadRequest, "clients_edit.html", gin.H{
				"client": client,
				"error":  "Заказчик с таким названием уже существует",
			})
			return
		}
	}

	client.Name = name
	client.Active = active

	if err := database.DB.Save(&client).Error; err != nil {
		render(c, http.StatusInternalServerError, "clients_edit.html", gin.H{
			"client": client,
			"error":  "Ошибка сохранения заказчика",
		})
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "client", client.ID, "update", "Изменён заказчик: "+client.Name)
	}

	c.Redirect(http.StatusFound, "/clients/"+idStr)
}

//
// УДАЛЕНИЕ — только без зависимых проектов
//

func DeleteClient(c *gin.Context) {
	sess := sessions.Default(c)
	roleStr, _ := sess.Get("role").(string)
	if models.UserRole(roleStr) != models.RoleAdmin {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "Некорректный ID")
		return
	}

	var client models.Client
	if err := database.DB.First(&client, id).Error; err != nil {
		c.String(http.StatusNotFound, "Заказчик не найден")
		return
	}

	var projectCount int64
	database.DB.Model(&models.Project{}).
		Where("client_id = ?", client.ID).
		Count(&projectCount)
	if projectCount > 0 {
		c.String(http.StatusConflict, "У заказчика есть проекты — сначала удалите их")
		return
	}

	// жёсткое удаление: имя клиента под уникальным индексом,
	// мягко удалённая запись мешала бы создать клиента с тем же именем
	if err := database.DB.Unscoped().Delete(&client).Error; err != nil {
		c.String(http.StatusInternalServerError, "Ошибка удаления")
		return
	}

	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "client", client.ID, "delete", "Удалён заказчик: "+client.Name)
	}

	c.Redirect(http.StatusFound, "/clients")
}
