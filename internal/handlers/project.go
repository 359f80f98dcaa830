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
	"gorm.io/gorm"
)

//
// СПИСОК ПРОЕКТОВ
//

// Список проектов + фильтры
func ListProjects(c *gin.Context) {
	sess := sessions.Default(c)
	roleStr, _ := sess.Get("role").(string)
	role := models.UserRole(roleStr)

	clientIDStr := c.Query("client_id")
	activeStr := c.Query("active")

	dbq := database.DB.Preload("Client").Order("created_at desc")

	if clientIDStr != "" {
		if cid, err := strconv.Atoi(clientIDStr); err == nil && cid > 0 {
			dbq = dbq.Where("client_id = ?", cid)
		}
	}

	if activeStr != "" {
		dbq = dbq.Where("active = ?", activeStr == "1")
	}

	var projects []models.Project
	if err := dbq.Find(&projects).Error; err != nil {
		c.String(http.StatusInternalServerError, "Ошибка загрузки проектов")
		return
	}

	// колонка "баланс" по каждому проекту
	billing := services.NewBillingService(database.DB)
	balances := make(map[uint]decimal.Decimal, len(projects))
	for _, p := range projects {
		t, err := billing.TotalsFor(p.ID)
		if err != nil {
			balances[p.ID] = decimal.Zero
			continue
		}
		balances[p.ID] = t.Balance
	}

	var clients []models.Client
	database.DB.Order("name asc").Find(&clients)

	render(c, http.StatusOK, "projects_list.html", gin.H{
		"projects":       projects,
		"clients":        clients,
		"balances":       balances,
		"FilterClientID": clientIDStr,
		"FilterActive":   activeStr,

		"IsAdmin":   role == models.RoleAdmin,
		"IsOffice":  role == models.RoleOffice,
		"IsForeman": role == models.RoleForeman,
	})
}

//
// СОЗДАНИЕ ПРОЕКТА
//

func ShowNewProject(c *gin.Context) {
	var clients []models.Client
	database.DB.Where("active = ?", true).Order("name asc").Find(&clients)

	render(c, http.StatusOK, "projects_new.html", gin.H{
		"clients": clients,
		"error":   "",
	})
}

func CreateProject(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	clientIDStr := c.PostForm("client_id")
	location := strings.TrimSpace(c.PostForm("location"))
	rateStr := c.PostForm("hourly_rate")
	markupStr := c.PostForm("material_markup_percent")
	startStr := c.PostForm("start_date")
	endStr := c.PostForm("end_date")

	if len(name) < 2 {
		renderProjectError(c, "Название проекта должно быть не короче 2 символов")
		return
	}

	cid, err := strconv.Atoi(clientIDStr)
	if err != nil || cid <= 0 {
		renderProjectError(c, "Выберите заказчика")
		return
	}

	var client models.Client
	if err := database.DB.First(&client, cid).Error; err != nil {
		renderProjectError(c, "Заказчик не найден")
		return
	}

	rate, err := parseMoney(rateStr)
	if err != nil {
		renderProjectError(c, "Некорректная часовая ставка")
		return
	}

	markup := decimal.NewFromInt(10) // наценка по умолчанию
	if strings.TrimSpace(markupStr) != "" {
		markup, err = decimal.NewFromString(strings.TrimSpace(markupStr))
		if err != nil {
			renderProjectError(c, "Некорректный процент наценки")
			return
		}
	}

	// --- УНИКАЛЬНОСТЬ (client, name) ---
	var count int64
	database.DB.Model(&models.Project{}).
		Where("client_id = ? AND LOWER(name) = LOWER(?)", client.ID, name).
		Count(&count)
	if count > 0 {
		renderProjectError(c, "У этого заказчика уже есть проект с таким названием")
		return
	}

	project := models.Project{
		ClientID:              client.ID,
		Name:                  name,
		Location:              location,
		HourlyRate:            rate,
		MaterialMarkupPercent: markup,
		StartDate:             parseOptionalDate(startStr),
		EndDate:               parseOptionalDate(endStr),
		Active:                true,
	}

	if err := database.DB.Create(&project).Error; err != nil {
		renderProjectError(c, "Ошибка сохранения проекта")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "project", project.ID, "create", "Создан проект: "+project.Name)
	}

	c.Redirect(http.StatusFound, "/projects")
}

func renderProjectError(c *gin.Context, msg string) {
	var clients []models.Client
	database.DB.Where("active = ?", true).Order("name asc").Find(&clients)

	render(c, http.StatusBadRequest, "projects_new.html", gin.H{
		"error":   msg,
		"clients": clients,
	})
}

//
// РЕДАКТИРОВАНИЕ ПРОЕКТА
//

func ShowEditProject(c *gin.Context) {
	if !isManager(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	id := c.Param("id")
	var project models.Project
	if err := database.DB.Preload("Client").First(&project, id).Error; err != nil {
		c.String(http.StatusNotFound, "Проект не найден")
		return
	}

	var clients []models.Client
	database.DB.Order("name asc").Find(&clients)

	render(c, http.StatusOK, "projects_edit.html", gin.H{
		"project": project,
		"clients": clients,
		"error":   "",
	})
}

func UpdateProject(c *gin.Context) {
	if !isManager(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	id := c.Param("id")

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		c.String(http.StatusNotFound, "Проект не найден")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	clientIDStr := c.PostForm("client_id")
	location := strings.TrimSpace(c.PostForm("location"))
	rateStr := c.PostForm("hourly_rate")
	markupStr := c.PostForm("material_markup_percent")
	startStr := c.PostForm("start_date")
	endStr := c.PostForm("end_date")
	active := c.PostForm("active") != "0"

	if len(name) < 2 {
		renderProjectEditError(c, project, "Название слишком короткое")
		return
	}

	var client models.Client
	if err := database.DB.First(&client, clientIDStr).Error; err != nil {
		renderProjectEditError(c, project, "Заказчик не найден")
		return
	}

	rate, err := parseMoney(rateStr)
	if err != nil {
		renderProjectEditError(c, project, "Некорректная часовая ставка")
		return
	}

	markup := project.MaterialMarkupPercent
	if strings.TrimSpace(markupStr) != "" {
		markup, err = decimal.NewFromString(strings.TrimSpace(markupStr))
		if err != nil {
			renderProjectEditError(c, project, "Некорректный процент наценки")
			return
		}
	}

	if name != project.Name || client.ID != project.ClientID {
		var count int64
		database.DB.Model(&models.Project{}).
			Where("client_id = ? AND LOWER(name) = LOWER(?) AND id <> ?", client.ID, name, project.ID).
			Count(&count)
		if count > 0 {
			renderProjectEditError(c, project, "У этого заказчика уже есть проект с таким названием")
			return
		}
	}

	project.Name = name
	project.ClientID = client.ID
	project.Location = location
	project.HourlyRate = rate
	project.MaterialMarkupPercent = markup
	project.StartDate = parseOptionalDate(startStr)
	project.EndDate = parseOptionalDate(endStr)
	project.Active = active

	if err := database.DB.Save(&project).Error; err != nil {
		renderProjectEditError(c, project, "Ошибка сохранения проекта")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "project", project.ID, "update", "Проект обновлён: "+project.Name)
	}

	c.Redirect(http.StatusFound, "/projects")
}

func renderProjectEditError(c *gin.Context, project models.Project, msg string) {
	var clients []models.Client
	database.DB.Order("name asc").Find(&clients)

	render(c, http.StatusBadRequest, "projects_edit.html", gin.H{
		"error":   msg,
		"project": project,
		"clients": clients,
	})
}

//
// УДАЛЕНИЕ ПРОЕКТА
//

func DeleteProject(c *gin.Context) {
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

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		c.String(http.StatusNotFound, "Проект не найден")
		return
	}

	// проект владеет своими журналами: чистим их вместе с ним.
	// Удаляем жёстко (Unscoped): мягко удалённый проект продолжал бы
	// занимать уникальный индекс (client_id, name)
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.WorkEntry{}, &models.MaterialEntry{}, &models.Payment{}, &models.RateOverride{},
		} {
			if err := tx.Unscoped().Where("project_id = ?", project.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&project).Error
	})
	if err != nil {
		c.String(http.StatusInternalServerError, "Ошибка удаления")
		return
	}

	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "project", project.ID, "delete", "Удалён проект: "+project.Name)
	}

	c.Redirect(http.StatusFound, "/projects")
}
