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

// ПОСТУПЛЕНИЯ ОПЛАТ

func ShowNewPayment(c *gin.Context) {
	var projects []models.Project
	database.DB.Preload("Client").Where("active = ?", true).
		Order("name asc").Find(&projects)

	render(c, http.StatusOK, "payment_form.html", gin.H{
		"projects":        projects,
		"SelectedProject": c.Query("project"),
		"error":           "",
	})
}

func CreatePayment(c *gin.Context) {
	projectIDStr := c.PostForm("project_id")
	dateStr := c.PostForm("date")
	amountStr := c.PostForm("amount")
	reference := strings.TrimSpace(c.PostForm("reference"))
	notes := strings.TrimSpace(c.PostForm("notes"))

	pid, err := strconv.Atoi(projectIDStr)
	if err != nil || pid <= 0 {
		renderPaymentError(c, "Выберите проект")
		return
	}

	var project models.Project
	if err := database.DB.First(&project, pid).Error; err != nil {
		renderPaymentError(c, "Проект не найден")
		return
	}

	date, err := parseDateOrToday(dateStr)
	if err != nil {
		renderPaymentError(c, "Некорректная дата")
		return
	}

	amount, err := parseMoney(amountStr)
	if err != nil {
		renderPaymentError(c, "Некорректная сумма")
		return
	}

	payment := models.Payment{
		ProjectID: project.ID,
		Date:      date,
		Amount:    amount,
		Reference: reference,
		Notes:     notes,
	}

	if err := database.DB.Create(&payment).Error; err != nil {
		renderPaymentError(c, "Ошибка сохранения оплаты")
		return
	}

	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "payment", payment.ID, "create",
			"Оплата по проекту "+project.Name+": "+payment.Amount.String())
	}

	c.Redirect(http.StatusFound, "/projects/"+strconv.Itoa(int(project.ID))+"/report")
}

func renderPaymentError(c *gin.Context, msg string) {
	var projects []models.Project
	database.DB.Preload("Client").Where("active = ?", true).
		Order("name asc").Find(&projects)

	render(c, http.StatusBadRequest, "payment_form.html", gin.H{
		"error":    msg,
		"projects": projects,
	})
}

func DeletePayment(c *gin.Context) {
	sess := sessions.Default(c)
	roleStr, _ := sess.Get("role").(string)
	if models.UserRole(roleStr) != models.RoleAdmin {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	id := c.Param("id")

	var payment models.Payment
	if err := database.DB.First(&payment, id).Error; err != nil {
		c.String(http.StatusNotFound, "Оплата не найдена")
		return
	}

	if err := database.DB.Delete(&payment).Error; err != nil {
		c.String(http.StatusInternalServerError, "Ошибка удаления")
		return
	}

	if uid, ok := sess.Get("user_id").(uint); ok {
		database.CreateAuditLog(uid, "payment", payment.ID, "delete", "Удалена оплата")
	}

	c.Redirect(http.StatusFound, "/projects/"+strconv.Itoa(int(payment.ProjectID))+"/report")
}
