package handlers

import (
	"net/http"

	"jobtool/internal/database"
	"jobtool/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func ListAuditLogs(c *gin.Context) {
	// достаём роль из сессии
	sess := sessions.Default(c)
	roleStr, _ := sess.Get("role").(string)
	role := models.UserRole(roleStr)

	if role != models.RoleAdmin && role != models.RoleViewer {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	var logs []models.AuditLog
	database.DB.
		Preload("User").
		Order("created_at desc").
		Limit(200).
		Find(&logs)

	render(c, http.StatusOK, "audit_list.html", gin.H{
		"logs":    logs,
		"role":    roleStr,
		"IsAdmin": role == models.RoleAdmin,
	})
}
