package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"jobtool/internal/database"
	"jobtool/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	return db
}

// newTestEngine — движок с session-middleware и служебным роутом,
// который кладёт user_id и роль в сессию (вместо полного логина).
func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("jobtool_session", store))
	r.GET("/__session", func(c *gin.Context) {
		sess := sessions.Default(c)
		sess.Set("user_id", uint(1))
		sess.Set("role", c.Query("role"))
		_ = sess.Save()
		c.Status(http.StatusOK)
	})
	return r
}

func sessionCookie(t *testing.T, r *gin.Engine, role models.UserRole) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/__session?role="+string(role), nil)
	r.ServeHTTP(w, req)
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie issued")
	}
	return cookies[0]
}

func TestCreateWorkEntryFreezesTotals(t *testing.T) {
	db := setupHandlerDB(t)

	client := models.Client{Name: "ООО Монтаж", Active: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	project := models.Project{
		ClientID:              client.ID,
		Name:                  "Склад",
		MaterialMarkupPercent: decimal.NewFromInt(10),
		Active:                true,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	asset := models.Asset{
		Name:        "Электрик",
		IsLabor:     true,
		Unit:        models.UnitHour,
		DefaultRate: decimal.NewFromInt(60),
		Active:      true,
	}
	if err := db.Create(&asset).Error; err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	r := newTestEngine()
	r.POST("/work/new", CreateWorkEntry)
	c := sessionCookie(t, r, models.RoleForeman)

	form := url.Values{}
	form.Set("project_id", fmt.Sprint(project.ID))
	form.Set("asset_id", fmt.Sprint(asset.ID))
	form.Set("date", time.Now().Format("2006-01-02"))
	form.Set("quantity", "8")
	form.Set("notes", "разводка щитка")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/work/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(c)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", w.Code, w.Body.String())
	}
	wantLoc := fmt.Sprintf("/projects/%d/report", project.ID)
	if loc := w.Header().Get("Location"); loc != wantLoc {
		t.Fatalf("expected redirect to %s, got %s", wantLoc, loc)
	}

	var entry models.WorkEntry
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("entry not stored: %v", err)
	}
	if !entry.RateUsed.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("rate_used: expected 60, got %s", entry.RateUsed)
	}
	if !entry.LineTotal.Equal(decimal.NewFromInt(480)) {
		t.Fatalf("line_total: expected 480, got %s", entry.LineTotal)
	}

	var auditCount int64
	if err := db.Model(&models.AuditLog{}).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("expected 1 audit row, got %d", auditCount)
	}
}

func TestDeletePaymentRequiresAdmin(t *testing.T) {
	db := setupHandlerDB(t)

	client := models.Client{Name: "ООО Оплата", Active: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	project := models.Project{
		ClientID:              client.ID,
		Name:                  "Цех",
		MaterialMarkupPercent: decimal.NewFromInt(10),
		Active:                true,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	payment := models.Payment{
		ProjectID: project.ID,
		Date:      time.Now(),
		Amount:    decimal.NewFromInt(300),
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	r := newTestEngine()
	r.POST("/payments/:id/delete", DeletePayment)

	// прораб удалять оплаты не может
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/payments/%d/delete", payment.ID), nil)
	req.AddCookie(sessionCookie(t, r, models.RoleForeman))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreman, got %d", w.Code)
	}

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	if count != 1 {
		t.Fatalf("payment deleted by non-admin")
	}

	// админ может
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/payments/%d/delete", payment.ID), nil)
	req.AddCookie(sessionCookie(t, r, models.RoleAdmin))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302 for admin, got %d", w.Code)
	}

	db.Model(&models.Payment{}).Count(&count)
	if count != 0 {
		t.Fatalf("payment not deleted by admin")
	}
}
