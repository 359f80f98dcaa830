package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"jobtool/internal/models"

	"github.com/shopspring/decimal"
)

func postForm(t *testing.T, r http.Handler, c *http.Cookie, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(c)
	r.ServeHTTP(w, req)
	return w
}

func TestOverridePairReusableAfterDelete(t *testing.T) {
	db := setupHandlerDB(t)

	client := models.Client{Name: "ООО Ставки", Active: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	project := models.Project{
		ClientID:              client.ID,
		Name:                  "Ангар",
		MaterialMarkupPercent: decimal.NewFromInt(10),
		Active:                true,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	asset := models.Asset{
		Name:        "Сварщик",
		IsLabor:     true,
		Unit:        models.UnitHour,
		DefaultRate: decimal.NewFromInt(50),
		Active:      true,
	}
	if err := db.Create(&asset).Error; err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	r := newTestEngine()
	r.POST("/projects/:id/overrides", CreateProjectOverride)
	r.POST("/projects/:id/overrides/:override_id/delete", DeleteProjectOverride)
	cookie := sessionCookie(t, r, models.RoleOffice)

	createPath := fmt.Sprintf("/projects/%d/overrides", project.ID)
	form := url.Values{}
	form.Set("asset_id", fmt.Sprint(asset.ID))
	form.Set("rate", "75")

	if w := postForm(t, r, cookie, createPath, form); w.Code != http.StatusFound {
		t.Fatalf("create override: expected 302, got %d", w.Code)
	}

	var override models.RateOverride
	if err := db.Where("project_id = ? AND asset_id = ?", project.ID, asset.ID).
		First(&override).Error; err != nil {
		t.Fatalf("override not stored: %v", err)
	}

	delPath := fmt.Sprintf("/projects/%d/overrides/%d/delete", project.ID, override.ID)
	if w := postForm(t, r, cookie, delPath, url.Values{}); w.Code != http.StatusFound {
		t.Fatalf("delete override: expected 302, got %d", w.Code)
	}

	// удалённая запись не должна занимать индекс пары:
	// новая ставка для того же (проект, ресурс) обязана создаваться
	form.Set("rate", "80")
	if w := postForm(t, r, cookie, createPath, form); w.Code != http.StatusFound {
		t.Fatalf("recreate override after delete: expected 302, got %d: %s",
			w.Code, w.Body.String())
	}

	var count int64
	if err := db.Unscoped().Model(&models.RateOverride{}).
		Where("project_id = ? AND asset_id = ?", project.ID, asset.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 override row (old one gone for good), got %d", count)
	}

	var stored models.RateOverride
	if err := db.Where("project_id = ? AND asset_id = ?", project.ID, asset.ID).
		First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stored.Rate.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected new rate 80, got %s", stored.Rate)
	}
}
