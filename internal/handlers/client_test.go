package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"jobtool/internal/models"
)

func TestDeleteClientFreesName(t *testing.T) {
	db := setupHandlerDB(t)

	client := models.Client{Name: "ООО Феникс", Active: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}

	r := newTestEngine()
	r.POST("/clients/:id/delete", DeleteClient)
	cookie := sessionCookie(t, r, models.RoleAdmin)

	w := postForm(t, r, cookie, fmt.Sprintf("/clients/%d/delete", client.ID), url.Values{})
	if w.Code != http.StatusFound {
		t.Fatalf("delete client: expected 302, got %d: %s", w.Code, w.Body.String())
	}

	// имя под уникальным индексом: после удаления оно должно освобождаться
	again := models.Client{Name: "ООО Феникс", Active: true}
	if err := db.Create(&again).Error; err != nil {
		t.Fatalf("recreate client with same name: %v", err)
	}
}
