package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpcards/database"
	"gpcards/export"
	"gpcards/server/services"
)

func testRouter(t *testing.T) (*gin.Engine, *database.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	exporter, err := export.NewExporter(filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)
	cardService, err := services.NewCardService(db, exporter, nil)
	require.NoError(t, err)
	annService, err := services.NewAnnouncementService(db, nil)
	require.NoError(t, err)

	h := New(cardService, annService, nil)
	router := gin.New()
	router.NoRoute(h.NotFound)
	router.GET("/api/health", h.Health)
	router.GET("/api/cards", h.GetCards)
	router.GET("/api/announcements", h.GetAnnouncements)
	router.GET("/api/stats", h.GetStats)
	router.POST("/api/export", h.ExportCards)
	router.POST("/api/reprocess", h.Reprocess)
	return router, db
}

func seedCard(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()
	annID, err := db.InsertAnnouncement(ctx, database.AnnouncementRecord{Title: "公告", URL: "http://seed/1"})
	require.NoError(t, err)
	cardID, err := db.UpsertBusinessCard(ctx, database.BusinessCard{
		Company:     "某某招标代理有限公司",
		ContactName: "张三",
		Phones:      []string{"010-12345678"},
	})
	require.NoError(t, err)
	require.NoError(t, db.AddBusinessCardMention(ctx, cardID, annID, "agent"))
}

func TestHealth(t *testing.T) {
	router, _ := testRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNotFoundRoute(t *testing.T) {
	router, _ := testRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nosuch", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "接口不存在", body["error"])
}

func TestGetCards(t *testing.T) {
	router, db := testRouter(t)
	seedCard(t, db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cards?company=代理", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int                     `json:"count"`
		Cards []database.BusinessCard `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "张三", resp.Cards[0].ContactName)
	assert.Equal(t, 1, resp.Cards[0].Mentions)
}

func TestGetCards_BadLimit(t *testing.T) {
	router, _ := testRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cards?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStats(t *testing.T) {
	router, db := testRouter(t)
	seedCard(t, db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats database.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.Announcements)
	assert.EqualValues(t, 1, stats.Cards)
}

func TestGetAnnouncements(t *testing.T) {
	router, db := testRouter(t)
	seedCard(t, db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/announcements", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestExportCards_DefaultFormat(t *testing.T) {
	router, db := testRouter(t)
	seedCard(t, db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/export", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		File string `json:"file"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.File, ".xlsx")
}

func TestReprocess_EmptyDatabase(t *testing.T) {
	router, _ := testRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/reprocess", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Checked int `json:"checked"`
		Moved   int `json:"moved"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Checked)
}
