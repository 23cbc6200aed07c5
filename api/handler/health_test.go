package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/reelist/models"
)

type fakeStats struct {
	stats models.SessionStats
}

func (f *fakeStats) Stats() models.SessionStats { return f.stats }

func getHealth(t *testing.T, src StatsSource) models.HealthResponse {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/health", Health(src, time.Now().Add(-90*time.Second)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return resp
}

func TestHealth_Healthy(t *testing.T) {
	resp := getHealth(t, &fakeStats{stats: models.SessionStats{
		ActiveScrapes:    1,
		CompletedScrapes: 10,
	}})

	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.Session.CompletedScrapes != 10 {
		t.Errorf("stats not passed through: %+v", resp.Session)
	}
	if resp.Uptime == "" {
		t.Error("uptime missing")
	}
}

func TestHealth_DegradedUnderLoad(t *testing.T) {
	resp := getHealth(t, &fakeStats{stats: models.SessionStats{ActiveScrapes: 5}})
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
}
