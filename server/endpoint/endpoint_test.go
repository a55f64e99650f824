package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/dyne/component"
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		components []component.Health
		wantCode   int
		wantStatus string
	}{
		{"no components", nil, http.StatusOK, "healthy"},
		{"degraded", []component.Health{{Name: "kafka", Status: component.StatusDegraded}}, http.StatusOK, "degraded"},
		{"unhealthy", []component.Health{
			{Name: "storage", Status: component.StatusHealthy},
			{Name: "kafka", Status: component.StatusUnhealthy},
		}, http.StatusServiceUnavailable, "unhealthy"},
	}
	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := gin.New()
			e.GET("/health", Health("dyne", func(context.Context) []component.Health { return tt.components }))

			rr := httptest.NewRecorder()
			e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
			if rr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var body struct {
				Status  string `json:"status"`
				Service string `json:"service"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("expected JSON body, got %v", err)
			}
			if body.Status != tt.wantStatus || body.Service != "dyne" {
				t.Errorf("expected %s from dyne, got %+v", tt.wantStatus, body)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.GET("/version", Version())
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/version", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body, got %v", err)
	}
	if _, ok := body["version"]; !ok {
		t.Error("expected a version field")
	}
}
