package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skillflow/skillflow/api"
)

func TestHealthHandler(t *testing.T) {
	h := &api.SystemHandler{}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.HealthHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Status != "ok" || body.Service != "skillflow" {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestVersionHandler(t *testing.T) {
	h := &api.SystemHandler{}

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rr := httptest.NewRecorder()
	h.VersionHandler("1.2.3", "2026-01-15T00:00:00Z")(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var body struct {
		Version   string `json:"version"`
		BuildTime string `json:"buildTime"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Version != "1.2.3" {
		t.Fatalf("version = %q", body.Version)
	}
}
