package debugserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hivefs/hivefs/internal/provider"
	"github.com/hivefs/hivefs/internal/store/memory"
)

func testServer() (*Server, *provider.Provider) {
	s := memory.New()
	s.PutContainer("Software")
	p := provider.New(provider.Config{Store: s})
	return New(":0", p), p
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
}

func TestSessions(t *testing.T) {
	srv, p := testServer()

	p.StartDirectoryEnumeration("a", "", "")
	p.StartDirectoryEnumeration("b", "Software", "")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("sessions status = %d", rec.Code)
	}

	var body struct {
		LiveSessions int `json:"live_sessions"`
		Sessions     []struct {
			ID        string `json:"id"`
			Container string `json:"container"`
		} `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.LiveSessions != 2 {
		t.Errorf("live_sessions = %d, want 2", body.LiveSessions)
	}
	if len(body.Sessions) != 2 {
		t.Fatalf("sessions = %v, want 2 entries", body.Sessions)
	}
	if body.Sessions[1].ID != "b" || body.Sessions[1].Container != "Software" {
		t.Errorf("session b = %+v", body.Sessions[1])
	}
}

func TestMetricsRoute(t *testing.T) {
	srv, _ := testServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d", rec.Code)
	}
}
