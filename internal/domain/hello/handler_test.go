package hello

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHelloZeta(t *testing.T) {
	e := echo.New()
	NewHandler().RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/hellozeta", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Hello ZETA!" {
		t.Errorf("expected greeting, got %q", body["message"])
	}
}
