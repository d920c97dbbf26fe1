package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"innkeep/pkg/client"
	"innkeep/pkg/config"
	"innkeep/pkg/logger"
	"innkeep/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type echoHandler struct{}

func (echoHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/echo", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":"ok"}`))
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8080",
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1024,
		ReadTimeout:       time.Second,
		WriteTimeout:      time.Second,
		IdleTimeout:       time.Second,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
		Client:            client.NewClient(),
	}
}

func TestApplication_MiddlewareStack(t *testing.T) {
	a := NewApplication(testConfig())
	a.SetApp(echoHandler{})
	defer a.gracefulShutdown()

	send := func(staff, body, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(middleware.StaffIDHeader, staff)
		w := httptest.NewRecorder()
		a.Handler().ServeHTTP(w, req)
		return w
	}

	w := send("s1", `{}`, "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected request id header")
	}

	if w := send("s2", `a=b`, "text/plain"); w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}

	if w := send("s3", `{"pad":"`+strings.Repeat("x", 2048)+`"}`, "application/json"); w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	send("s1", `{}`, "application/json")
	if w := send("s1", `{}`, "application/json"); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after exhausting the staff budget, got %d", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]Pinger
		path       string
		expectCode int
	}{
		{"liveness ignores dependencies", map[string]Pinger{"mongo": func(context.Context) error { return errors.New("down") }}, "/health", http.StatusOK},
		{"ready with healthy mongo", map[string]Pinger{"mongo": func(context.Context) error { return nil }}, "/ready", http.StatusOK},
		{"ready with failing redis", map[string]Pinger{
			"mongo": func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("refused") },
		}, "/ready", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewHealthHandler(tt.checks, logger.Discard()).RegisterRoutes(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.expectCode {
				t.Errorf("expected %d, got %d: %s", tt.expectCode, w.Code, w.Body.String())
			}
		})
	}
}
