package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fixedChecker Check

func (c fixedChecker) Check(context.Context) Check { return Check(c) }

func TestHandler_ServeHTTP_Healthy(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("storage", NewSimpleChecker("storage", func(context.Context) error { return nil }))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != StatusHealthy || response.Version != "v1.0.0" || len(response.Checks) != 1 {
		t.Fatalf("unexpected response: %+v", response)
	}
}

func TestHandler_ServeHTTP_Unhealthy(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("storage", NewSimpleChecker("storage", func(context.Context) error {
		return errors.New("connection refused")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Checks["storage"].Message != "connection refused" {
		t.Fatalf("unexpected check: %+v", response.Checks["storage"])
	}
}

func TestHandler_Run_AggregatesStatus(t *testing.T) {
	tests := []struct {
		name   string
		checks []Status
		want   Status
	}{
		{name: "no checks", want: StatusHealthy},
		{name: "all healthy", checks: []Status{StatusHealthy, StatusHealthy}, want: StatusHealthy},
		{name: "degraded wins over healthy", checks: []Status{StatusHealthy, StatusDegraded}, want: StatusDegraded},
		{name: "unhealthy wins", checks: []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, want: StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler("test")
			for i, status := range tt.checks {
				name := string(rune('a' + i))
				handler.RegisterChecker(name, fixedChecker{Name: name, Status: status})
			}
			if got := handler.Run(context.Background()).Status; got != tt.want {
				t.Fatalf("Run().Status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHandler_Run_AppliesTimeout(t *testing.T) {
	handler := NewHandler("test")
	handler.timeout = 20 * time.Millisecond
	handler.RegisterChecker("slow", NewSimpleChecker("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	started := time.Now()
	response := handler.Run(context.Background())

	if response.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", response.Status)
	}
	if time.Since(started) > time.Second {
		t.Fatal("check timeout was not applied")
	}
}

func TestHandler_Names(t *testing.T) {
	handler := NewHandler("test")
	handler.RegisterChecker("storage", fixedChecker{})
	handler.RegisterChecker("kafka", fixedChecker{})

	names := handler.Names()
	if len(names) != 2 || names[0] != "kafka" || names[1] != "storage" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestLivenessHandler(t *testing.T) {
	w := httptest.NewRecorder()
	LivenessHandler(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("unexpected liveness response: %d %q", w.Code, w.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "ready", wantCode: http.StatusOK, wantBody: "ready"},
		{name: "not ready", err: errors.New("down"), wantCode: http.StatusServiceUnavailable, wantBody: "not ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler("v1.0.0")
			handler.RegisterChecker("storage", NewSimpleChecker("storage", func(context.Context) error { return tt.err }))

			w := httptest.NewRecorder()
			handler.ReadinessHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if w.Code != tt.wantCode || w.Body.String() != tt.wantBody {
				t.Fatalf("got %d %q, want %d %q", w.Code, w.Body.String(), tt.wantCode, tt.wantBody)
			}
		})
	}
}
