package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRunChecks_AggregatesWorstStatus(t *testing.T) {
	h := NewHandler("test")
	h.Register("ok", func(ctx context.Context) (Status, error) {
		return StatusHealthy, nil
	})
	h.Register("sad", func(ctx context.Context) (Status, error) {
		return StatusUnhealthy, errors.New("backend down")
	})

	resp := h.RunChecks(context.Background())
	if resp.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy overall, got %s", resp.Status)
	}
	if resp.Checks["sad"].Error != "backend down" {
		t.Errorf("expected check error recorded, got %q", resp.Checks["sad"].Error)
	}
	if resp.Checks["ok"].Status != StatusHealthy {
		t.Errorf("expected ok check healthy, got %s", resp.Checks["ok"].Status)
	}
}

func TestReadinessHandler(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		h := NewHandler("test")
		h.Register("ok", func(ctx context.Context) (Status, error) {
			return StatusHealthy, nil
		})

		w := httptest.NewRecorder()
		h.ReadinessHandler()(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("not ready", func(t *testing.T) {
		h := NewHandler("test")
		h.Register("down", func(ctx context.Context) (Status, error) {
			return StatusUnhealthy, errors.New("nope")
		})

		w := httptest.NewRecorder()
		h.ReadinessHandler()(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", w.Code)
		}
	})
}

func TestLivenessHandler(t *testing.T) {
	h := NewHandler("1.2.3")
	w := httptest.NewRecorder()
	h.LivenessHandler()(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("expected version in response, got %q", resp.Version)
	}
}
