package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/matchingengine/internal/domain"
)

func TestWriteJSON(t *testing.T) {
	t.Run("sets content type and status code", func(t *testing.T) {
		w := httptest.NewRecorder()

		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})

		if got := w.Header().Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}
		if w.Code != http.StatusOK {
			t.Errorf("status code = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("encodes prices as fixed-scale strings", func(t *testing.T) {
		p := domain.NewPrice(10050, 2)
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, instrumentResponse{SecurityID: "AAPL", Symbol: "Apple", MarketPrice: &p})

		var raw map[string]any
		if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if raw["marketPrice"] != "100.50" {
			t.Errorf("marketPrice = %v, want %q", raw["marketPrice"], "100.50")
		}
	})

	t.Run("encodes missing market price as null", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, instrumentResponse{SecurityID: "AAPL", Symbol: "Apple"})

		if !strings.Contains(w.Body.String(), `"marketPrice":null`) {
			t.Errorf("body = %s, want marketPrice null", w.Body.String())
		}
	})
}

func TestWriteAccepted(t *testing.T) {
	w := httptest.NewRecorder()

	WriteAccepted(w, "Order placement submitted for client: c1")

	if w.Code != http.StatusAccepted {
		t.Fatalf("status code = %d, want %d", w.Code, http.StatusAccepted)
	}
	var resp messageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Message != "Order placement submitted for client: c1" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		status  int
		code    string
		message string
	}{
		{http.StatusBadRequest, "validation_error", "Quantity must be greater than zero"},
		{http.StatusNotFound, "not_found", "Instrument not found"},
		{http.StatusServiceUnavailable, "service_unavailable", "Engine is shutting down"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteError(w, tt.status, tt.code, tt.message)

			if w.Code != tt.status {
				t.Errorf("status code = %d, want %d", w.Code, tt.status)
			}
			var resp errorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if resp.Error != tt.code || resp.Message != tt.message {
				t.Errorf("got %+v, want {%s %s}", resp, tt.code, tt.message)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	t.Run("decodes an order with string price", func(t *testing.T) {
		body := `{"securityId":"AAPL","price":"12.345","quantity":7}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")

		var req submitOrderRequest
		if err := ParseJSON(r, &req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.SecurityID != "AAPL" || req.Quantity != 7 {
			t.Errorf("unexpected request %+v", req)
		}
		if req.Price == nil || !req.Price.Equal(decimal.RequireFromString("12.345")) {
			t.Errorf("price = %v, want 12.345", req.Price)
		}
	})

	t.Run("leaves absent price nil", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"orderType":"MARKET"}`))
		r.Header.Set("Content-Type", "application/json")

		var req submitOrderRequest
		if err := ParseJSON(r, &req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Price != nil {
			t.Errorf("price = %v, want nil", req.Price)
		}
	})

	rejects := []struct {
		name        string
		contentType string
		body        string
	}{
		{"missing content type", "", `{"securityId":"AAPL"}`},
		{"wrong content type", "text/plain", `{"securityId":"AAPL"}`},
		{"malformed JSON", "application/json", `{invalid json}`},
		{"unknown fields", "application/json", `{"securityId":"AAPL","venue":"x"}`},
		{"empty body", "application/json", ""},
		{"fractional quantity", "application/json", `{"quantity":1.5}`},
	}
	for _, tt := range rejects {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}

			var req submitOrderRequest
			err := ParseJSON(r, &req)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "Content-Type") {
				t.Errorf("error = %q, should mention Content-Type", err.Error())
			}
		})
	}
}
