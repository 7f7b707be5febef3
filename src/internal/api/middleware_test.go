package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoopbackOnly(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		wantStatus int
	}{
		{name: "ipv4 loopback", remoteAddr: "127.0.0.1:54321", wantStatus: http.StatusOK},
		{name: "ipv6 loopback", remoteAddr: "[::1]:54321", wantStatus: http.StatusOK},
		{name: "lan address", remoteAddr: "192.168.1.50:54321", wantStatus: http.StatusForbidden},
		{name: "public address", remoteAddr: "203.0.113.10:54321", wantStatus: http.StatusForbidden},
		{name: "garbage address", remoteAddr: "not-an-ip", wantStatus: http.StatusForbidden},
	}

	handler := LoopbackOnly(okHandler())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
			req.RemoteAddr = tt.remoteAddr
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestJSONContentType(t *testing.T) {
	handler := JSONContentType(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/connect", nil)
	req.Header.Set("Content-Type", "text/plain")
	req.ContentLength = 10
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for non-JSON body", rec.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Errorf("status = %d, GET must pass without content type", rec2.Code)
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 after panic", rec.Code)
	}
}
