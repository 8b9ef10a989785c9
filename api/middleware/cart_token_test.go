package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestCartSessionMintsTokenWhenMissing(t *testing.T) {
	var captured string
	handler := CartSession(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = CartTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured == "" {
		t.Fatal("expected cart token in context")
	}
	if _, err := uuid.Parse(captured); err != nil {
		t.Fatalf("expected uuid token, got %q", captured)
	}
	if rec.Header().Get("X-Cart-Token") != captured {
		t.Fatalf("expected token echoed in header, got %q", rec.Header().Get("X-Cart-Token"))
	}
}

func TestCartSessionKeepsExistingToken(t *testing.T) {
	token := uuid.NewString()

	var captured string
	handler := CartSession(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = CartTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Cart-Token", token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured != token {
		t.Fatalf("expected token %q preserved, got %q", token, captured)
	}
}

func TestCartSessionReplacesMalformedToken(t *testing.T) {
	var captured string
	handler := CartSession(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = CartTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Cart-Token", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured == "not-a-uuid" {
		t.Fatal("malformed token should be replaced")
	}
	if _, err := uuid.Parse(captured); err != nil {
		t.Fatalf("expected uuid token, got %q", captured)
	}
}
