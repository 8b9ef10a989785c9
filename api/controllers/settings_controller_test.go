package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
)

type stubSettingsService struct {
	getAllFn func(ctx context.Context) (map[string]string, error)
	setFn    func(ctx context.Context, key, value string) (*models.Setting, error)
	deleteFn func(ctx context.Context, key string) error
}

func (s *stubSettingsService) GetAll(ctx context.Context) (map[string]string, error) {
	return s.getAllFn(ctx)
}

func (s *stubSettingsService) Get(ctx context.Context, key string) (*models.Setting, error) {
	panic("unimplemented")
}

func (s *stubSettingsService) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	return s.setFn(ctx, key, value)
}

func (s *stubSettingsService) Delete(ctx context.Context, key string) error {
	return s.deleteFn(ctx, key)
}

func settingKeyContext(key string) context.Context {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("key", key)
	return context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)
}

func TestGetSettings(t *testing.T) {
	svc := &stubSettingsService{getAllFn: func(ctx context.Context) (map[string]string, error) {
		return map[string]string{"site_name": "Teklifix", "currency": "USD"}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	rec := httptest.NewRecorder()
	GetSettings(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["site_name"] != "Teklifix" || envelope.Data["currency"] != "USD" {
		t.Fatalf("unexpected settings map: %v", envelope.Data)
	}
}

func TestAdminSetSetting(t *testing.T) {
	t.Run("upserts key from the route", func(t *testing.T) {
		var gotKey, gotValue string
		svc := &stubSettingsService{setFn: func(ctx context.Context, key, value string) (*models.Setting, error) {
			gotKey, gotValue = key, value
			return &models.Setting{Key: key, Value: value}, nil
		}}

		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/settings/site_name", strings.NewReader(`{"value":"Teklifix"}`))
		req = req.WithContext(settingKeyContext("site_name"))
		rec := httptest.NewRecorder()
		AdminSetSetting(svc, nil).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
		if gotKey != "site_name" || gotValue != "Teklifix" {
			t.Fatalf("unexpected upsert %q=%q", gotKey, gotValue)
		}
	})

	t.Run("missing value rejected", func(t *testing.T) {
		svc := &stubSettingsService{setFn: func(ctx context.Context, key, value string) (*models.Setting, error) {
			t.Fatal("Set should not be called with no value")
			return nil, nil
		}}
		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/settings/site_name", strings.NewReader(`{}`))
		req = req.WithContext(settingKeyContext("site_name"))
		rec := httptest.NewRecorder()
		AdminSetSetting(svc, nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("blank key surfaces as validation error", func(t *testing.T) {
		svc := &stubSettingsService{setFn: func(ctx context.Context, key, value string) (*models.Setting, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
		}}
		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/settings/%20", strings.NewReader(`{"value":"x"}`))
		req = req.WithContext(settingKeyContext(" "))
		rec := httptest.NewRecorder()
		AdminSetSetting(svc, nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})
}

func TestAdminDeleteSetting(t *testing.T) {
	var gotKey string
	svc := &stubSettingsService{deleteFn: func(ctx context.Context, key string) error {
		gotKey = key
		return nil
	}}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/settings/banner", nil)
	req = req.WithContext(settingKeyContext("banner"))
	rec := httptest.NewRecorder()
	AdminDeleteSetting(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if gotKey != "banner" {
		t.Fatalf("expected delete of banner, got %q", gotKey)
	}
}
