package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"

	"printhub/pkg/auth"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

type mockExpiryService struct {
	runNowFunc func(ctx context.Context) (*model.SweepResult, error)
}

func (m *mockExpiryService) Stats(ctx context.Context, shopOwnerID string) (*model.CleanupStats, error) {
	return &model.CleanupStats{}, nil
}

func (m *mockExpiryService) ExpiringFiles(ctx context.Context, customerID string) ([]model.ExpiringFile, error) {
	return []model.ExpiringFile{}, nil
}

func (m *mockExpiryService) RunNow(ctx context.Context) (*model.SweepResult, error) {
	if m.runNowFunc != nil {
		return m.runNowFunc(ctx)
	}
	return &model.SweepResult{}, nil
}

func (m *mockExpiryService) LastRun(ctx context.Context) (*model.SweepMarker, error) {
	return nil, apperrors.NotFound("Cleanup run")
}

func serve(svc *mockExpiryService, method, path string, role model.Role) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewExpiryHandler(svc, logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})).RegisterRoutes(router)

	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: "u1", Role: role}))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestExpiryRoutes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		role   model.Role
		want   int
	}{
		{name: "stats as owner", method: http.MethodGet, path: "/api/v1/expiry/stats", role: model.RoleShopOwner, want: http.StatusOK},
		{name: "stats as customer", method: http.MethodGet, path: "/api/v1/expiry/stats", role: model.RoleCustomer, want: http.StatusForbidden},
		{name: "expiring as customer", method: http.MethodGet, path: "/api/v1/expiry/expiring", role: model.RoleCustomer, want: http.StatusOK},
		{name: "expiring anonymous", method: http.MethodGet, path: "/api/v1/expiry/expiring", want: http.StatusUnauthorized},
		{name: "run as owner", method: http.MethodPost, path: "/api/v1/expiry/run", role: model.RoleShopOwner, want: http.StatusOK},
		{name: "last run before any", method: http.MethodGet, path: "/api/v1/expiry/last-run", role: model.RoleShopOwner, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&mockExpiryService{}, tt.method, tt.path, tt.role)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRun_AlreadyRunning(t *testing.T) {
	svc := &mockExpiryService{
		runNowFunc: func(context.Context) (*model.SweepResult, error) {
			return nil, apperrors.Conflict("A cleanup run is already in progress")
		},
	}
	w := serve(svc, http.MethodPost, "/api/v1/expiry/run", model.RoleShopOwner)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}
