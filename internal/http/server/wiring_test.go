package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/poad/poollink/internal/config"
	"github.com/poad/poollink/internal/directory/directorytest"
	"github.com/poad/poollink/internal/metrics"
)

func buildTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.Directory.UserPoolID = "pool-1"
	cfg.Directory.ClientID = "client-1"
	cfg.Linking.Providers = []string{"Google"}
	cfg.Session.CookieName = "plsess"
	cfg.Session.SameSite = "Lax"
	cfg.Session.TTL = "1h"
	cfg.Rate.Enabled = true
	cfg.Rate.Kind = "memory"
	cfg.Rate.Window = "1m"
	cfg.Rate.MaxRequests = 100

	app, err := BuildWithDirectory(cfg, zap.NewNop(), directorytest.NewFake(), metrics.New())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestBuild_RoutesAreWired(t *testing.T) {
	app := buildTestApp(t)

	require.Equal(t, http.StatusOK, get(app.Handler, "/healthz").Code)
	require.Equal(t, http.StatusOK, get(app.Handler, "/readyz").Code)
	require.Equal(t, http.StatusOK, get(app.Handler, "/metrics").Code)

	rec := get(app.Handler, "/no-such-route")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "ROUTE_NOT_FOUND")
}

func TestBuild_SessionWithoutCookieIs401(t *testing.T) {
	app := buildTestApp(t)

	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v2/session", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBuild_UnknownLimiterKindFails(t *testing.T) {
	cfg := &config.Config{}
	cfg.Rate.Enabled = true
	cfg.Rate.Kind = "dynamo"

	_, err := BuildWithDirectory(cfg, zap.NewNop(), directorytest.NewFake(), nil)
	require.Error(t, err)
}
