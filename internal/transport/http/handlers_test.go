package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"confgate/internal/config"
	apierrors "confgate/internal/errors"
	"confgate/internal/services"
	"confgate/internal/shared/testutil"
	"confgate/pkg/contracts"
)

var requiredKeys = []string{config.KeyDatabaseURL, config.KeyAdminClientID, config.KeyAdminClientSecret}

func newRouter(t *testing.T, env map[string]string) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	cfg := testutil.NewTestService(env)

	health := NewHealthHandler(services.NewHealthService("1.0.0", cfg, requiredKeys, time.Second, logger), errorHandler, logger)
	configHandler := NewConfigHandler(services.NewConfigService(cfg, logger), requiredKeys, errorHandler, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/", health.Hello)
		r.Get("/health", health.HealthCheck)
		r.Get("/health/ready", health.ReadinessCheck)
		r.Get("/health/live", health.LivenessCheck)
		r.Get("/version", health.Version)
		r.Mount("/config", configHandler.Routes())
	})
	return r
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHello(t *testing.T) {
	w := get(t, newRouter(t, nil), "/api")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello", w.Body.String())
}

func TestHealthEndpoints(t *testing.T) {
	r := newRouter(t, nil)

	w := get(t, r, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)
	var health services.HealthStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)

	w = get(t, r, "/api/health/live")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"alive"`)

	w = get(t, r, "/api/version")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"confgate"`)
}

func TestReadinessCheck(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		w := get(t, newRouter(t, testutil.ValidEnvironment()), "/api/health/ready")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"ready"`)
		assert.NotContains(t, w.Body.String(), testutil.FixtureClientSecret)
	})

	t.Run("missing keys", func(t *testing.T) {
		w := get(t, newRouter(t, nil), "/api/health/ready")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, apierrors.TypeConfigMissing, body["type"])
		assert.Equal(t, []interface{}{"ADMIN_CLIENT_ID", "ADMIN_CLIENT_SECRET", "DATABASE_URL"}, body["keys"])
	})

	t.Run("invalid key", func(t *testing.T) {
		env := testutil.With(testutil.ValidEnvironment(), config.KeyDatabaseURL, "http://not-postgres")
		w := get(t, newRouter(t, env), "/api/health/ready")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, apierrors.TypeConfigInvalid, body["type"])
		assert.Equal(t, []interface{}{"DATABASE_URL"}, body["keys"])
		assert.NotContains(t, w.Body.String(), "http://not-postgres")
	})
}

func TestSchema(t *testing.T) {
	r := newRouter(t, testutil.ValidEnvironment())

	t.Run("json", func(t *testing.T) {
		w := get(t, r, "/api/config/schema")
		require.Equal(t, http.StatusOK, w.Code)

		var descriptions []config.KeyDescription
		require.NoError(t, json.NewDecoder(w.Body).Decode(&descriptions))
		require.Len(t, descriptions, len(config.DefaultRules()))
		assert.Equal(t, config.KeyAdminClientID, descriptions[0].Key)
	})

	t.Run("yaml", func(t *testing.T) {
		w := get(t, r, "/api/config/schema?format=yaml")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))

		var descriptions []config.KeyDescription
		require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &descriptions))
		assert.Len(t, descriptions, len(config.DefaultRules()))
	})

	t.Run("unknown format", func(t *testing.T) {
		w := get(t, r, "/api/config/schema?format=xml")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("never shows values", func(t *testing.T) {
		for _, format := range []string{"json", "yaml"} {
			w := get(t, r, "/api/config/schema?format="+format)
			assert.NotContains(t, w.Body.String(), testutil.FixtureClientSecret)
			assert.NotContains(t, w.Body.String(), testutil.FixtureDatabaseURL)
		}
	})

	t.Run("single key", func(t *testing.T) {
		w := get(t, r, "/api/config/schema/LOG_LEVEL")
		require.Equal(t, http.StatusOK, w.Code)

		var d config.KeyDescription
		require.NoError(t, json.NewDecoder(w.Body).Decode(&d))
		assert.Equal(t, "debug", d.Default)
		assert.Equal(t, []string{"oneof=fatal error warn info debug trace"}, d.Constraints)

		w = get(t, r, "/api/config/schema/NOPE")
		assert.Equal(t, http.StatusNotFound, w.Code)

		var problem map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&problem))
		assert.Equal(t, apierrors.TypeNotFound, problem["type"])
		assert.Equal(t, "key NOPE not found", problem["detail"])
	})
}

func TestStatus(t *testing.T) {
	t.Run("all resolved", func(t *testing.T) {
		w := get(t, newRouter(t, testutil.ValidEnvironment()), "/api/config/status")
		require.Equal(t, http.StatusOK, w.Code)

		var resp StatusResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.OK)
		assert.Len(t, resp.Keys, len(config.DefaultRules()))
		for _, report := range resp.Keys {
			assert.Empty(t, report.Value, report.Key)
		}
	})

	t.Run("filtered and failing", func(t *testing.T) {
		w := get(t, newRouter(t, testutil.InvalidEnvironment()), "/api/config/status?keys=PORT,%20ADMIN_CLIENT_ID")
		require.Equal(t, http.StatusOK, w.Code)

		var resp StatusResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.False(t, resp.OK)
		require.Len(t, resp.Keys, 2)
		assert.Equal(t, services.StateInvalid, resp.Keys[0].State)
		assert.Equal(t, "is not a number", resp.Keys[0].Reason)
		assert.Equal(t, services.StateUnset, resp.Keys[1].State)
		assert.True(t, resp.Keys[1].Required)
	})
}

type stubHealth struct {
	services.HealthStatus
	err error
}

func (s stubHealth) HealthCheck(context.Context) services.HealthStatus   { return s.HealthStatus }
func (s stubHealth) LivenessCheck(context.Context) services.HealthStatus { return s.HealthStatus }
func (s stubHealth) Version() contracts.VersionInfo                      { return contracts.VersionInfo{} }
func (s stubHealth) ReadinessCheck(context.Context) (services.HealthStatus, error) {
	return s.HealthStatus, s.err
}

func TestReadinessCheck_Timeout(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewHealthHandler(stubHealth{err: context.DeadlineExceeded}, apierrors.NewErrorHandler(logger, false), logger)

	w := httptest.NewRecorder()
	h.ReadinessCheck(w, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}
