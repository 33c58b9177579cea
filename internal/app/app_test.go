package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confgate/internal/config"
	apierrors "confgate/internal/errors"
	"confgate/internal/infrastructure"
	"confgate/internal/shared/testutil"
)

func newTestApplication(t *testing.T, env map[string]string) *Application {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	a, err := NewApplication(testutil.NewTestService(env))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.OTelProviders.Shutdown(context.Background())
	})
	return a
}

func serve(a *Application, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Empty(t, s.Host)
		assert.Equal(t, 15*time.Second, s.ReadTimeout)
		assert.Equal(t, config.DefaultShutdownTimeout, s.ShutdownTimeout)
		assert.Equal(t, config.DefaultReadyTimeout, s.ReadyTimeout)
		assert.True(t, s.RateLimitEnabled)
		assert.True(t, s.RequireHTTPS)
		assert.Equal(t, []string{config.KeyDatabaseURL, config.KeyAdminClientID, config.KeyAdminClientSecret}, s.RequiredKeys)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CONFGATE_HOST", "127.0.0.1")
		t.Setenv("CONFGATE_SHUTDOWN_TIMEOUT", "2s")
		t.Setenv("CONFGATE_REQUIRED_KEYS", "DATABASE_URL")
		t.Setenv("CONFGATE_RATE_LIMIT_ENABLED", "false")

		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", s.Host)
		assert.Equal(t, 2*time.Second, s.ShutdownTimeout)
		assert.Equal(t, []string{config.KeyDatabaseURL}, s.RequiredKeys)
		assert.False(t, s.RateLimitEnabled)

		s.Port = 9000
		assert.Equal(t, "127.0.0.1:9000", s.Addr())
	})

	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("CONFGATE_READ_TIMEOUT", "soon")
		_, err := LoadSettings()
		assert.Error(t, err)
	})
}

func TestNewApplication(t *testing.T) {
	a := newTestApplication(t, testutil.ValidEnvironment())

	require.NotNil(t, a.Router)
	require.NotNil(t, a.Server)
	assert.Equal(t, 8080, a.Settings.Port)
	assert.Equal(t, ":8080", a.Server.Addr)
	assert.Equal(t, "https://partner.example.com", a.Settings.OtherAPIURL)
	assert.Equal(t, "admin", a.Settings.AdminClientID)
	assert.Equal(t, testutil.FixtureClientSecret, a.Settings.AdminClientSecret)
	assert.True(t, a.Settings.FeatureFlipping)
}

func TestNewApplication_Defaults(t *testing.T) {
	a := newTestApplication(t, nil)

	assert.Zero(t, a.Settings.Port)
	assert.Equal(t, config.DefaultOtherAPIURL, a.Settings.OtherAPIURL)
	assert.Empty(t, a.Settings.AdminClientID)
	assert.False(t, a.Settings.FeatureFlipping)
}

func TestNewApplication_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg []string
	}{
		{
			name:    "log level",
			env:     testutil.With(testutil.ValidEnvironment(), config.KeyLogLevel, "loud"),
			wantMsg: []string{"LOG_LEVEL is not valid"},
		},
		{
			name:    "port",
			env:     testutil.With(testutil.ValidEnvironment(), config.KeyPort, "http"),
			wantMsg: []string{"PORT is not valid"},
		},
		{
			name: "every invalid key is reported",
			env: testutil.With(
				testutil.With(testutil.ValidEnvironment(), config.KeyDatabaseURL, "mysql://db/app"),
				config.KeyFeatureFlipping, "maybe"),
			wantMsg: []string{"DATABASE_URL is not valid", "FEATURE_FLIPPING is not valid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infrastructure.ResetLoggerForTesting()
			defer infrastructure.ResetLoggerForTesting()

			a, err := NewApplication(testutil.NewTestService(tt.env))
			require.Error(t, err)
			assert.Nil(t, a)

			var appErr *apierrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
			assert.True(t, config.IsInvalid(err))
			for _, msg := range tt.wantMsg {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestNewApplication_MissingRequiredKeysDoNotAbort(t *testing.T) {
	env := testutil.Without(testutil.ValidEnvironment(), config.KeyDatabaseURL, config.KeyAdminClientSecret)
	a := newTestApplication(t, env)

	w := serve(a, http.MethodGet, config.ReadyEndpoint, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierrors.TypeConfigMissing, body["type"])
	assert.Equal(t, []interface{}{config.KeyAdminClientSecret, config.KeyDatabaseURL}, body["keys"])
}

func TestApplication_setupRouter(t *testing.T) {
	a := newTestApplication(t, testutil.ValidEnvironment())

	t.Run("hello", func(t *testing.T) {
		w := serve(a, http.MethodGet, config.APIBasePath, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Hello", w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("health", func(t *testing.T) {
		for _, target := range []string{config.HealthEndpoint, config.ReadyEndpoint, "/api/health/live", "/api/version"} {
			w := serve(a, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusOK, w.Code, target)
		}
	})

	t.Run("schema never exposes values", func(t *testing.T) {
		w := serve(a, http.MethodGet, config.SchemaEndpoint, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), config.KeyAdminClientSecret)
		assert.NotContains(t, w.Body.String(), testutil.FixtureClientSecret)
		assert.NotContains(t, w.Body.String(), testutil.FixtureDatabaseURL)
	})

	t.Run("unknown route", func(t *testing.T) {
		w := serve(a, http.MethodGet, "/api/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, apierrors.TypeNotFound, body["type"])
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := serve(a, http.MethodPost, config.HealthEndpoint, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("plain http behind a proxy is redirected", func(t *testing.T) {
		w := serve(a, http.MethodGet, config.APIBasePath, http.Header{"X-Forwarded-Proto": {"http"}})
		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "https://")
	})

	t.Run("metrics", func(t *testing.T) {
		w := serve(a, http.MethodGet, config.MetricsEndpoint, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "confgate_config_resolutions")
		assert.Contains(t, body, `key="PORT"`)
		assert.Contains(t, body, `outcome="ok"`)
	})
}

func TestApplication_RequireHTTPSDisabled(t *testing.T) {
	t.Setenv("CONFGATE_REQUIRE_HTTPS", "false")
	a := newTestApplication(t, nil)

	w := serve(a, http.MethodGet, config.APIBasePath, http.Header{"X-Forwarded-Proto": {"http"}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApplication_Run(t *testing.T) {
	t.Setenv("CONFGATE_HOST", "127.0.0.1")
	a := newTestApplication(t, testutil.Without(testutil.ValidEnvironment(), config.KeyPort))

	assert.Empty(t, a.Addr())
	require.NoError(t, a.Listen())
	addr := a.Addr()
	require.NotEmpty(t, addr)
	assert.NotEqual(t, "127.0.0.1:0", addr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()

	resp, err := http.Get("http://" + addr + config.APIBasePath)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	_, err = http.Get("http://" + addr + config.APIBasePath)
	assert.Error(t, err, "server still accepting connections after shutdown")
}

func TestApplication_ListenError(t *testing.T) {
	t.Setenv("CONFGATE_HOST", "127.0.0.1")
	first := newTestApplication(t, testutil.Without(testutil.ValidEnvironment(), config.KeyPort))
	require.NoError(t, first.Listen())
	defer first.listener.Close()

	second := newTestApplication(t, testutil.Without(testutil.ValidEnvironment(), config.KeyPort))
	second.Server.Addr = first.Addr()

	err := second.Listen()
	require.Error(t, err)
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeNetwork, appErr.Type)
}
