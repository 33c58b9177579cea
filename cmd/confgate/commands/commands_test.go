package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"confgate/internal/config"
	apierrors "confgate/internal/errors"
	"confgate/internal/shared/testutil"
)

func run(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	previous := newService
	newService = func() *config.Service { return testutil.NewTestService(env) }
	t.Cleanup(func() { newService = previous })

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheck(t *testing.T) {
	t.Run("every key valid", func(t *testing.T) {
		out, err := run(t, testutil.ValidEnvironment(), "check", "--required", "DATABASE_URL,ADMIN_CLIENT_SECRET")
		require.NoError(t, err)

		assert.Regexp(t, `PORT\s+ok\s+8080`, out)
		assert.Regexp(t, `FEATURE_FLIPPING\s+ok\s+true`, out)
		assert.Regexp(t, `DATABASE_URL\s+ok\s+\[REDACTED\]`, out)
		assert.NotContains(t, out, testutil.FixtureClientSecret)
		assert.NotContains(t, out, testutil.FixtureDatabaseURL)
	})

	t.Run("defaults", func(t *testing.T) {
		out, err := run(t, nil, "check", config.KeyLogLevel, config.KeyOtherAPIURL)
		require.NoError(t, err)
		assert.Regexp(t, `LOG_LEVEL\s+default\s+debug`, out)
		assert.Regexp(t, `OTHER_API_URL\s+default\s+https://url.com`, out)
	})

	t.Run("optional unset key does not fail", func(t *testing.T) {
		out, err := run(t, nil, "check", config.KeyDatabaseURL)
		require.NoError(t, err)
		assert.Regexp(t, `DATABASE_URL\s+unset`, out)
	})

	t.Run("required unset key fails", func(t *testing.T) {
		out, err := run(t, nil, "check", "--required", config.KeyDatabaseURL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of")
		assert.Regexp(t, `DATABASE_URL\s+unset`, out)
	})

	t.Run("required keys are added to explicit keys", func(t *testing.T) {
		out, err := run(t, nil, "check", config.KeyPort, "--required", config.KeyAdminClientID)
		require.Error(t, err)
		assert.EqualError(t, err, "1 of 2 keys failed")
		assert.Regexp(t, `PORT\s+unset`, out)
		assert.Regexp(t, `ADMIN_CLIENT_ID\s+unset`, out)
	})

	t.Run("required key outside the registry is checked", func(t *testing.T) {
		out, err := run(t, nil, "check", "--required", "MY_TOKEN")
		require.Error(t, err)
		assert.EqualError(t, err, "1 of 8 keys failed")
		assert.Regexp(t, `MY_TOKEN\s+unset`, out)
		assert.Regexp(t, `PORT\s+unset`, out)
	})

	t.Run("required key outside the registry passes when set", func(t *testing.T) {
		out, err := run(t, map[string]string{"MY_TOKEN": "abc"}, "check", "--required", "MY_TOKEN")
		require.NoError(t, err)
		assert.Regexp(t, `MY_TOKEN\s+ok\s+abc`, out)
	})

	t.Run("invalid keys fail", func(t *testing.T) {
		out, err := run(t, testutil.InvalidEnvironment(), "check", config.KeyPort, config.KeyDatabaseURL)
		require.Error(t, err)
		assert.EqualError(t, err, "2 of 2 keys failed")
		assert.Regexp(t, `PORT\s+invalid: `, out)
		assert.Regexp(t, `DATABASE_URL\s+invalid: `, out)
		assert.NotContains(t, out, "mysql://db/app")
	})
}

func TestDescribe(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		out, err := run(t, testutil.ValidEnvironment(), "describe")
		require.NoError(t, err)

		var descriptions []config.KeyDescription
		require.NoError(t, yaml.Unmarshal([]byte(out), &descriptions))
		assert.Len(t, descriptions, len(config.DefaultRules()))
		assert.NotContains(t, out, testutil.FixtureClientSecret)
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, nil, "describe", "--format", "json")
		require.NoError(t, err)

		var descriptions []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &descriptions))
		require.NotEmpty(t, descriptions)

		keys := make([]string, 0, len(descriptions))
		for _, d := range descriptions {
			keys = append(keys, d["key"].(string))
		}
		assert.Contains(t, keys, config.KeyPort)
		assert.Contains(t, keys, config.KeyFeatureFlipping)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, nil, "describe", "--format", "toml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be one of: yaml, json")

		var appErr *apierrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apierrors.ErrTypeValidation, appErr.Type)
	})
}

func TestVersion(t *testing.T) {
	out, err := run(t, nil, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, config.AppVersion)
}

func TestServe_InvalidConfiguration(t *testing.T) {
	_, err := run(t, testutil.With(nil, config.KeyLogLevel, "loud"), "serve")
	require.Error(t, err)
	assert.True(t, config.IsInvalid(err))
}
