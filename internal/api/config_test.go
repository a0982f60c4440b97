package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/seatplan/types"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, time.Hour, cfg.ArtifactTTL)
	require.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
	require.Equal(t, 1000, cfg.MaxSessions)
	require.False(t, cfg.Redis.Enabled)
}

func TestLoadServerConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seatplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
solverUrl: "http://solver:8000"
artifactTtl: 30m
sessionIdleTtl: 45m
maxSessions: 20
redis:
  enabled: true
  addr: "redis:6379"
  db: 2
editor:
  layout:
    nudgeStep: 5
  solve:
    defaultBudget: 20s
`), 0o600))

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "http://solver:8000", cfg.SolverURL)
	require.Equal(t, 30*time.Minute, cfg.ArtifactTTL)
	require.Equal(t, 45*time.Minute, cfg.SessionIdleTTL)
	require.Equal(t, 20, cfg.MaxSessions)
	require.True(t, cfg.Redis.Enabled)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, 2, cfg.Redis.DB)
	require.Equal(t, 5.0, cfg.Editor.Layout.NudgeStep)
	require.Equal(t, 20*time.Second, cfg.Editor.Solve.DefaultBudget)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout, "unset fields keep defaults")
}

func TestLoadServerConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadServerConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("addr: [\n"), 0o600))
		_, err := LoadServerConfig(path)
		require.Error(t, err)
	})

	t.Run("negative ttl", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ttl.yaml")
		require.NoError(t, os.WriteFile(path, []byte("artifactTtl: -1m\n"), 0o600))
		_, err := LoadServerConfig(path)
		require.ErrorIs(t, err, types.ErrInvalidConfig)
	})

	t.Run("negative session cap", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cap.yaml")
		require.NoError(t, os.WriteFile(path, []byte("maxSessions: -1\n"), 0o600))
		_, err := LoadServerConfig(path)
		require.ErrorIs(t, err, types.ErrInvalidConfig)
	})

	t.Run("bad redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "zero")
		_, err := LoadServerConfig("")
		require.ErrorIs(t, err, types.ErrInvalidConfig)
	})
}

func TestLoadServerConfig_EnvFile(t *testing.T) {
	const key = "SEATPLAN_PUBLIC_URL"
	if _, set := os.LookupEnv(key); set {
		t.Skipf("%s is set in the environment", key)
	}
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=https://plans.example.org\n"), 0o600))

	cfg, err := LoadServerConfig("", filepath.Join(t.TempDir(), "missing.env"), path)
	require.NoError(t, err)
	require.Equal(t, "https://plans.example.org", cfg.PublicURL)
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultServerConfig()
	err := applyEnv(&cfg, mapLookup(map[string]string{
		"SEATPLAN_ADDR":         ":7000",
		"SEATPLAN_SOLVER_URL":   "http://localhost:8000",
		"SEATPLAN_TOKEN_SECRET": "s3cret",
		"SEATPLAN_LOG_FORMAT":   "json",
		"REDIS_ADDR":            "localhost:6379",
		"REDIS_PASSWORD":        "pw",
		"REDIS_DB":              "3",
	}))
	require.NoError(t, err)

	require.Equal(t, ":7000", cfg.Addr)
	require.Equal(t, "http://localhost:8000", cfg.SolverURL)
	require.Equal(t, "s3cret", cfg.TokenSecret)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "info", cfg.LogLevel)
	require.True(t, cfg.Redis.Enabled, "REDIS_ADDR enables the redis store")
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, "pw", cfg.Redis.Password)
	require.Equal(t, 3, cfg.Redis.DB)

	cfg = DefaultServerConfig()
	require.NoError(t, applyEnv(&cfg, mapLookup(map[string]string{"REDIS_ADDR": ""})))
	require.False(t, cfg.Redis.Enabled)
}
