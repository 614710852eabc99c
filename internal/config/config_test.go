package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "weekplan.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8080", cfg.Listen)
	require.Equal(t, "monday", cfg.WeekStart)
	require.InDelta(t, 119, cfg.WeeklyBudgetHours, 1e-9)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekplan.yaml")
	partial := "listen: \":9090\"\nweek_start: tuesday\nstart_hour: 9\nend_hour: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Listen)
	require.Equal(t, "monday", cfg.WeekStart, "unknown week start falls back")
	require.Equal(t, 6, cfg.StartHour)
	require.Equal(t, 23, cfg.EndHour)
	require.Equal(t, "*/15 * * * *", cfg.RefreshCron)
}

func TestSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekplan.yaml")

	cfg := DefaultConfig()
	cfg.Remote.URL = "https://calendar.example.net/plan"
	cfg.Remote.Token = "secret"
	cfg.SeedSampleWeek = false
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Remote.URL, loaded.Remote.URL)
	require.Equal(t, cfg.Remote.Token, loaded.Remote.Token)
	require.False(t, loaded.SeedSampleWeek)
}

func TestLocationFallsBackToLocal(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	require.NotNil(t, cfg.Location())

	cfg.Timezone = "Europe/Berlin"
	require.Equal(t, "Europe/Berlin", cfg.Location().String())
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}
