package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNavQueryMissingFile(t *testing.T) {
	cfg, err := LoadNavQuery(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultNavQuery(), cfg)
}

func TestLoadNavQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_path: /srv/nav
maps: [azeroth, kalimdor]
log_level: debug
preload: true
display_source: postgres
database:
  host: db
  port: 6543
`), 0o644))

	cfg, err := LoadNavQuery(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/nav", cfg.DataPath)
	assert.Equal(t, []string{"azeroth", "kalimdor"}, cfg.Maps)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Preload)
	assert.False(t, cfg.EagerHeightFields)
	assert.Equal(t, 4, cfg.LoadWorkers)
	assert.Equal(t, DisplaySourcePostgres, cfg.DisplaySource)
	assert.Equal(t, "postgres://pathfind:pathfind@db:6543/pathfind?sslmode=disable", cfg.Database.DSN())
}

func TestLoadNavQueryInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "maps: [unterminated"},
		{"unknown display source", "display_source: mysql"},
		{"empty data path", `data_path: ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadNavQuery(path)
			require.Error(t, err)
		})
	}
}
