package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pathfind/internal/config"
	"github.com/udisondev/pathfind/internal/testutil"
)

func worldConfig(t *testing.T) config.NavQuery {
	t.Helper()
	w := testutil.BuildWorld(t)
	cfg := config.DefaultNavQuery()
	cfg.DataPath = w.DataPath
	cfg.Maps = []string{testutil.TerrainMap, testutil.InstanceMap}
	return cfg
}

func serve(t *testing.T, cfg config.NavQuery, queries ...string) []string {
	t.Helper()
	index, err := loadIndex(context.Background(), cfg)
	require.NoError(t, err)
	maps, err := openMaps(cfg, index)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, m := range maps {
			m.Close()
		}
	})

	var out bytes.Buffer
	q := newQuerier(maps, &out)
	require.NoError(t, q.Serve(context.Background(), strings.NewReader(strings.Join(queries, "\n"))))
	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
}

func TestQuerier(t *testing.T) {
	got := serve(t, worldConfig(t),
		"# comment",
		"testmap heights 17040 17058",
		"testmap zone 17050 17050 10",
		"testmap los 17050 17060 1 17050 17040 1",
		"testmap los 17050 17060 10 17050 17040 10",
		"testmap z 17064 17064 0",
		"testmap add 1 100 17040 17058 0 0",
		"testmap heights 17040 17058",
		"testmap remove 1",
		"testmap remove 1",
		"testinstance zone 17050 17050 10",
		"",
		"nomap heights 1 2",
		"testmap fly",
		"testmap heights 1",
	)

	want := []string{
		"0.000",
		"zone=5678 area=1234",
		"false",
		"true",
		"error: ",
		"objects=1",
		"1.000",
		"removed=true objects=0",
		"removed=false objects=0",
		"zone=5678 area=1234",
		`error: unknown map "nomap"`,
		`error: unknown query "fly"`,
		"error: wrong argument count",
	}
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, strings.HasPrefix(got[i], want[i]), "line %d: got %q want %q", i, got[i], want[i])
	}
}

func TestQuerierRegions(t *testing.T) {
	got := serve(t, worldConfig(t),
		"testmap load 1 0",
		"testmap load 5 5",
		"testmap unload 1 0",
		"testinstance load 0 0",
	)
	assert.Equal(t, []string{
		"loaded=true tiles=1",
		"loaded=false tiles=1",
		"tiles=0",
		"loaded=false tiles=1",
	}, got)
}

func TestOpenMapsPreload(t *testing.T) {
	cfg := worldConfig(t)
	cfg.Preload = true
	index, err := loadIndex(context.Background(), cfg)
	require.NoError(t, err)

	maps, err := openMaps(cfg, index)
	require.NoError(t, err)
	defer func() {
		for _, m := range maps {
			m.Close()
		}
	}()
	require.Len(t, maps, 2)
	assert.Equal(t, 3, maps[testutil.TerrainMap].TileCount())
	assert.Equal(t, 1, maps[testutil.InstanceMap].TileCount())
}

func TestOpenMapsMissing(t *testing.T) {
	cfg := worldConfig(t)
	cfg.Maps = append(cfg.Maps, "nomap")
	index, err := loadIndex(context.Background(), cfg)
	require.NoError(t, err)

	_, err = openMaps(cfg, index)
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}
