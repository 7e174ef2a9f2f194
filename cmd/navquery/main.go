package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/pathfind/internal/config"
	"github.com/udisondev/pathfind/internal/db"
	"github.com/udisondev/pathfind/internal/pathfind"
)

const ConfigPath = "config/navquery.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("NAVQUERY_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadNavQuery(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("navquery starting", "data_path", cfg.DataPath, "maps", cfg.Maps)

	index, err := loadIndex(ctx, cfg)
	if err != nil {
		return err
	}

	maps, err := openMaps(cfg, index)
	if err != nil {
		return err
	}
	defer func() {
		for _, m := range maps {
			m.Close()
		}
	}()

	q := newQuerier(maps, os.Stdout)
	return q.Serve(ctx, os.Stdin)
}

// loadIndex reads the model index and merges display ids stored in the
// database when configured.
func loadIndex(ctx context.Context, cfg config.NavQuery) (*pathfind.ModelIndex, error) {
	index, err := pathfind.LoadModelIndex(filepath.Join(cfg.DataPath, pathfind.ModelDir))
	if err != nil {
		return nil, fmt.Errorf("loading model index: %w", err)
	}
	if cfg.DisplaySource != config.DisplaySourcePostgres {
		return index, nil
	}

	dsn := cfg.Database.DSN()
	if err := db.RunMigrations(ctx, dsn); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	database, err := db.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	displays, err := db.NewDisplayModelRepository(database.Pool()).LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	added := index.MergeDisplays(displays)
	slog.Info("display models merged", "rows", len(displays), "added", added)
	return index, nil
}

// openMaps opens every configured map in parallel. Maps share the index
// read-only and own everything else.
func openMaps(cfg config.NavQuery, index *pathfind.ModelIndex) (map[string]*pathfind.Map, error) {
	opened := make([]*pathfind.Map, len(cfg.Maps))

	var g errgroup.Group
	for i, name := range cfg.Maps {
		g.Go(func() error {
			m, err := pathfind.New(cfg.DataPath, name, pathfind.Options{
				Index:             index,
				EagerHeightFields: cfg.EagerHeightFields,
				LoadWorkers:       cfg.LoadWorkers,
			})
			if err != nil {
				return fmt.Errorf("opening map %s: %w", name, err)
			}
			opened[i] = m
			if !cfg.Preload || !m.HasRegions() {
				return nil
			}
			n, err := m.LoadAllRegions()
			if err != nil {
				return fmt.Errorf("preloading map %s: %w", name, err)
			}
			slog.Info("map preloaded", "map", name, "regions", n, "tiles", m.TileCount())
			return nil
		})
	}
	err := g.Wait()

	maps := make(map[string]*pathfind.Map, len(opened))
	for _, m := range opened {
		if m == nil {
			continue
		}
		if err != nil {
			m.Close()
			continue
		}
		maps[m.Name()] = m
	}
	if err != nil {
		return nil, err
	}
	return maps, nil
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
