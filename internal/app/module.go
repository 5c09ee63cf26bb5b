package app

import (
	"context"
	"fmt"
	"io"

	"github.com/matheus3301/evbus/internal/bus"
	"github.com/matheus3301/evbus/internal/config"
	"github.com/matheus3301/evbus/internal/demo"
	"github.com/matheus3301/evbus/internal/journal"
	"github.com/matheus3301/evbus/internal/lock"
	"github.com/matheus3301/evbus/internal/logging"
	"github.com/matheus3301/evbus/internal/paths"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the command-line inputs passed to the fx module.
type Params struct {
	ConfigPath string // empty = paths.ConfigPath()
	DataDir    string // overrides config data_dir
	Output     io.Writer
	Tail       int // journal entries printed after the scenario
}

// DataDir is the resolved data directory.
type DataDir string

// Module returns the fx module composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("evbus",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideDataDir,
			provideLogger,
			provideLock,
			provideJournal,
			provideBus,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	path := p.ConfigPath
	if path == "" {
		path = paths.ConfigPath()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideDataDir(p Params, cfg *config.Config) (DataDir, error) {
	dir := paths.ResolveDataDir(p.DataDir, cfg.DataDir)
	if err := paths.EnsureDataDir(dir); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return DataDir(dir), nil
}

func provideLogger(dir DataDir, cfg *config.Config) (*zap.Logger, error) {
	return logging.New(paths.LogPath(string(dir)), cfg.LogLevel, "evbus")
}

func provideLock(dir DataDir, logger *zap.Logger) (*lock.Lock, error) {
	l, err := lock.Acquire(string(dir))
	if err != nil {
		return nil, err
	}
	logger.Info("data directory lock acquired", zap.String("path", l.Path()))
	return l, nil
}

// provideJournal returns nil when journaling is disabled. It depends on the
// lock so the database is only opened by the process owning the data dir.
func provideJournal(cfg *config.Config, dir DataDir, _ *lock.Lock, logger *zap.Logger) (*journal.Journal, error) {
	if !cfg.Journal {
		logger.Info("fire journal disabled")
		return nil, nil
	}
	path := paths.JournalPath(string(dir))
	j, err := journal.Open(path, logger)
	if err != nil {
		return nil, err
	}
	result, err := j.Migrate()
	if err != nil {
		_ = j.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("fire journal opened", zap.String("path", path))
	return j, nil
}

func provideBus(logger *zap.Logger, j *journal.Journal) *bus.Bus {
	opts := []bus.Option{bus.WithLogger(logger.Named("bus"))}
	if j != nil {
		opts = append(opts, bus.WithObserver(j))
	}
	return bus.New(opts...)
}

func registerLifecycle(lc fx.Lifecycle, p Params, cfg *config.Config, b *bus.Bus, j *journal.Journal, lk *lock.Lock, logger *zap.Logger) {
	out := p.Output
	if out == nil {
		out = io.Discard
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := demo.Run(b, out); err != nil {
				return fmt.Errorf("demo scenario: %w", err)
			}
			logger.Info("demo scenario finished", zap.Int("handlers", b.Len()), zap.Int("kinds", len(b.Kinds())))
			if j != nil && p.Tail > 0 {
				return printTail(out, j, p.Tail)
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			if j != nil {
				if removed, err := j.Prune(cfg.JournalRetain); err != nil {
					logger.Warn("journal prune failed", zap.Error(err))
				} else if removed > 0 {
					logger.Info("journal pruned", zap.Int64("removed", removed))
				}
				if err := j.Close(); err != nil {
					logger.Warn("error closing journal", zap.Error(err))
				}
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("evbus stopped")
			_ = logger.Sync()
			return nil
		},
	})
}

func printTail(w io.Writer, j *journal.Journal, n int) error {
	entries, err := j.Recent(n)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nlast %d fires:\n", len(entries))
	for _, e := range entries {
		status := "ok"
		if e.Failed() {
			status = "error: " + e.Error
		}
		fmt.Fprintf(w, "  %s  %-12s %-10q handlers=%d invoked=%d %s\n",
			e.FiredAt.Format("15:04:05.000000"), e.Kind, e.EventName, e.Handlers, e.Invoked, status)
	}
	return nil
}
