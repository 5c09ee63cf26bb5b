package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/evbus/internal/app"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	configFlag := flag.String("config", "", "config file path (default ~/.evbus/config.toml)")
	dataDirFlag := flag.String("data-dir", "", "data directory (overrides config data_dir)")
	tailFlag := flag.Int("tail", 10, "journal entries to print after the scenario (0 = none)")
	flag.Parse()

	if *tailFlag < 0 {
		fmt.Fprintln(os.Stderr, "error: -tail must be >= 0")
		os.Exit(2)
	}

	fxApp := fx.New(
		app.Module(app.Params{
			ConfigPath: *configFlag,
			DataDir:    *dataDirFlag,
			Output:     os.Stdout,
			Tail:       *tailFlag,
		}),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
	)
	if err := fxApp.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startErr := fxApp.Start(ctx)
	if startErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", startErr)
	}
	if err := fxApp.Stop(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: stop: %v\n", err)
	}
	if startErr != nil {
		os.Exit(1)
	}
}
