// map-extractor converts a client install into server map and DBC files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/Faultbox/mapgen/internal/config"
	"github.com/Faultbox/mapgen/internal/extract"
	"github.com/Faultbox/mapgen/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	f, err := config.ParseFlags(args)
	if err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if f.SaveConfig != "" {
		if err := cfg.SaveTo(f.SaveConfig); err != nil {
			logger.Error("Failed to save config", zap.String("path", f.SaveConfig), zap.Error(err))
			return 1
		}
		logger.Info("Saved config", zap.String("path", f.SaveConfig))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := extract.New(cfg, logger.Log).Run(ctx)
	if err != nil {
		logger.Error("Extraction failed", zap.Error(err))
		return 1
	}
	logger.Info("Done",
		zap.Int("tables", report.DBCCount()),
		zap.Int("tiles", report.TileCount()))
	return 0
}
