// Package main is the entry point for the posehook daemon. It attaches to a
// running client and applies edit profiles to its characters every tick.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/posehook/internal/config"
	"github.com/Faultbox/posehook/internal/driver"
	"github.com/Faultbox/posehook/internal/edits"
	"github.com/Faultbox/posehook/internal/gate"
	"github.com/Faultbox/posehook/internal/logger"
	"github.com/Faultbox/posehook/internal/memory"
	"github.com/Faultbox/posehook/internal/naming"
	"github.com/Faultbox/posehook/internal/profile"
	"github.com/Faultbox/posehook/internal/skeleton"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var fileCfg logger.FileConfig
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.JSON = cfg.Logging.JSON
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== posehook ===", zap.Int("pid", cfg.Process.PID))
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		logger.Error("posehook stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("posehook closed normally")
}

func run(ctx context.Context, cfg *config.Config) error {
	schema, err := skeleton.LoadSchema(cfg.Layout.Version)
	if err != nil {
		return err
	}
	names := naming.NewCache(naming.DefaultTables())
	if err := names.Validate(); err != nil {
		return fmt.Errorf("naming tables: %w", err)
	}

	proc, err := memory.OpenProcess(cfg.Process.PID)
	if err != nil {
		return err
	}
	defer proc.Close()

	// Module image for signature scans
	var scanner *memory.Scanner
	if cfg.Process.ModuleBase != 0 {
		scanner, err = memory.ReadModule(proc, memory.Address(cfg.Process.ModuleBase), cfg.Process.ModuleSize)
		if err != nil {
			return fmt.Errorf("reading module: %w", err)
		}
	}
	table, err := actorTable(cfg, scanner)
	if err != nil {
		return err
	}

	var freeze *gate.FreezeDetector
	if scanner != nil {
		freeze, err = gate.LocateFreeze(proc, scanner, gate.FreezeSignatures{
			Position: cfg.Gate.FreezePosition,
			Rotation: cfg.Gate.FreezeRotation,
			Scale:    cfg.Gate.FreezeScale,
		})
		if err != nil {
			logger.Warn("freeze detection disabled", zap.Error(err))
			freeze = nil
		}
	}

	// Pose mode
	tracker := gate.NewTracker(logger.Named("gate"))
	var source gate.Source
	if cfg.Gate.PoseFlag != 0 {
		source = gate.NewPollingSource(proc, memory.Address(cfg.Gate.PoseFlag), gate.NewHooks(tracker, logger.Named("hooks")), logger.Named("gate"))
	} else {
		logger.Warn("no pose flag address, pose mode is never detected")
	}

	// Profiles
	registry := edits.NewRegistry()
	profiles := profile.NewSync(cfg.Profiles.Path, registry, logger.Named("profile"))
	if err := profiles.Reload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) || !cfg.Profiles.Watch {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Profiles.Path), 0o755); err != nil {
			return fmt.Errorf("creating profile directory: %w", err)
		}
		logger.Warn("profile file missing, waiting for it", zap.String("path", cfg.Profiles.Path))
	}

	reader := skeleton.NewReader(proc, schema, skeleton.NewLayoutCache(cfg.Layout.CacheSize))
	reader.MaxAttachments = cfg.Layout.MaxAttachments

	d := driver.New(driver.Config{
		ActorTable:   table,
		Normal:       driver.Range{Start: cfg.Actors.Normal.Start, End: cfg.Actors.Normal.End},
		Pose:         driver.Range{Start: cfg.Actors.Pose.Start, End: cfg.Actors.Pose.End},
		TickInterval: cfg.Actors.TickInterval,
	}, driver.Deps{
		Memory:   proc,
		Reader:   reader,
		Names:    names,
		Registry: registry,
		Tracker:  tracker,
		Source:   source,
		Freeze:   freeze,
		Log:      logger.Named("driver"),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.Run(ctx)
	})
	if cfg.Profiles.Watch {
		g.Go(func() error {
			return profiles.Watch(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		d.Stop()
		return nil
	})

	err = g.Wait()
	d.Wait()
	return err
}

// actorTable returns the configured address or resolves it by signature.
func actorTable(cfg *config.Config, scanner *memory.Scanner) (memory.Address, error) {
	if cfg.Actors.Table != 0 {
		return memory.Address(cfg.Actors.Table), nil
	}
	if scanner == nil {
		return 0, fmt.Errorf("actor table: no address and no module to scan")
	}
	addr, err := scanner.ScanRelative(cfg.Actors.TableSignature, cfg.Actors.TableOperand, cfg.Actors.TableInstrLen)
	if err != nil {
		return 0, fmt.Errorf("actor table: %w", err)
	}
	logger.Info("actor table located", zap.Stringer("address", addr))
	return addr, nil
}
