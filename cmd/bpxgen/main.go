package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"bpxgen/internal/app"
	"bpxgen/internal/config"
	"bpxgen/internal/logger"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/bpxgen.yaml"

type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "bpxgen",
		Short:         "Derive simulation-ready battery parameter sets from BPX documents",
		SilenceUsage: true,
	}
	def := os.Getenv("BPXGEN_CONFIG")
	if def == "" {
		def = defaultConfigPath
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", def, "run configuration (YAML)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override app.log_level")

	root.AddCommand(
		newDeriveCmd(flags),
		newBatchCmd(flags),
		newPlotCmd(flags),
		newServeCmd(flags),
		newWatchCmd(flags),
	)
	return root
}

// session loads the configuration and builds the application. The returned
// cleanup closes the log file and the run store.
func (f *rootFlags) session() (*app.App, func(), error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config failed: %w", err)
	}
	if f.logLevel != "" {
		if _, err := logger.ParseLevel(f.logLevel); err != nil {
			return nil, nil, err
		}
		cfg.App.LogLevel = f.logLevel
	}
	logFile, err := setupLogOutput(cfg.Resolve(cfg.App.LogPath))
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file failed: %w", err)
	}
	a, err := app.NewApp(cfg)
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, nil, err
	}
	logger.Debugf("config loaded from %s", f.configPath)
	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warnf("closing run store failed: %v", err)
		}
		if logFile != nil {
			logFile.Close()
		}
	}
	return a, cleanup, nil
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stderr, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}

// openOutput returns stdout for an empty path or "-".
func openOutput(path string) (io.WriteCloser, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
