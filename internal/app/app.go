package app

import (
	"context"
	"fmt"
	"os"

	"bpxgen/internal/config"
	"bpxgen/internal/logger"
	"bpxgen/internal/pipeline"
	"bpxgen/internal/store"
	derivehttp "bpxgen/internal/transport/http/derive"
)

// App wires configuration, the deriver, the run history and the HTTP API.
type App struct {
	cfg     *config.Config
	deriver *pipeline.Deriver
	runs    store.RunRepository
	http    *derivehttp.Server
	Summary *StartupSummary
}

// NewApp builds the application from cfg without starting anything.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Config returns the active configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Deriver exposes the underlying deriver.
func (a *App) Deriver() *pipeline.Deriver { return a.deriver }

// Runs returns the run history, or nil when the store is disabled.
func (a *App) Runs() store.RunRepository { return a.runs }

// Derive runs the configured derivation once and records it.
func (a *App) Derive(ctx context.Context) (*pipeline.Result, error) {
	if a == nil || a.cfg == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	req, err := a.cfg.Request()
	if err != nil {
		return nil, err
	}
	return a.derive(ctx, req)
}

func (a *App) derive(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	res, err := a.deriver.GetParams(ctx, req)
	a.record(ctx, req, res, err)
	return res, err
}

func (a *App) record(ctx context.Context, req pipeline.Request, res *pipeline.Result, derr error) {
	if a.runs == nil {
		return
	}
	rec := store.NewRunRecord(req, res, derr)
	if err := a.runs.SaveRun(ctx, &rec); err != nil {
		logger.Warnf("recording run failed: %v", err)
		return
	}
	logger.Debugf("run %s recorded (%s)", rec.ID, rec.Status)
}

// Serve runs the HTTP API until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.http == nil {
		return fmt.Errorf("http server not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print(os.Stderr)
	}
	if err := a.http.Start(ctx); err != nil {
		return fmt.Errorf("derive http server error: %w", err)
	}
	return nil
}

// Close releases the run history.
func (a *App) Close() error {
	if a == nil || a.runs == nil {
		return nil
	}
	err := a.runs.Close()
	a.runs = nil
	return err
}
