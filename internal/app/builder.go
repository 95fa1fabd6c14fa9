package app

import (
	"context"
	"fmt"
	"strings"

	"bpxgen/internal/bpx"
	"bpxgen/internal/config"
	"bpxgen/internal/logger"
	"bpxgen/internal/model"
	"bpxgen/internal/pipeline"
	"bpxgen/internal/store"
	"bpxgen/internal/store/gormstore"
	derivehttp "bpxgen/internal/transport/http/derive"
)

type AppBuilder struct {
	cfg *config.Config

	storeFn func(path string) (store.RunRepository, error)
	httpFn  func(derivehttp.ServerConfig) (*derivehttp.Server, error)

	sourceOverride  pipeline.Source
	factoryOverride model.Factory
	runsOverride    store.RunRepository
}

type AppBuilderOption func(*AppBuilder)

// WithSource replaces the BPX loader.
func WithSource(src pipeline.Source) AppBuilderOption {
	return func(b *AppBuilder) { b.sourceOverride = src }
}

// WithFactory replaces the model factory.
func WithFactory(f model.Factory) AppBuilderOption {
	return func(b *AppBuilder) { b.factoryOverride = f }
}

// WithRunRepository replaces the run history regardless of store.enabled.
func WithRunRepository(r store.RunRepository) AppBuilderOption {
	return func(b *AppBuilder) { b.runsOverride = r }
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:     cfg,
		storeFn: openGormStore,
		httpFn:  derivehttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func openGormStore(path string) (store.RunRepository, error) {
	return gormstore.NewGormStore(path)
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	var src pipeline.Source = bpx.NewLoader()
	if b.sourceOverride != nil {
		src = b.sourceOverride
	}
	var factory model.Factory = model.DefaultFactory{}
	if b.factoryOverride != nil {
		factory = b.factoryOverride
	}
	deriver := pipeline.NewDeriver(src, factory)

	runs, err := b.resolveRuns(cfg)
	if err != nil {
		return nil, err
	}

	root := cfg.Resolve(cfg.HTTP.Root)
	if root == "" {
		root = cfg.Dir()
	}
	server, err := b.httpFn(derivehttp.ServerConfig{
		Addr:    cfg.HTTP.Addr,
		Deriver: deriver,
		Runs:    runs,
		Root:    root,
	})
	if err != nil {
		if runs != nil {
			_ = runs.Close()
		}
		return nil, fmt.Errorf("building derive http server failed: %w", err)
	}

	return &App{
		cfg:     cfg,
		deriver: deriver,
		runs:    runs,
		http:    server,
		Summary: newStartupSummary(cfg, root, deriver.Stages()),
	}, nil
}

func (b *AppBuilder) resolveRuns(cfg *config.Config) (store.RunRepository, error) {
	if b.runsOverride != nil {
		return b.runsOverride, nil
	}
	if !cfg.Store.Enabled {
		return nil, nil
	}
	path := cfg.Resolve(cfg.Store.Path)
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store.path is not configured")
	}
	runs, err := b.storeFn(path)
	if err != nil {
		return nil, fmt.Errorf("opening run store failed: %w", err)
	}
	logger.Infof("run history at %s", path)
	return runs, nil
}
