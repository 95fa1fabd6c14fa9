package app

import (
	"context"

	"bpxgen/internal/config"
)

func provideAppBuilder(cfg *config.Config) *AppBuilder {
	return NewAppBuilder(cfg)
}

func provideApp(ctx context.Context, b *AppBuilder) (*App, error) {
	return b.Build(ctx)
}
