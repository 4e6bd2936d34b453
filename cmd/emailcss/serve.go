package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"emailcss/internal/catalog"
	"emailcss/internal/server"
	"emailcss/internal/state"
)

func runServe(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	cfg := env.Cfg.Server
	if listen := cmd.String("listen"); listen != "" {
		cfg.Listen = listen
	}

	cssText, err := catalog.Compose(env.Cfg.Inliner.StylesheetPath)
	if err != nil {
		return fmt.Errorf("unable to prepare stylesheet: %w", err)
	}
	env.Log.Info("Starting server", zap.String("listen", cfg.Listen),
		zap.String("catalog", catalog.Version), zap.Int("css_bytes", len(cssText)))

	return server.New(cfg, cssText, env.Log).Run(ctx)
}
