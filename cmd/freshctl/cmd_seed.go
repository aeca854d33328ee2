package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uranium24/Fresh-Price/internal/di"
	"github.com/uranium24/Fresh-Price/internal/usecase"
	applogger "github.com/uranium24/Fresh-Price/pkg/logger"
)

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg := loadedConfig
	l, err := di.ProvideLogger(cfg)
	if err != nil {
		return err
	}

	source, err := di.OpenSeedSource(cfg, l)
	if err != nil {
		return err
	}
	targets, cleanup, err := di.OpenSeedTargets(cmd.Context(), cfg, l, seedTargets)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := usecase.NewSeedUseCase(source, l).Seed(cmd.Context(), targets)
	if err != nil {
		l.Error("seed failed", applogger.Error(err))
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d commodities (%d points) and %d records\n",
		rep.Commodities, rep.Points, rep.Records)
	return nil
}
