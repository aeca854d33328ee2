package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/uranium24/Fresh-Price/internal/di"
	"github.com/uranium24/Fresh-Price/internal/domain/models"
	"github.com/uranium24/Fresh-Price/internal/usecase"
	xhttp "github.com/uranium24/Fresh-Price/pkg/http"
)

func runCommodities(cmd *cobra.Command, _ []string) error {
	svc, cleanup, err := di.InitializeServices(loadedConfig)
	if err != nil {
		return err
	}
	defer cleanup()

	names, err := svc.Commodities.List(cmd.Context())
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), names)
}

func runForecast(cmd *cobra.Command, args []string) error {
	req := &models.ForecastRequest{Commodity: args[0], Horizon: horizon}
	if err := validateRequest(cmd, req); err != nil {
		return err
	}

	svc, cleanup, err := di.InitializeServices(loadedConfig)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.Forecast.GetForecast(cmd.Context(), usecase.ForecastParams{
		Commodity: req.Commodity,
		Horizon:   req.Horizon,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

func runInsights(cmd *cobra.Command, args []string) error {
	req := &models.InsightsRequest{Commodity: args[0], K: topK}
	if err := validateRequest(cmd, req); err != nil {
		return err
	}

	svc, cleanup, err := di.InitializeServices(loadedConfig)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.Insights.GetInsights(cmd.Context(), usecase.InsightsParams{
		Commodity: req.Commodity,
		K:         req.K,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

// validateRequest applies the same bounds as the HTTP API.
func validateRequest(cmd *cobra.Command, req interface{}) error {
	if verrs := xhttp.Validate(cmd.Context(), req); verrs != nil {
		return fmt.Errorf("invalid arguments: %s", verrs[0].Message)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
