package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uranium24/Fresh-Price/internal/di"
	"github.com/uranium24/Fresh-Price/internal/usecase"
	"github.com/uranium24/Fresh-Price/pkg/config"
)

var (
	configPath   string
	sourceType   string
	seed         uint64
	horizon      int
	topK         int
	seedTargets  []string
	loadedConfig *config.Config

	rootCmd = &cobra.Command{
		Use:          "freshctl",
		Short:        "Query commodity price forecasts and market insights",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, sourceType, seed)
			if err != nil {
				return err
			}
			loadedConfig = cfg
			return nil
		},
	}

	commoditiesCmd = &cobra.Command{
		Use:   "commodities",
		Short: "List commodities that have a monthly price series",
		Args:  cobra.NoArgs,
		RunE:  runCommodities,
	}

	forecastCmd = &cobra.Command{
		Use:   "forecast [commodity]",
		Short: "Forecast monthly prices and backtest the model",
		Args:  cobra.ExactArgs(1),
		RunE:  runForecast,
	}

	insightsCmd = &cobra.Command{
		Use:   "insights [commodity]",
		Short: "Top markets, price range, seasonality and supply trend",
		Args:  cobra.ExactArgs(1),
		RunE:  runInsights,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Copy the file datasets into ClickHouse, InfluxDB or Kafka",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&sourceType, "source", "", "override source.type (csv, xlsx, clickhouse, influx)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "pin the forecast random source")

	forecastCmd.Flags().IntVar(&horizon, "horizon", usecase.DefaultHorizon, "months to forecast")
	insightsCmd.Flags().IntVar(&topK, "k", usecase.DefaultTopK, "number of top markets")
	seedCmd.Flags().StringSliceVar(&seedTargets, "to", []string{"clickhouse"},
		fmt.Sprintf("targets to seed (%v)", di.SeedTargetNames))

	rootCmd.AddCommand(commoditiesCmd, forecastCmd, insightsCmd, seedCmd)
}

// loadConfig applies CLI overrides on top of the file and environment. The
// logger is moved off stdout, which carries the JSON results.
func loadConfig(path, source string, seed uint64) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	if source != "" {
		cfg.Source.Type = source
	}
	if seed != 0 {
		cfg.Forecast.Seed = seed
	}
	if cfg.Log.Output == "" || cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}
	cfg.Kafka.Enabled = false
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
