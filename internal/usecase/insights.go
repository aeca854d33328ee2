package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	domrepo "github.com/uranium24/Fresh-Price/internal/domain/repository"
	domsvc "github.com/uranium24/Fresh-Price/internal/domain/service"
)

const DefaultTopK = 3

// InsightsUseCase computes the four market views for a commodity.
type InsightsUseCase struct {
	records  domrepo.RecordSource
	analyzer domsvc.MarketAnalyzer
	topK     int
	timeout  time.Duration
}

func NewInsightsUseCase(records domrepo.RecordSource, analyzer domsvc.MarketAnalyzer, topK int, timeout time.Duration) *InsightsUseCase {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &InsightsUseCase{records: records, analyzer: analyzer, topK: topK, timeout: timeout}
}

type InsightsParams struct {
	Commodity string
	K         int
}

// GetInsights loads the records once and runs the views concurrently over the
// same slice. The first failing view cancels the rest and its error is returned.
func (uc *InsightsUseCase) GetInsights(ctx context.Context, p InsightsParams) (*models.MarketInsights, error) {
	if strings.TrimSpace(p.Commodity) == "" {
		return nil, models.NewValidationError("commodity", "must not be blank")
	}
	if p.K <= 0 {
		p.K = uc.topK
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	records, err := uc.records.Records(ctx, p.Commodity)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	res := &models.MarketInsights{Commodity: p.Commodity}
	g, gctx := errgroup.WithContext(ctx)
	run := func(name string, fn func() error) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}

	run("top_markets", func() (err error) {
		res.TopMarkets, err = uc.analyzer.TopMarkets(records, p.Commodity, p.K)
		return err
	})
	run("price_range", func() (err error) {
		res.PriceRange, err = uc.analyzer.PriceRange(records, p.Commodity)
		return err
	})
	run("seasonality", func() (err error) {
		res.Seasonality, err = uc.analyzer.Seasonality(records, p.Commodity)
		return err
	})
	run("supply_trend", func() (err error) {
		res.SupplyTrend, err = uc.analyzer.SupplyTrend(records, p.Commodity)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
