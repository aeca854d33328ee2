package usecase

import (
	"context"
	"fmt"

	domrepo "github.com/uranium24/Fresh-Price/internal/domain/repository"
)

type CommoditiesUseCase struct {
	loader domrepo.SeriesLoader
}

func NewCommoditiesUseCase(loader domrepo.SeriesLoader) *CommoditiesUseCase {
	return &CommoditiesUseCase{loader: loader}
}

// List returns the commodity names that have a monthly series.
func (uc *CommoditiesUseCase) List(ctx context.Context) ([]string, error) {
	names, err := uc.loader.Commodities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list commodities: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
