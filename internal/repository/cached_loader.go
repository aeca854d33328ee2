package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	domrepo "github.com/uranium24/Fresh-Price/internal/domain/repository"
	"github.com/uranium24/Fresh-Price/internal/service/cache"
	applogger "github.com/uranium24/Fresh-Price/pkg/logger"
	"github.com/uranium24/Fresh-Price/pkg/util"
)

// CachedLoader memoizes loaded series and record sets from a remote backend.
// Cache failures are logged and fall through to the backend.
type CachedLoader struct {
	series  domrepo.SeriesLoader
	records domrepo.RecordSource
	cache   cache.BytesCache
	ttl     time.Duration
	l       *applogger.Logger
}

func NewCachedLoader(series domrepo.SeriesLoader, records domrepo.RecordSource, c cache.BytesCache, ttl time.Duration, l *applogger.Logger) *CachedLoader {
	return &CachedLoader{series: series, records: records, cache: c, ttl: ttl, l: l}
}

func (c *CachedLoader) CommoditySeries(ctx context.Context, commodity string) ([]models.ObservedPoint, error) {
	var out []models.ObservedPoint
	err := c.through(ctx, "series:"+util.NormalizeKey(commodity), &out, func() (interface{}, error) {
		return c.series.CommoditySeries(ctx, commodity)
	})
	return out, err
}

func (c *CachedLoader) Commodities(ctx context.Context) ([]string, error) {
	var out []string
	err := c.through(ctx, "commodities", &out, func() (interface{}, error) {
		return c.series.Commodities(ctx)
	})
	return out, err
}

func (c *CachedLoader) Records(ctx context.Context, commodity string) ([]models.MarketRecord, error) {
	var out []models.MarketRecord
	err := c.through(ctx, "records:"+util.NormalizeKey(commodity), &out, func() (interface{}, error) {
		return c.records.Records(ctx, commodity)
	})
	return out, err
}

func (c *CachedLoader) through(ctx context.Context, key string, dst interface{}, load func() (interface{}, error)) error {
	if b, ok, err := c.cache.GetBytes(ctx, key); err != nil {
		c.warn("cache get failed", key, err)
	} else if ok {
		uerr := json.Unmarshal(b, dst)
		if uerr == nil {
			return nil
		}
		c.warn("cache entry corrupt", key, uerr)
	}

	v, err := load()
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.cache.SetBytes(ctx, key, b, c.ttl); err != nil {
		c.warn("cache set failed", key, err)
	}
	return json.Unmarshal(b, dst)
}

func (c *CachedLoader) warn(msg, key string, err error) {
	if c.l != nil {
		c.l.Warn(msg, applogger.String("key", key), applogger.Error(err))
	}
}
