package di

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/uranium24/Fresh-Price/internal/domain/repository"
	"github.com/uranium24/Fresh-Price/internal/handler/api"
	internalrepo "github.com/uranium24/Fresh-Price/internal/repository"
	"github.com/uranium24/Fresh-Price/internal/service/cache"
	"github.com/uranium24/Fresh-Price/internal/service/ratelimit"
	"github.com/uranium24/Fresh-Price/internal/services/forecast"
	"github.com/uranium24/Fresh-Price/internal/services/market"
	"github.com/uranium24/Fresh-Price/internal/usecase"
	pkgch "github.com/uranium24/Fresh-Price/pkg/clickhouse"
	"github.com/uranium24/Fresh-Price/pkg/config"
	xhttp "github.com/uranium24/Fresh-Price/pkg/http"
	pkgkafka "github.com/uranium24/Fresh-Price/pkg/kafka"
	applogger "github.com/uranium24/Fresh-Price/pkg/logger"
	"github.com/uranium24/Fresh-Price/pkg/metrics"
	"github.com/uranium24/Fresh-Price/pkg/server"
)

const (
	defaultCacheTTL = 10 * time.Minute
	l1CacheTTL      = 30 * time.Second
)

// Backends holds the optional infrastructure clients. A nil field means the
// configuration does not need that backend.
type Backends struct {
	ClickHouse *pkgch.Client
	Influx     *internalrepo.InfluxSeries
	Redis      *cache.RedisCache
}

// DataSources are the loaders the use cases read from, plus health checks
// for whatever backs them.
type DataSources struct {
	Series  repository.SeriesLoader
	Records repository.RecordSource
	Checks  []api.HealthCheck
}

// Services is the use case set shared by the HTTP app and the CLI.
type Services struct {
	Logger      *applogger.Logger
	Forecast    *usecase.ForecastUseCase
	Insights    *usecase.InsightsUseCase
	Commodities *usecase.CommoditiesUseCase
}

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Rotation: applogger.Rotation{
			MaxSizeMB:  cfg.Log.Rotation.MaxSizeMB,
			MaxBackups: cfg.Log.Rotation.MaxBackups,
			MaxAgeDays: cfg.Log.Rotation.MaxAgeDays,
			Compress:   cfg.Log.Rotation.Compress,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// OpenClickHouse connects and creates the tables if needed.
func OpenClickHouse(ctx context.Context, cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.InitSchema(schemaCtx, internalrepo.Schema(client.Database())); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// OpenInflux builds the InfluxDB series store and checks the server answers.
func OpenInflux(ctx context.Context, cfg *config.Config, l *applogger.Logger) (*internalrepo.InfluxSeries, error) {
	s := internalrepo.NewInfluxSeries(internalrepo.InfluxOptions{
		URL:         cfg.Influx.URL,
		Token:       cfg.Influx.Token,
		Org:         cfg.Influx.Org,
		Bucket:      cfg.Influx.Bucket,
		Measurement: cfg.Influx.Measurement,
	}, l)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Health(pingCtx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// OpenKafkaProducer builds a producer from the kafka section.
func OpenKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

func needsClickHouse(cfg *config.Config) bool {
	switch {
	case cfg.Source.Type == string(repository.SourceClickHouse):
		return true
	case cfg.Kafka.Enabled:
		return true
	case cfg.Source.Type == string(repository.SourceInflux):
		return cfg.ClickHouse.Host != ""
	}
	return false
}

// ProvideBackends opens the clients the configuration needs. The cleanup
// closes them in reverse order.
func ProvideBackends(cfg *config.Config, l *applogger.Logger) (*Backends, func(), error) {
	ctx := context.Background()
	b := &Backends{}
	cleanup := func() {
		if b.Redis != nil {
			_ = b.Redis.Close()
		}
		if b.Influx != nil {
			_ = b.Influx.Close()
		}
		if b.ClickHouse != nil {
			if err := b.ClickHouse.Close(); err != nil {
				l.Warn("clickhouse close error", applogger.Error(err))
			}
		}
	}

	if needsClickHouse(cfg) {
		ch, err := OpenClickHouse(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		b.ClickHouse = ch
		l.Info("clickhouse connected", applogger.String("database", ch.Database()))
	}

	if cfg.Source.Type == string(repository.SourceInflux) {
		in, err := OpenInflux(ctx, cfg, l)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		b.Influx = in
		l.Info("influxdb connected", applogger.String("bucket", cfg.Influx.Bucket))
	}

	if cfg.Redis.Enabled {
		rc := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			_ = rc.Close()
			cleanup()
			return nil, nil, err
		}
		b.Redis = rc
		l.Info("redis connected", applogger.String("addr", cfg.Redis.Addr))
	}

	return b, cleanup, nil
}

// ProvideDataSources picks the loaders for source.type. Remote sources are
// fronted by a cache of the loaded inputs.
func ProvideDataSources(cfg *config.Config, b *Backends, l *applogger.Logger) (*DataSources, error) {
	ds := &DataSources{}

	switch repository.NormalizeSource(cfg.Source.Type) {
	case repository.SourceCSV, repository.SourceXLSX:
		files, err := internalrepo.OpenFileDataset(cfg.Source.MonthlyPath, cfg.Source.RecordsPath, l)
		if err != nil {
			return nil, fmt.Errorf("file dataset: %w", err)
		}
		ds.Series, ds.Records = files, files
		return ds, nil

	case repository.SourceClickHouse:
		store := internalrepo.NewClickHouseStore(b.ClickHouse)
		store.SetLogger(l)
		ds.Series, ds.Records = store, store

	case repository.SourceInflux:
		ds.Series = b.Influx
		ds.Checks = append(ds.Checks, api.HealthCheck{Name: "influxdb", Check: b.Influx.Health})
		if b.ClickHouse != nil {
			store := internalrepo.NewClickHouseStore(b.ClickHouse)
			store.SetLogger(l)
			ds.Records = store
		} else {
			files, err := internalrepo.OpenFileDataset("", cfg.Source.RecordsPath, l)
			if err != nil {
				return nil, fmt.Errorf("records file: %w", err)
			}
			ds.Records = files
		}
	}

	if b.ClickHouse != nil {
		ds.Checks = append(ds.Checks, api.HealthCheck{Name: "clickhouse", Check: b.ClickHouse.Health})
	}

	ttl := cfg.Source.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	var c cache.BytesCache = cache.NewTTLCache()
	if b.Redis != nil {
		c = cache.NewLayeredCache(b.Redis, l1CacheTTL)
		ds.Checks = append(ds.Checks, api.HealthCheck{Name: "redis", Check: b.Redis.Ping})
	}
	loader := internalrepo.NewCachedLoader(ds.Series, ds.Records, c, ttl, l)
	ds.Series, ds.Records = loader, loader
	return ds, nil
}

// ProvideForecaster pins the random source when forecast.seed is set.
func ProvideForecaster(cfg *config.Config) *forecast.Forecaster {
	if cfg.Forecast.Seed != 0 {
		return forecast.New(forecast.WithSeed(cfg.Forecast.Seed))
	}
	return forecast.New()
}

func ProvideAggregator() *market.Aggregator {
	return market.NewAggregator()
}

func ProvideForecastUseCase(ds *DataSources, f *forecast.Forecaster, cfg *config.Config) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(ds.Series, f, cfg.Forecast.Horizon)
}

func ProvideInsightsUseCase(ds *DataSources, agg *market.Aggregator, cfg *config.Config) *usecase.InsightsUseCase {
	return usecase.NewInsightsUseCase(ds.Records, agg, cfg.Insights.TopK, cfg.Insights.Timeout)
}

func ProvideCommoditiesUseCase(ds *DataSources) *usecase.CommoditiesUseCase {
	return usecase.NewCommoditiesUseCase(ds.Series)
}

func ProvidePriceHandler(
	l *applogger.Logger,
	f *usecase.ForecastUseCase,
	i *usecase.InsightsUseCase,
	c *usecase.CommoditiesUseCase,
) *api.PriceEchoHandler {
	return api.NewPriceEchoHandler(l, f, i, c)
}

func ProvideHealthHandler(cfg *config.Config, ds *DataSources) *api.HealthHandler {
	return api.NewHealthHandler(string(repository.NormalizeSource(cfg.Source.Type)), ds.Checks...)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideHTTPServer assembles the echo server with all route groups.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	price *api.PriceEchoHandler,
	health *api.HealthHandler,
	limiter *ratelimit.Limiter,
) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(metricsPath, nil),
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, xhttp.WithCORSOrigins(cfg.Server.CORSOrigins))
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithMiddleware(limiter.Middleware()))
	}
	return xhttp.NewServer(l, []xhttp.Handler{health, price}, opts...)
}

// ProvideMetrics creates the Prometheus ingestion recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideIngestConsumer returns nil when kafka is disabled. Otherwise the
// consumer stores every record batch from kafka.topic in ClickHouse.
func ProvideIngestConsumer(cfg *config.Config, b *Backends, m repository.Metrics, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	store := internalrepo.NewClickHouseStore(b.ClickHouse)
	store.SetLogger(l)
	if err := consumer.RegisterHandler(usecase.NewRecordsIngestHandler(cfg.Kafka.Topic, store, m)); err != nil {
		return nil, err
	}
	return consumer, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, l, srv, consumer, limiter)
}

// SeedTargetNames lists the accepted values of `freshctl seed --to`.
var SeedTargetNames = []string{"clickhouse", "influx", "kafka"}

// OpenSeedSource reads the file datasets named in the source section.
func OpenSeedSource(cfg *config.Config, l *applogger.Logger) (*internalrepo.FileDataset, error) {
	if cfg.Source.MonthlyPath == "" && cfg.Source.RecordsPath == "" {
		return nil, fmt.Errorf("source.monthly_path or source.records_path is required to seed")
	}
	for _, p := range []string{cfg.Source.MonthlyPath, cfg.Source.RecordsPath} {
		if ext := strings.ToLower(filepath.Ext(p)); p != "" && ext != ".csv" && ext != ".xlsx" {
			return nil, fmt.Errorf("seed source %s: unsupported extension %q", p, ext)
		}
	}
	return internalrepo.OpenFileDataset(cfg.Source.MonthlyPath, cfg.Source.RecordsPath, l)
}

// OpenSeedTargets connects the named targets. ClickHouse receives both
// tables, InfluxDB the monthly series, Kafka the records.
func OpenSeedTargets(ctx context.Context, cfg *config.Config, l *applogger.Logger, names []string) (usecase.SeedTargets, func(), error) {
	var (
		t       usecase.SeedTargets
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "clickhouse":
			ch, err := OpenClickHouse(ctx, cfg)
			if err != nil {
				cleanup()
				return t, nil, err
			}
			closers = append(closers, func() { _ = ch.Close() })
			store := internalrepo.NewClickHouseStore(ch)
			store.SetLogger(l)
			t.Records = store
			if t.Series == nil {
				t.Series = store
			}
		case "influx":
			in, err := OpenInflux(ctx, cfg, l)
			if err != nil {
				cleanup()
				return t, nil, err
			}
			closers = append(closers, func() { _ = in.Close() })
			t.Series = in
		case "kafka":
			if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
				cleanup()
				return t, nil, fmt.Errorf("kafka.brokers and kafka.topic are required to seed kafka")
			}
			producer, err := OpenKafkaProducer(cfg)
			if err != nil {
				cleanup()
				return t, nil, err
			}
			pub := internalrepo.NewKafkaRecordPublisher(producer, cfg.Kafka.Topic)
			closers = append(closers, func() { _ = pub.Close() })
			t.Publisher = pub
		default:
			cleanup()
			return t, nil, fmt.Errorf("unknown seed target %q, want one of %s", name, strings.Join(SeedTargetNames, ", "))
		}
	}
	return t, cleanup, nil
}
