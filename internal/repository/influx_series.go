package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	applogger "github.com/uranium24/Fresh-Price/pkg/logger"
	"github.com/uranium24/Fresh-Price/pkg/util"
)

// InfluxSeries reads and writes monthly price series in InfluxDB 2.x.
// Each point is tagged with the display name and the normalized key and
// carries a single "value" field.
type InfluxSeries struct {
	client      influxdb2.Client
	query       api.QueryAPI
	write       api.WriteAPIBlocking
	bucket      string
	measurement string
	l           *applogger.Logger
}

type InfluxOptions struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

func NewInfluxSeries(opts InfluxOptions, l *applogger.Logger) *InfluxSeries {
	client := influxdb2.NewClient(opts.URL, opts.Token)
	if opts.Measurement == "" {
		opts.Measurement = "monthly_price"
	}
	return &InfluxSeries{
		client:      client,
		query:       client.QueryAPI(opts.Org),
		write:       client.WriteAPIBlocking(opts.Org, opts.Bucket),
		bucket:      opts.Bucket,
		measurement: opts.Measurement,
		l:           l,
	}
}

func (s *InfluxSeries) CommoditySeries(ctx context.Context, commodity string) ([]models.ObservedPoint, error) {
	start := time.Now()
	result, err := s.query.Query(ctx, seriesFlux(s.bucket, s.measurement, util.NormalizeKey(commodity)))
	if err != nil {
		return nil, fmt.Errorf("influx query failed: %w", err)
	}
	defer result.Close()

	byMonth := make(map[time.Time]float64)
	for result.Next() {
		rec := result.Record()
		v, ok := rec.Value().(float64)
		if !ok {
			continue
		}
		byMonth[util.MonthStart(rec.Time())] = v
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("error reading influx results: %w", result.Err())
	}
	if len(byMonth) == 0 {
		return nil, models.NewNotFoundError("series", commodity)
	}

	out := make([]models.ObservedPoint, 0, len(byMonth))
	for t, v := range byMonth {
		out = append(out, models.ObservedPoint{Timestamp: t, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })

	if s.l != nil {
		s.l.Debug("influx series ok",
			applogger.String("commodity", commodity),
			applogger.Int("points", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *InfluxSeries) Commodities(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf(`
		import "influxdata/influxdb/schema"
		schema.tagValues(bucket: %s, tag: "commodity", predicate: (r) => r._measurement == %s, start: 0)
	`, fluxString(s.bucket), fluxString(s.measurement))
	result, err := s.query.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("influx tag values failed: %w", err)
	}
	defer result.Close()

	var out []string
	for result.Next() {
		if name, ok := result.Record().Value().(string); ok {
			out = append(out, name)
		}
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("error reading influx results: %w", result.Err())
	}
	sort.Strings(out)
	return out, nil
}

func (s *InfluxSeries) StoreSeries(ctx context.Context, commodity string, points []models.ObservedPoint) error {
	key := util.NormalizeKey(commodity)
	batch := make([]*write.Point, 0, len(points))
	for _, p := range points {
		batch = append(batch, influxdb2.NewPoint(
			s.measurement,
			map[string]string{"commodity": commodity, "commodity_key": key},
			map[string]interface{}{"value": p.Value},
			util.MonthStart(p.Timestamp),
		))
	}
	if err := s.write.WritePoint(ctx, batch...); err != nil {
		return fmt.Errorf("influx write %s: %w", commodity, err)
	}
	return nil
}

// Health fails unless the server answers /ping.
func (s *InfluxSeries) Health(ctx context.Context) error {
	ok, err := s.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influx ping: %w", err)
	}
	if !ok {
		return fmt.Errorf("influx ping: server not ready")
	}
	return nil
}

func (s *InfluxSeries) Close() error {
	s.client.Close()
	return nil
}

func seriesFlux(bucket, measurement, key string) string {
	return fmt.Sprintf(`
		from(bucket: %s)
		  |> range(start: 0)
		  |> filter(fn: (r) => r._measurement == %s)
		  |> filter(fn: (r) => r.commodity_key == %s)
		  |> filter(fn: (r) => r._field == "value")
		  |> sort(columns: ["_time"], desc: false)
	`, fluxString(bucket), fluxString(measurement), fluxString(key))
}

// fluxString quotes s as a Flux string literal.
func fluxString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "${", `\${`)
	return `"` + r.Replace(s) + `"`
}
