package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	pkgch "github.com/uranium24/Fresh-Price/pkg/clickhouse"
	applogger "github.com/uranium24/Fresh-Price/pkg/logger"
	"github.com/uranium24/Fresh-Price/pkg/util"
)

const insertChunkSize = 2000

// ClickHouseStore keeps both datasets in ClickHouse. It serves as
// SeriesLoader, RecordSource and RecordStore.
type ClickHouseStore struct {
	db      *sql.DB
	monthly string
	records string
	l       *applogger.Logger
}

func NewClickHouseStore(ch *pkgch.Client) *ClickHouseStore {
	db := ch.Database()
	return &ClickHouseStore{
		db:      ch.DB(),
		monthly: db + ".monthly_prices",
		records: db + ".market_records",
	}
}

// SetLogger injects a structured logger.
func (s *ClickHouseStore) SetLogger(l *applogger.Logger) { s.l = l }

// Schema returns the DDL for database.
func Schema(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.monthly_prices (
            commodity     String,
            commodity_key LowCardinality(String),
            month         Date,
            value         Float64,
            updated_at    DateTime DEFAULT now()
        ) ENGINE = ReplacingMergeTree(updated_at)
        ORDER BY (commodity_key, month)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.market_records (
            apmc        String,
            commodity   LowCardinality(String),
            year        UInt16,
            month       UInt8,
            arrivals    Float64,
            min_price   Float64,
            max_price   Float64,
            modal_price Float64,
            district    String,
            state       String,
            ingested_at DateTime DEFAULT now()
        ) ENGINE = MergeTree
        ORDER BY (commodity, apmc, year, month)`, database),
	}
}

func (s *ClickHouseStore) CommoditySeries(ctx context.Context, commodity string) ([]models.ObservedPoint, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT month, value
        FROM %s FINAL
        WHERE commodity_key = ?
        ORDER BY month ASC
    `, s.monthly)
	rows, err := s.db.QueryContext(ctx, q, util.NormalizeKey(commodity))
	if err != nil {
		s.logError("clickhouse series query error", commodity, err)
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	out := make([]models.ObservedPoint, 0, 128)
	for rows.Next() {
		var p models.ObservedPoint
		if err := rows.Scan(&p.Timestamp, &p.Value); err != nil {
			s.logError("clickhouse series scan error", commodity, err)
			return nil, fmt.Errorf("scan series point: %w", err)
		}
		p.Timestamp = util.MonthStart(p.Timestamp)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse series rows error", commodity, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(out) == 0 {
		return nil, models.NewNotFoundError("series", commodity)
	}
	s.logOK("clickhouse series ok", commodity, len(out), start)
	return out, nil
}

func (s *ClickHouseStore) Commodities(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf(`
        SELECT any(commodity) AS name
        FROM %s
        GROUP BY commodity_key
        ORDER BY name ASC
    `, s.monthly)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query commodities: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan commodity: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Records prefilters with a case-insensitive substring match, which is at
// least as wide as the analytics predicate.
func (s *ClickHouseStore) Records(ctx context.Context, commodity string) ([]models.MarketRecord, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT apmc, commodity, year, month, arrivals, min_price, max_price, modal_price, district, state
        FROM %s
        WHERE positionCaseInsensitiveUTF8(commodity, ?) > 0
    `, s.records)
	rows, err := s.db.QueryContext(ctx, q, strings.TrimSpace(commodity))
	if err != nil {
		s.logError("clickhouse records query error", commodity, err)
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := make([]models.MarketRecord, 0, 1024)
	for rows.Next() {
		var (
			r     models.MarketRecord
			year  uint16
			month uint8
		)
		if err := rows.Scan(&r.MarketID, &r.Commodity, &year, &month, &r.Arrivals,
			&r.MinPrice, &r.MaxPrice, &r.ModalPrice, &r.District, &r.State); err != nil {
			s.logError("clickhouse records scan error", commodity, err)
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Year = int(year)
		r.Month = time.Month(month)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse records rows error", commodity, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.logOK("clickhouse records ok", commodity, len(out), start)
	return out, nil
}

func (s *ClickHouseStore) StoreBatch(ctx context.Context, records []models.MarketRecord) error {
	cols := []string{"apmc", "commodity", "year", "month", "arrivals", "min_price", "max_price", "modal_price", "district", "state"}
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		if r.MarketID == "" || r.Commodity == "" || r.Month < time.January || r.Month > time.December {
			continue
		}
		rows = append(rows, []interface{}{
			r.MarketID, r.Commodity, uint16(r.Year), uint8(r.Month), r.Arrivals,
			r.MinPrice, r.MaxPrice, r.ModalPrice, r.District, r.State,
		})
	}
	return s.insertChunked(ctx, s.records, cols, rows)
}

func (s *ClickHouseStore) StoreSeries(ctx context.Context, commodity string, points []models.ObservedPoint) error {
	cols := []string{"commodity", "commodity_key", "month", "value"}
	key := util.NormalizeKey(commodity)
	rows := make([][]interface{}, 0, len(points))
	for _, p := range points {
		rows = append(rows, []interface{}{commodity, key, util.MonthStart(p.Timestamp), p.Value})
	}
	return s.insertChunked(ctx, s.monthly, cols, rows)
}

func (s *ClickHouseStore) insertChunked(ctx context.Context, table string, cols []string, rows [][]interface{}) error {
	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		q, args := buildInsert(table, cols, rows[start:end])
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse insert error",
					applogger.String("table", table),
					applogger.Int("rows", end-start),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}

// buildInsert renders a multi-row VALUES insert with positional placeholders.
func buildInsert(table string, cols []string, rows [][]interface{}) (string, []interface{}) {
	ph := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	values := make([]string, len(rows))
	args := make([]interface{}, 0, len(rows)*len(cols))
	for i, r := range rows {
		values[i] = ph
		args = append(args, r...)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(cols, ", "), strings.Join(values, ", "))
	return q, args
}

func (s *ClickHouseStore) logError(msg, commodity string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg, applogger.String("commodity", commodity), applogger.Error(err))
}

func (s *ClickHouseStore) logOK(msg, commodity string, n int, start time.Time) {
	if s.l == nil {
		return
	}
	s.l.Debug(msg,
		applogger.String("commodity", commodity),
		applogger.Int("rows", n),
		applogger.Duration("duration_ms", time.Since(start)),
	)
}
