package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	applogger "github.com/uranium24/Fresh-Price/pkg/logger"
	"github.com/uranium24/Fresh-Price/pkg/util"
)

// FileDataset serves both datasets from local CSV or XLSX files. Files are
// read once at construction and the parsed data is read-only afterwards.
type FileDataset struct {
	series  map[string][]models.ObservedPoint // keyed by normalized name
	names   []string
	records []models.MarketRecord
}

// OpenFileDataset reads the monthly price table and the market records table.
// The format is picked from the file extension (.csv or .xlsx). An empty path
// leaves that table empty.
func OpenFileDataset(monthlyPath, recordsPath string, l *applogger.Logger) (*FileDataset, error) {
	start := time.Now()
	var (
		series             = map[string][]models.ObservedPoint{}
		names              []string
		records            []models.MarketRecord
		mskipped, rskipped int
	)

	if monthlyPath != "" {
		mrows, err := readRows(monthlyPath)
		if err != nil {
			return nil, fmt.Errorf("read monthly table: %w", err)
		}
		series, names, mskipped, err = ParseMonthlyTable(mrows)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", monthlyPath, err)
		}
	}

	if recordsPath != "" {
		rrows, err := readRows(recordsPath)
		if err != nil {
			return nil, fmt.Errorf("read records table: %w", err)
		}
		records, rskipped, err = ParseRecordTable(rrows)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", recordsPath, err)
		}
	}

	if l != nil {
		l.Info("file dataset loaded",
			applogger.String("monthly_path", monthlyPath),
			applogger.String("records_path", recordsPath),
			applogger.Int("commodities", len(names)),
			applogger.Int("records", len(records)),
			applogger.Int("skipped_cells", mskipped),
			applogger.Int("skipped_rows", rskipped),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return &FileDataset{series: series, names: names, records: records}, nil
}

func (d *FileDataset) CommoditySeries(_ context.Context, commodity string) ([]models.ObservedPoint, error) {
	pts, ok := d.series[util.NormalizeKey(commodity)]
	if !ok {
		return nil, models.NewNotFoundError("series", commodity)
	}
	out := make([]models.ObservedPoint, len(pts))
	copy(out, pts)
	return out, nil
}

func (d *FileDataset) Commodities(_ context.Context) ([]string, error) {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out, nil
}

// Records returns the whole table. Callers must not modify it.
func (d *FileDataset) Records(_ context.Context, _ string) ([]models.MarketRecord, error) {
	return d.records, nil
}

// AllSeries returns every series keyed by display name, for seeding other backends.
func (d *FileDataset) AllSeries() map[string][]models.ObservedPoint {
	out := make(map[string][]models.ObservedPoint, len(d.names))
	for _, name := range d.names {
		out[name] = d.series[util.NormalizeKey(name)]
	}
	return out
}

func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return readCSV(f)
	default:
		return nil, fmt.Errorf("unsupported dataset extension %q", filepath.Ext(path))
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

// readXLSX returns the rows of the first non-empty sheet.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, fmt.Errorf("workbook %s has no rows", path)
}

// monthColumn is a header cell that parsed as a month. Kept in header order
// so that a repeated month resolves to its right-most column.
type monthColumn struct {
	col   int
	month time.Time
}

// ParseMonthlyTable parses the wide layout: a "Commodities" column followed
// by one column per month labelled like "Jan-14". Columns that are not month
// labels are ignored, as are blank or non-numeric cells. Duplicate months keep
// the last value. Returns the series keyed by normalized name, the sorted
// display names and the number of skipped cells.
func ParseMonthlyTable(rows [][]string) (map[string][]models.ObservedPoint, []string, int, error) {
	if len(rows) == 0 {
		return nil, nil, 0, fmt.Errorf("empty table")
	}
	header := rows[0]
	nameCol := -1
	var months []monthColumn
	for i, h := range header {
		key := util.NormalizeKey(strings.TrimPrefix(h, "\ufeff"))
		if key == "commodities" || key == "commodity" {
			nameCol = i
			continue
		}
		if t, ok := util.ParseMonthLabel(h); ok {
			months = append(months, monthColumn{col: i, month: t})
		}
	}
	if nameCol < 0 {
		return nil, nil, 0, fmt.Errorf("missing Commodities column")
	}
	if len(months) == 0 {
		return nil, nil, 0, fmt.Errorf("no month columns in header")
	}

	skipped := 0
	byMonth := make(map[string]map[time.Time]float64)
	display := make(map[string]string)
	for _, row := range rows[1:] {
		if nameCol >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameCol])
		if name == "" {
			continue
		}
		key := util.NormalizeKey(name)
		if _, ok := display[key]; !ok {
			display[key] = name
			byMonth[key] = make(map[time.Time]float64)
		}
		for _, mc := range months {
			if mc.col >= len(row) {
				skipped++
				continue
			}
			v, ok := util.ParseNumber(row[mc.col])
			if !ok || v < 0 {
				skipped++
				continue
			}
			byMonth[key][mc.month] = v
		}
	}

	series := make(map[string][]models.ObservedPoint, len(byMonth))
	names := make([]string, 0, len(byMonth))
	for key, vals := range byMonth {
		if len(vals) == 0 {
			continue
		}
		pts := make([]models.ObservedPoint, 0, len(vals))
		for t, v := range vals {
			pts = append(pts, models.ObservedPoint{Timestamp: t, Value: v})
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].Timestamp.Before(pts[j].Timestamp) })
		series[key] = pts
		names = append(names, display[key])
	}
	sort.Strings(names)
	return series, names, skipped, nil
}

var recordColumns = map[string][]string{
	"apmc":      {"apmc", "market", "market_id"},
	"commodity": {"commodity"},
	"year":      {"year"},
	"month":     {"month"},
	"arrivals":  {"arrivals_in_qtl", "arrivals"},
	"min":       {"min_price"},
	"max":       {"max_price"},
	"modal":     {"modal_price"},
	"date":      {"date"},
	"district":  {"district_name", "district"},
	"state":     {"state_name", "state"},
}

// ParseRecordTable parses the transactional APMC table. Rows without a
// market, commodity, modal price or a resolvable year and month are skipped
// and counted.
func ParseRecordTable(rows [][]string) ([]models.MarketRecord, int, error) {
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("empty table")
	}
	idx := make(map[string]int)
	for i, h := range rows[0] {
		key := util.NormalizeKey(strings.TrimPrefix(h, "\ufeff"))
		for field, aliases := range recordColumns {
			if _, seen := idx[field]; seen {
				continue
			}
			for _, a := range aliases {
				if key == a {
					idx[field] = i
				}
			}
		}
	}
	for _, required := range []string{"apmc", "commodity", "modal"} {
		if _, ok := idx[required]; !ok {
			return nil, 0, fmt.Errorf("missing %s column", required)
		}
	}

	cell := func(row []string, field string) string {
		i, ok := idx[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]models.MarketRecord, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		r := models.MarketRecord{
			MarketID:  cell(row, "apmc"),
			Commodity: cell(row, "commodity"),
			District:  cell(row, "district"),
			State:     cell(row, "state"),
		}
		modal, ok := util.ParseNumber(cell(row, "modal"))
		if r.MarketID == "" || r.Commodity == "" || !ok {
			skipped++
			continue
		}
		r.ModalPrice = modal
		r.MinPrice, _ = util.ParseNumber(cell(row, "min"))
		r.MaxPrice, _ = util.ParseNumber(cell(row, "max"))
		r.Arrivals, _ = util.ParseNumber(cell(row, "arrivals"))

		r.Year = util.ParseIntDefault(cell(row, "year"), 0)
		r.Month, _ = util.ParseMonth(cell(row, "month"))
		if r.Year == 0 || r.Month == 0 {
			if t, ok := util.ParseMonthLabel(cell(row, "date")); ok {
				if r.Year == 0 {
					r.Year = t.Year()
				}
				if r.Month == 0 {
					r.Month = t.Month()
				}
			}
		}
		if r.Year == 0 || r.Month == 0 {
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, skipped, nil
}
