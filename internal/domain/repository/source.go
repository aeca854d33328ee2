package repository

import "strings"

// SourceType names the backend the loaders read from.
type SourceType string

const (
	SourceCSV        SourceType = "csv"
	SourceXLSX       SourceType = "xlsx"
	SourceClickHouse SourceType = "clickhouse"
	SourceInflux     SourceType = "influx"
)

// IsValidSource returns true if s is a supported source type.
func IsValidSource(s SourceType) bool {
	switch s {
	case SourceCSV, SourceXLSX, SourceClickHouse, SourceInflux:
		return true
	default:
		return false
	}
}

// DefaultSource returns the default source type.
func DefaultSource() SourceType { return SourceCSV }

// NormalizeSource converts a raw string to a valid source type (or default).
func NormalizeSource(s string) SourceType {
	st := SourceType(strings.ToLower(strings.TrimSpace(s)))
	if IsValidSource(st) {
		return st
	}
	return DefaultSource()
}
