// Package market reduces transactional APMC records into per-commodity views.
// Every view filters with the same commodity predicate, so results for one
// query are always computed over the same record set.
package market

import (
	"strings"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

// Matches reports whether a record's commodity satisfies query: an exact
// case-insensitive match or a case-insensitive substring containment.
func Matches(recordCommodity, query string) bool {
	c := strings.ToLower(strings.TrimSpace(recordCommodity))
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return c == q || strings.Contains(c, q)
}

// Filter returns the records matching commodity in input order.
func Filter(records []models.MarketRecord, commodity string) ([]models.MarketRecord, error) {
	if strings.TrimSpace(commodity) == "" {
		return nil, models.NewValidationError("commodity", "must not be blank")
	}
	out := make([]models.MarketRecord, 0, len(records)/4)
	for _, r := range records {
		if Matches(r.Commodity, commodity) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, models.NewNotFoundError("records", commodity)
	}
	return out, nil
}
