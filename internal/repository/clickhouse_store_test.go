package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInsert(t *testing.T) {
	q, args := buildInsert("fp.market_records", []string{"apmc", "modal_price"}, [][]interface{}{
		{"Pune", 1500.0},
		{"Latur", 1450.0},
	})
	assert.Equal(t, "INSERT INTO fp.market_records (apmc, modal_price) VALUES (?, ?), (?, ?)", q)
	assert.Equal(t, []interface{}{"Pune", 1500.0, "Latur", 1450.0}, args)
}

func TestSchemaQualifiesDatabase(t *testing.T) {
	stmts := Schema("freshprice")
	assert.Len(t, stmts, 3)
	assert.True(t, strings.Contains(stmts[1], "freshprice.monthly_prices"))
	assert.True(t, strings.Contains(stmts[2], "freshprice.market_records"))
}
