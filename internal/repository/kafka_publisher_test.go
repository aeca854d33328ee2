package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

func TestRecordMessagesGroupsAndChunks(t *testing.T) {
	records := []models.MarketRecord{
		{MarketID: "A", Commodity: "Wheat"},
		{MarketID: "B", Commodity: "Onion"},
		{MarketID: "C", Commodity: "wheat "},
		{MarketID: "D", Commodity: "Wheat"},
	}
	msgs := RecordMessages(records, 2)
	require.Len(t, msgs, 3)

	assert.Equal(t, "wheat", string(msgs[0].Key))
	assert.Len(t, msgs[0].Value, 2)
	assert.Equal(t, "wheat", string(msgs[1].Key))
	assert.Equal(t, "onion", string(msgs[2].Key))

	assert.Empty(t, RecordMessages(nil, 10))
}
