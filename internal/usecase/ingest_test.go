package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	pkgkafka "github.com/uranium24/Fresh-Price/pkg/kafka"
)

func TestRecordsIngestHandlerStoresValidRows(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMetrics{}
	h := NewRecordsIngestHandler("market-records", store, m)
	assert.Equal(t, "market-records", h.Topic())

	batch := []models.MarketRecord{
		{MarketID: "Pune", Commodity: "Wheat", Year: 2015, Month: time.April, ModalPrice: 1500},
		{MarketID: "", Commodity: "Wheat", Year: 2015, Month: time.April},
		{MarketID: "Latur", Commodity: "Wheat", Year: 2015, Month: 13},
	}
	b, err := json.Marshal(batch)
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), b))
	require.Len(t, store.stored, 1)
	assert.Equal(t, "Pune", store.stored[0].MarketID)
	assert.Equal(t, 1, m.sent)
	assert.Equal(t, 2, m.errors["consumer_invalid_record"])
}

func TestRecordsIngestHandlerErrors(t *testing.T) {
	m := &fakeMetrics{}
	h := NewRecordsIngestHandler("t", &fakeStore{}, m)
	err := h.Handle(context.Background(), []byte("{not json"))
	assert.ErrorIs(t, err, pkgkafka.ErrPermanent)

	boom := errors.New("insert failed")
	h = NewRecordsIngestHandler("t", &fakeStore{err: boom}, m)
	err = h.Handle(context.Background(), []byte(`[{"apmc":"A","commodity":"Wheat","year":2015,"month":4}]`))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.errors["consumer_store"])
}
