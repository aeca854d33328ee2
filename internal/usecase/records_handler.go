package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	domrepo "github.com/uranium24/Fresh-Price/internal/domain/repository"
	pkgkafka "github.com/uranium24/Fresh-Price/pkg/kafka"
)

// RecordsIngestHandler consumes batches of market records from Kafka and
// writes them to the record store.
type RecordsIngestHandler struct {
	topic   string
	store   domrepo.RecordStore
	metrics domrepo.Metrics
}

func NewRecordsIngestHandler(topic string, store domrepo.RecordStore, metrics domrepo.Metrics) *RecordsIngestHandler {
	return &RecordsIngestHandler{topic: topic, store: store, metrics: metrics}
}

func (h *RecordsIngestHandler) Topic() string { return h.topic }

// Handle expects a JSON array of MarketRecord. Rows missing a market,
// commodity or valid month are dropped.
func (h *RecordsIngestHandler) Handle(ctx context.Context, b []byte) error {
	var batch []models.MarketRecord
	if err := json.Unmarshal(b, &batch); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode records: %v: %w", err, pkgkafka.ErrPermanent)
	}

	valid := batch[:0]
	for _, r := range batch {
		if r.MarketID == "" || r.Commodity == "" || r.Month < time.January || r.Month > time.December {
			h.metrics.RecordError("consumer_invalid_record")
			continue
		}
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return nil
	}

	start := time.Now()
	err := h.store.StoreBatch(ctx, valid)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	for _, r := range valid {
		h.metrics.RecordMessageSent("clickhouse", r.Commodity)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*RecordsIngestHandler)(nil)
