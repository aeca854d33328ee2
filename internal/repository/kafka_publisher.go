package repository

import (
	"context"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	domrepo "github.com/uranium24/Fresh-Price/internal/domain/repository"
	pkgkafka "github.com/uranium24/Fresh-Price/pkg/kafka"
	"github.com/uranium24/Fresh-Price/pkg/util"
)

const publishChunkSize = 500

// KafkaRecordPublisher sends market records to the ingestion topic, one JSON
// array of records per message, keyed by commodity.
type KafkaRecordPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaRecordPublisher(producer *pkgkafka.Producer, topic string) domrepo.RecordPublisher {
	return &KafkaRecordPublisher{producer: producer, topic: topic}
}

func (p *KafkaRecordPublisher) PublishRecords(ctx context.Context, records []models.MarketRecord) error {
	msgs := RecordMessages(records, publishChunkSize)
	if len(msgs) == 0 {
		return nil
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaRecordPublisher) Close() error {
	return p.producer.Close()
}

// RecordMessages groups records by commodity and splits each group into
// messages of at most chunk records. Group order follows first appearance.
func RecordMessages(records []models.MarketRecord, chunk int) []pkgkafka.Message {
	if chunk <= 0 {
		chunk = publishChunkSize
	}
	var order []string
	groups := make(map[string][]models.MarketRecord)
	for _, r := range records {
		key := util.NormalizeKey(r.Commodity)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	var msgs []pkgkafka.Message
	for _, key := range order {
		g := groups[key]
		for start := 0; start < len(g); start += chunk {
			end := start + chunk
			if end > len(g) {
				end = len(g)
			}
			msgs = append(msgs, pkgkafka.Message{Key: []byte(key), Value: g[start:end]})
		}
	}
	return msgs
}
