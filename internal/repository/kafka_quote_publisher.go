package repository

import (
	"context"

	"StockScout/internal/domain/models"
	"StockScout/internal/domain/repository"
	pkgkafka "StockScout/pkg/kafka"
)

// KafkaQuotePublisher fans ingested quote batches out on a Kafka topic,
// keyed by symbol so per-symbol ordering is preserved.
type KafkaQuotePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaQuotePublisher creates a Kafka-backed quote publisher.
func NewKafkaQuotePublisher(producer *pkgkafka.Producer, topic string) repository.QuotePublisher {
	return &KafkaQuotePublisher{producer: producer, topic: topic}
}

func (p *KafkaQuotePublisher) PublishQuotes(ctx context.Context, rows []models.QuoteSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(rows))
	for i, r := range rows {
		msgs[i] = pkgkafka.Message{
			Key: []byte(r.Symbol),
			Value: map[string]interface{}{
				"symbol":      r.Symbol,
				"current":     r.Current,
				"high":        r.High,
				"low":         r.Low,
				"open":        r.Open,
				"prev_close":  r.PrevClose,
				"change_abs":  r.ChangeAbs,
				"change_pct":  r.ChangePct,
				"observed_at": r.ObservedAt.Unix(),
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaQuotePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
