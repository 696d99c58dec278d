package repository

import (
	"context"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/kafka"
)

// ForecastEvents publishes every issued forecast to a Kafka topic, keyed by
// coin so consumers see per-coin ordering.
type ForecastEvents struct {
	producer *kafka.Producer
	topic    string
}

// NewForecastEvents creates the publisher.
func NewForecastEvents(producer *kafka.Producer, topic string) *ForecastEvents {
	return &ForecastEvents{producer: producer, topic: topic}
}

// Publish emits the forecast as a JSON event.
func (f *ForecastEvents) Publish(ctx context.Context, fc *models.Forecast) error {
	return f.producer.Publish(ctx, f.topic, []byte(fc.Coin), fc)
}

// Close flushes and closes the producer.
func (f *ForecastEvents) Close() error {
	return f.producer.Close()
}
