package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
)

// TradePublisher publishes matched trades to a Kafka topic for
// downstream consumers (tape recorders, market-data services). It
// implements the matcher's EventListener for trade events but performs
// network writes, so it must sit behind the feed dispatcher's queue.
type TradePublisher struct {
	engine.NopListener

	writer  *kafka.Writer
	timeout time.Duration
	logger  *zap.Logger
}

// NewTradePublisher creates a publisher for the given brokers and topic.
func NewTradePublisher(brokers []string, topic string, timeout time.Duration, logger *zap.Logger) *TradePublisher {
	return &TradePublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		timeout: timeout,
		logger:  logger,
	}
}

// OnTrade publishes the trade. Failures are logged, not propagated —
// the in-process views stay authoritative and the topic is a
// best-effort tape.
func (p *TradePublisher) OnTrade(t domain.Trade) {
	payload, err := json.Marshal(newTradeMessage(t))
	if err != nil {
		p.logger.Error("trade publish marshal failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(t.TradeID),
		Value: payload,
	})
	if err != nil {
		p.logger.Error("trade publish failed",
			zap.String("trade_id", t.TradeID),
			zap.Error(err),
		)
	}
}

// Close closes the underlying writer.
func (p *TradePublisher) Close() error {
	return p.writer.Close()
}
