package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/application/service"
	"github.com/khoahotran/portfolio-onboarding/internal/config"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

const (
	TopicPortfolioEvents = "portfolio.events"
)

type KafkaProducerClient struct {
	PortfolioEventsWriter *kafka.Writer
	logger                logger.Logger
}

var _ service.EventPublisher = (*KafkaProducerClient)(nil)

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'portfolio.events'
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        TopicPortfolioEvents,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{
		PortfolioEventsWriter: writer,
		logger:                log,
	}, nil
}

// PublishPortfolioEvent keys messages by username so one portfolio's events
// stay ordered within a partition.
func (c *KafkaProducerClient) PublishPortfolioEvent(ctx context.Context, e portfolio.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal portfolio event: %w", err)
	}
	err = c.PortfolioEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Username),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to write portfolio event: %w", err)
	}
	c.logger.Debug("Published portfolio event", zap.String("event_type", string(e.Type)), zap.String("username", e.Username))
	return nil
}

func (c *KafkaProducerClient) Close() error {
	if c.PortfolioEventsWriter != nil {
		if err := c.PortfolioEventsWriter.Close(); err != nil {
			return err
		}
	}
	c.logger.Info("Closed Kafka Producers")
	return nil
}

// LogPublisher stands in for Kafka when no brokers are configured.
type LogPublisher struct {
	logger logger.Logger
}

var _ service.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (p *LogPublisher) PublishPortfolioEvent(_ context.Context, e portfolio.Event) error {
	p.logger.Info("Portfolio event (no broker configured)",
		zap.String("event_type", string(e.Type)),
		zap.String("username", e.Username),
		zap.String("portfolio_id", e.PortfolioID.String()),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
