package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/config"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

const ConsumerGroupMedia = "portfolio-media-worker"

type PortfolioEventHandler func(ctx context.Context, e portfolio.Event) error

func NewPortfolioEventsReader(cfg config.Config) (*kafka.Reader, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        ConsumerGroupMedia,
		Topic:          TopicPortfolioEvents,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	}), nil
}

// Consume fetches messages until ctx is done. A message is committed after it
// was handled, or right away when it cannot be decoded. Handler failures are
// retried a few times and then committed so one bad record cannot stall the
// partition.
func Consume(ctx context.Context, r *kafka.Reader, handle PortfolioEventHandler, log logger.Logger) error {
	const maxAttempts = 3

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		var e portfolio.Event
		if err := json.Unmarshal(m.Value, &e); err != nil || e.Username == "" {
			log.Warn("Skipping malformed portfolio event", zap.Int64("offset", m.Offset), zap.ByteString("value", m.Value))
		} else {
			for attempt := 1; attempt <= maxAttempts; attempt++ {
				err = handle(ctx, e)
				if err == nil {
					break
				}
				log.Error("Failed to handle portfolio event", err,
					zap.String("username", e.Username),
					zap.String("event_type", string(e.Type)),
					zap.Int("attempt", attempt),
				)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(time.Duration(attempt) * time.Second):
				}
			}
		}

		if err := r.CommitMessages(ctx, m); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("commit message: %w", err)
		}
	}
}
