package service

import (
	"context"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
)

type EventPublisher interface {
	PublishPortfolioEvent(ctx context.Context, e portfolio.Event) error
	Close() error
}
