package portfolio

import (
	"context"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

const feedSize = 20

type FeedUseCase struct {
	repo    portfolio.Repository
	baseURL string
	logger  logger.Logger
	now     func() time.Time
}

func NewFeedUseCase(repo portfolio.Repository, baseURL string, log logger.Logger) *FeedUseCase {
	return &FeedUseCase{repo: repo, baseURL: baseURL, logger: log, now: time.Now}
}

// Execute builds a feed of the most recently published portfolios.
func (uc *FeedUseCase) Execute(ctx context.Context) (*feeds.Feed, error) {
	feed := &feeds.Feed{
		Title:       "Roster - New portfolios",
		Link:        &feeds.Link{Href: uc.baseURL},
		Description: "Creators who just published their portfolio.",
		Created:     uc.now(),
	}

	records, err := uc.repo.List(ctx, feedSize, 0)
	if err != nil {
		uc.logger.Error("Failed to list portfolios for feed", err)
		return nil, err
	}

	items := make([]*feeds.Item, 0, len(records))
	for _, r := range records {
		item := &feeds.Item{
			Id:          r.ID.String(),
			Title:       r.DisplayName(),
			Link:        &feeds.Link{Href: r.URL},
			Description: r.Headline(),
			Created:     r.CreatedAt,
			Updated:     r.UpdatedAt,
		}
		items = append(items, item)
	}
	feed.Items = items

	uc.logger.Debug("Feed generated", zap.Int("item_count", len(items)))
	return feed, nil
}
