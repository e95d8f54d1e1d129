package portfolio

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/application/service"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/username"
	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

type GetPortfolioUseCase struct {
	repo   portfolio.Repository
	logger logger.Logger
}

func NewGetPortfolioUseCase(repo portfolio.Repository, log logger.Logger) *GetPortfolioUseCase {
	return &GetPortfolioUseCase{repo: repo, logger: log}
}

// Execute returns the record and counts the view.
func (uc *GetPortfolioUseCase) Execute(ctx context.Context, rawUsername string) (*portfolio.Record, error) {
	ctx, span := tracer.Start(ctx, "GetPortfolio")
	defer span.End()

	name := username.Normalize(rawUsername)
	if name == "" {
		return nil, apperror.NewValidation(MsgUsernameRequired)
	}

	views, err := uc.repo.IncrementViews(ctx, name)
	if err != nil {
		if errors.Is(err, portfolio.ErrPortfolioNotFound) {
			return nil, notFound(name)
		}
		return nil, apperror.NewInternal("failed to count view", err)
	}

	rec, err := uc.repo.FindByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, portfolio.ErrPortfolioNotFound) {
			return nil, notFound(name)
		}
		return nil, apperror.NewInternal("failed to load portfolio", err)
	}
	rec.Views = views
	return rec, nil
}

type UpdatePortfolioUseCase struct {
	repo      portfolio.Repository
	publisher service.EventPublisher
	logger    logger.Logger
	now       func() time.Time
}

func NewUpdatePortfolioUseCase(repo portfolio.Repository, publisher service.EventPublisher, log logger.Logger) *UpdatePortfolioUseCase {
	return &UpdatePortfolioUseCase{repo: repo, publisher: publisher, logger: log, now: time.Now}
}

type UpdatePortfolioInput struct {
	Username      string
	PortfolioData *onboarding.Portfolio
}

type UpdatePortfolioOutput struct {
	Username  string
	URL       string
	UpdatedAt time.Time
}

func (uc *UpdatePortfolioUseCase) Execute(ctx context.Context, input UpdatePortfolioInput) (*UpdatePortfolioOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdatePortfolio")
	defer span.End()

	name := username.Normalize(input.Username)
	if name == "" || input.PortfolioData == nil {
		return nil, apperror.NewValidation(MsgDataRequired)
	}

	rec, err := uc.repo.FindByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, portfolio.ErrPortfolioNotFound) {
			return nil, notFound(name)
		}
		return nil, apperror.NewInternal("failed to load portfolio", err)
	}

	now := uc.now().UTC()
	rec.PortfolioData = onboarding.SettleAll(onboarding.FromRecord(*input.PortfolioData))
	rec.UpdatedAt = now
	rec.Refresh(now)

	if err := uc.repo.Update(ctx, rec); err != nil {
		if errors.Is(err, portfolio.ErrPortfolioNotFound) {
			return nil, notFound(name)
		}
		uc.logger.Error("Failed to update portfolio", err, zap.String("username", name))
		return nil, apperror.NewInternal("failed to update portfolio", err)
	}

	publishEvent(ctx, uc.publisher, uc.logger, portfolio.EventUpdated, rec)
	return &UpdatePortfolioOutput{Username: rec.Username, URL: rec.URL, UpdatedAt: rec.UpdatedAt}, nil
}

type DeletePortfolioUseCase struct {
	repo      portfolio.Repository
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewDeletePortfolioUseCase(repo portfolio.Repository, publisher service.EventPublisher, log logger.Logger) *DeletePortfolioUseCase {
	return &DeletePortfolioUseCase{repo: repo, publisher: publisher, logger: log}
}

func (uc *DeletePortfolioUseCase) Execute(ctx context.Context, rawUsername string) error {
	ctx, span := tracer.Start(ctx, "DeletePortfolio")
	defer span.End()

	name := username.Normalize(rawUsername)
	if name == "" {
		return apperror.NewValidation(MsgUsernameRequired)
	}

	rec, err := uc.repo.FindByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, portfolio.ErrPortfolioNotFound) {
			return notFound(name)
		}
		return apperror.NewInternal("failed to load portfolio", err)
	}

	if err := uc.repo.Delete(ctx, name); err != nil {
		if errors.Is(err, portfolio.ErrPortfolioNotFound) {
			return notFound(name)
		}
		uc.logger.Error("Failed to delete portfolio", err, zap.String("username", name))
		return apperror.NewInternal("failed to delete portfolio", err)
	}

	uc.logger.Info("Portfolio deleted", zap.String("username", name))
	publishEvent(ctx, uc.publisher, uc.logger, portfolio.EventDeleted, rec)
	return nil
}

type ListPortfoliosUseCase struct {
	repo   portfolio.Repository
	logger logger.Logger
}

func NewListPortfoliosUseCase(repo portfolio.Repository, log logger.Logger) *ListPortfoliosUseCase {
	return &ListPortfoliosUseCase{repo: repo, logger: log}
}

type ListPortfoliosInput struct {
	Page  int
	Limit int
}

type ListPortfoliosOutput struct {
	Portfolios []*portfolio.Record
	Total      int
	Page       int
	Limit      int
}

func (uc *ListPortfoliosUseCase) Execute(ctx context.Context, input ListPortfoliosInput) (*ListPortfoliosOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 || input.Limit > 100 {
		input.Limit = 20
	}

	records, err := uc.repo.List(ctx, input.Limit, (input.Page-1)*input.Limit)
	if err != nil {
		return nil, apperror.NewInternal("failed to list portfolios", err)
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, apperror.NewInternal("failed to count portfolios", err)
	}
	return &ListPortfoliosOutput{Portfolios: records, Total: total, Page: input.Page, Limit: input.Limit}, nil
}
