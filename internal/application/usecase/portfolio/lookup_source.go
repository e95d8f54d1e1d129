package portfolio

import (
	"context"
	"errors"
	"strings"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

type LookupSourceUseCase struct {
	sources portfolio.SourceRepository
	logger  logger.Logger
}

func NewLookupSourceUseCase(sources portfolio.SourceRepository, log logger.Logger) *LookupSourceUseCase {
	return &LookupSourceUseCase{sources: sources, logger: log}
}

func (uc *LookupSourceUseCase) Execute(ctx context.Context, url string) (*portfolio.SourcePortfolio, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperror.NewValidation("Portfolio URL is required")
	}
	src, err := uc.sources.FindByURL(ctx, url)
	if err != nil {
		if errors.Is(err, portfolio.ErrSourceNotFound) {
			return nil, apperror.NewNotFound("Portfolio", url)
		}
		uc.logger.Error("Failed to look up source portfolio", err)
		return nil, apperror.NewInternal("failed to look up source portfolio", err)
	}
	return src, nil
}
