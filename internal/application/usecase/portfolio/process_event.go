package portfolio

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/application/service"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

const (
	ogTransformation        = "c_fill,g_auto,w_1200,h_630"
	thumbnailTransformation = "c_limit,w_400"
)

// AvatarPublicID is where a portfolio's avatar lives in the media store.
func AvatarPublicID(username string) string {
	return fmt.Sprintf("portfolios/%s/avatar", username)
}

type ProcessPortfolioEventUseCase struct {
	repo     portfolio.Repository
	uploader service.Uploader
	logger   logger.Logger
}

func NewProcessPortfolioEventUseCase(repo portfolio.Repository, up service.Uploader, log logger.Logger) *ProcessPortfolioEventUseCase {
	return &ProcessPortfolioEventUseCase{repo: repo, uploader: up, logger: log}
}

func (uc *ProcessPortfolioEventUseCase) Execute(ctx context.Context, e portfolio.Event) error {
	uc.logger.Info("Worker processing portfolio event", zap.String("event_type", string(e.Type)), zap.String("username", e.Username))

	switch e.Type {
	case portfolio.EventDeleted:
		publicID := e.AvatarPublicID
		if publicID == "" {
			publicID = AvatarPublicID(e.Username)
		}
		if err := uc.uploader.Delete(ctx, publicID); err != nil {
			return fmt.Errorf("delete avatar failed: %w", err)
		}
		return nil
	case portfolio.EventGenerated, portfolio.EventUpdated:
		return uc.renderAvatar(ctx, e)
	default:
		uc.logger.Warn("Unknown portfolio event type, skip", zap.String("event_type", string(e.Type)))
		return nil
	}
}

func (uc *ProcessPortfolioEventUseCase) renderAvatar(ctx context.Context, e portfolio.Event) error {
	rec, err := uc.repo.FindByUsername(ctx, e.Username)
	if err != nil {
		if errors.Is(err, portfolio.ErrPortfolioNotFound) {
			uc.logger.Warn("Portfolio not found, skip", zap.String("username", e.Username))
			return nil
		}
		return fmt.Errorf("get portfolio failed: %w", err)
	}
	if rec.ID != e.PortfolioID {
		uc.logger.Info("Event belongs to an older portfolio, skip", zap.String("username", e.Username))
		return nil
	}

	imageURL := rec.ProfileImageURL()
	if imageURL == "" {
		uc.logger.Info("Portfolio has no profile image, skip", zap.String("username", e.Username))
		return nil
	}

	publicID := AvatarPublicID(rec.Username)
	if _, err := uc.uploader.UploadRemote(ctx, imageURL, "", publicID); err != nil {
		return fmt.Errorf("upload avatar failed: %w", err)
	}

	ogImageURL, err := uc.uploader.TransformURL(publicID, ogTransformation)
	if err != nil {
		return fmt.Errorf("build OG image URL failed: %w", err)
	}
	thumbURL, err := uc.uploader.TransformURL(publicID, thumbnailTransformation)
	if err != nil {
		return fmt.Errorf("build thumbnail URL failed: %w", err)
	}

	rec.MarkRenditions(publicID, ogImageURL, thumbURL)
	if err := uc.repo.Update(ctx, rec); err != nil {
		return fmt.Errorf("update portfolio %s with renditions failed: %w", rec.Username, err)
	}

	uc.logger.Info("Updated portfolio with OG image and thumbnail", zap.String("username", rec.Username))
	return nil
}
