package http

import (
	"github.com/gin-gonic/gin"

	portfolioUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

type RSSHandler struct {
	feedUseCase *portfolioUC.FeedUseCase
	logger      logger.Logger
}

func NewRSSHandler(uc *portfolioUC.FeedUseCase, log logger.Logger) *RSSHandler {
	return &RSSHandler{
		feedUseCase: uc,
		logger:      log,
	}
}

func (h *RSSHandler) GenerateRSS(c *gin.Context) {
	feed, err := h.feedUseCase.Execute(c.Request.Context())
	if err != nil {
		c.Error(apperror.NewInternal("failed to generate RSS feed", err))
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")

	if err := feed.WriteRss(c.Writer); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err)
	}
}
