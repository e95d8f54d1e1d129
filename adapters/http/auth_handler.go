package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/application/usecase/auth"
	portfolioUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

// AuthHandler serves the owner's login and the moderation endpoints behind it.
type AuthHandler struct {
	loginUseCase  *auth.LoginUseCase
	listUseCase   *portfolioUC.ListPortfoliosUseCase
	deleteUseCase *portfolioUC.DeletePortfolioUseCase
	logger        logger.Logger
}

func NewAuthHandler(
	loginUC *auth.LoginUseCase,
	listUC *portfolioUC.ListPortfoliosUseCase,
	deleteUC *portfolioUC.DeletePortfolioUseCase,
	log logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		loginUseCase:  loginUC,
		listUseCase:   listUC,
		deleteUseCase: deleteUC,
		logger:        log,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": output.AccessToken,
	})
}

func (h *AuthHandler) ListPortfolios(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	out, err := h.listUseCase.Execute(c.Request.Context(), portfolioUC.ListPortfoliosInput{Page: page, Limit: limit})
	if err != nil {
		c.Error(err)
		return
	}

	items := make([]PortfolioSummaryDTO, len(out.Portfolios))
	for i, r := range out.Portfolios {
		items[i] = ToPortfolioSummaryDTO(r)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"total":   out.Total,
		"page":    out.Page,
		"limit":   out.Limit,
	})
}

func (h *AuthHandler) DeletePortfolio(c *gin.Context) {
	name := c.Param("username")
	if err := h.deleteUseCase.Execute(c.Request.Context(), name); err != nil {
		c.Error(err)
		return
	}

	owner, _ := GetOwnerEmailFromGinContext(c)
	h.logger.Info("Portfolio removed by owner", zap.String("username", name), zap.String("owner", owner))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Portfolio deleted successfully"})
}
