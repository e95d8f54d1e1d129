package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	portfolioUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type PortfolioHandler struct {
	generateUseCase *portfolioUC.GeneratePortfolioUseCase
	getUseCase      *portfolioUC.GetPortfolioUseCase
	updateUseCase   *portfolioUC.UpdatePortfolioUseCase
	deleteUseCase   *portfolioUC.DeletePortfolioUseCase
	lookupUseCase   *portfolioUC.LookupSourceUseCase
}

func NewPortfolioHandler(
	generateUC *portfolioUC.GeneratePortfolioUseCase,
	getUC *portfolioUC.GetPortfolioUseCase,
	updateUC *portfolioUC.UpdatePortfolioUseCase,
	deleteUC *portfolioUC.DeletePortfolioUseCase,
	lookupUC *portfolioUC.LookupSourceUseCase,
) *PortfolioHandler {
	return &PortfolioHandler{
		generateUseCase: generateUC,
		getUseCase:      getUC,
		updateUseCase:   updateUC,
		deleteUseCase:   deleteUC,
		lookupUseCase:   lookupUC,
	}
}

func bindPortfolioRequest(c *gin.Context) (PortfolioRequest, bool) {
	var req PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewAppError(apperror.ErrInvalidInput, portfolioUC.MsgDataRequired, err.Error(), err))
		return req, false
	}
	return req, true
}

func (h *PortfolioHandler) GeneratePortfolio(c *gin.Context) {
	req, ok := bindPortfolioRequest(c)
	if !ok {
		return
	}

	out, err := h.generateUseCase.Execute(c.Request.Context(), portfolioUC.GeneratePortfolioInput{
		Username:       req.Username,
		PortfolioData:  req.PortfolioData,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)),
	})
	if err != nil {
		c.Error(err)
		return
	}

	if out.Replayed {
		c.Header("Idempotent-Replayed", "true")
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Portfolio generated successfully",
		"data": GeneratedPortfolioDTO{
			Username:             out.Username,
			URL:                  out.URL,
			CreatedAt:            out.CreatedAt,
			CompletionPercentage: out.CompletionPercentage,
		},
	})
}

func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	rec, err := h.getUseCase.Execute(c.Request.Context(), c.Query("username"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
}

func (h *PortfolioHandler) UpdatePortfolio(c *gin.Context) {
	req, ok := bindPortfolioRequest(c)
	if !ok {
		return
	}

	out, err := h.updateUseCase.Execute(c.Request.Context(), portfolioUC.UpdatePortfolioInput{
		Username:      req.Username,
		PortfolioData: req.PortfolioData,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Portfolio updated successfully",
		"data":    UpdatedPortfolioDTO{Username: out.Username, URL: out.URL, UpdatedAt: out.UpdatedAt},
	})
}

func (h *PortfolioHandler) DeletePortfolio(c *gin.Context) {
	if err := h.deleteUseCase.Execute(c.Request.Context(), c.Query("username")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Portfolio deleted successfully"})
}

// LookupSource returns a previously imported portfolio by its source URL.
func (h *PortfolioHandler) LookupSource(c *gin.Context) {
	var req SourceLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewValidation("Portfolio URL is required"))
		return
	}

	src, err := h.lookupUseCase.Execute(c.Request.Context(), req.URL)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    src,
		"message": "Portfolio retrieved successfully",
	})
}
