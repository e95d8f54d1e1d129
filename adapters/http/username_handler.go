package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	usernameUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/username"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/username"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

// UsernameHandler answers availability checks. Its body shape predates the
// shared error envelope, so it writes responses itself.
type UsernameHandler struct {
	checkUseCase *usernameUC.CheckUsernameUseCase
	logger       logger.Logger
}

func NewUsernameHandler(uc *usernameUC.CheckUsernameUseCase, log logger.Logger) *UsernameHandler {
	return &UsernameHandler{checkUseCase: uc, logger: log}
}

func (h *UsernameHandler) CheckUsername(c *gin.Context) {
	var req CheckUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, CheckUsernameResponse{Message: username.ErrRequired.Error()})
		return
	}

	out, err := h.checkUseCase.Execute(c.Request.Context(), usernameUC.CheckUsernameInput{Username: req.Username})
	if err != nil {
		h.logger.Error("Username check failed", err, zap.String("request_id", RequestIDFromGinContext(c)))
		c.JSON(http.StatusInternalServerError, CheckUsernameResponse{Message: "Internal server error"})
		return
	}

	resp := CheckUsernameResponse{
		Available:   out.Available(),
		Message:     out.Message,
		Suggestions: out.Suggestions,
	}
	if out.Verdict == username.VerdictInvalid {
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsernameHandler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Use POST method to check username availability"})
}
