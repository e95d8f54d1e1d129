package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	onboardingUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/onboarding"
	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
)

const maxPhotoSize = 5 << 20

type OnboardingHandler struct {
	draftUseCase *onboardingUC.DraftUseCase
}

func NewOnboardingHandler(uc *onboardingUC.DraftUseCase) *OnboardingHandler {
	return &OnboardingHandler{draftUseCase: uc}
}

func draftID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid draft ID", err))
		return uuid.Nil, false
	}
	return id, true
}

func (h *OnboardingHandler) respond(c *gin.Context, status int, out *onboardingUC.DraftOutput, err error) {
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(status, gin.H{"success": true, "data": ToDraftDTO(out)})
}

func (h *OnboardingHandler) StartDraft(c *gin.Context) {
	var req StartDraftRequest
	// an empty body starts a blank draft
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.NewInvalidInput("malformed request body", err))
			return
		}
	}

	out, err := h.draftUseCase.ExecuteStart(c.Request.Context(), onboardingUC.StartDraftInput{SourceURL: req.SourceURL})
	h.respond(c, http.StatusCreated, out, err)
}

func (h *OnboardingHandler) GetDraft(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	out, err := h.draftUseCase.ExecuteGet(c.Request.Context(), id)
	h.respond(c, http.StatusOK, out, err)
}

func (h *OnboardingHandler) SaveSection(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}
	sectionID, err := strconv.Atoi(c.Param("sectionId"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid section ID", err))
		return
	}

	var req SaveSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("section data is required", err))
		return
	}

	out, err := h.draftUseCase.ExecuteSaveSection(c.Request.Context(), onboardingUC.SaveSectionInput{
		DraftID:   id,
		SectionID: sectionID,
		Data:      req.Data,
	})
	h.respond(c, http.StatusOK, out, err)
}

func (h *OnboardingHandler) Navigate(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewValidation("action must be one of advance, retreat, goto or jump"))
		return
	}

	out, err := h.draftUseCase.ExecuteNavigate(c.Request.Context(), onboardingUC.NavigateInput{
		DraftID:   id,
		Action:    onboardingUC.NavigateAction(req.Action),
		Target:    req.Target,
		SectionID: req.SectionID,
	})
	h.respond(c, http.StatusOK, out, err)
}

func (h *OnboardingHandler) UploadPhoto(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoSize)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(apperror.NewValidation("Photo must be 5MB or smaller"))
			return
		}
		c.Error(apperror.NewValidation("'file' is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("file cannot open", err))
		return
	}
	defer file.Close()

	out, err := h.draftUseCase.ExecuteUploadPhoto(c.Request.Context(), onboardingUC.UploadPhotoInput{
		DraftID: id,
		File:    file,
		Alt:     c.PostForm("alt"),
	})
	h.respond(c, http.StatusOK, out, err)
}
