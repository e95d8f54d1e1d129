package http

import (
	"encoding/json"
	"time"

	onboardingUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/onboarding"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
)

// Username DTOs

type CheckUsernameRequest struct {
	Username string `json:"username"`
}

type CheckUsernameResponse struct {
	Available   bool     `json:"available"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Portfolio DTOs

type PortfolioRequest struct {
	Username      string                `json:"username"`
	PortfolioData *onboarding.Portfolio `json:"portfolioData"`
}

type GeneratedPortfolioDTO struct {
	Username             string    `json:"username"`
	URL                  string    `json:"url"`
	CreatedAt            time.Time `json:"createdAt"`
	CompletionPercentage int       `json:"completionPercentage"`
}

type UpdatedPortfolioDTO struct {
	Username  string    `json:"username"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SourceLookupRequest struct {
	URL string `json:"url"`
}

type PortfolioSummaryDTO struct {
	ID                   string    `json:"id"`
	Username             string    `json:"username"`
	URL                  string    `json:"url"`
	DisplayName          string    `json:"displayName"`
	Views                int64     `json:"views"`
	CompletionPercentage int       `json:"completionPercentage"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func ToPortfolioSummaryDTO(r *portfolio.Record) PortfolioSummaryDTO {
	return PortfolioSummaryDTO{
		ID:                   r.ID.String(),
		Username:             r.Username,
		URL:                  r.URL,
		DisplayName:          r.DisplayName(),
		Views:                r.Views,
		CompletionPercentage: r.Metadata.CompletionPercentage,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

// Draft DTOs

type StartDraftRequest struct {
	SourceURL string `json:"sourceUrl"`
}

type NavigateRequest struct {
	Action    string `json:"action" binding:"required,oneof=advance retreat goto jump"`
	Target    int    `json:"target"`
	SectionID int    `json:"sectionId"`
}

type SaveSectionRequest struct {
	Data json.RawMessage `json:"data" binding:"required"`
}

type DraftDTO struct {
	ID        string               `json:"id"`
	SourceURL string               `json:"sourceUrl,omitempty"`
	Portfolio onboarding.Portfolio `json:"portfolio"`
	Progress  onboarding.Progress  `json:"progress"`
	Result    string               `json:"result"`
	Complete  bool                 `json:"complete"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func ToDraftDTO(out *onboardingUC.DraftOutput) DraftDTO {
	return DraftDTO{
		ID:        out.Draft.ID.String(),
		SourceURL: out.Draft.SourceURL,
		Portfolio: out.Draft.Portfolio,
		Progress:  out.Progress,
		Result:    out.Result.String(),
		Complete:  out.Complete(),
		UpdatedAt: out.Draft.UpdatedAt,
	}
}

// Admin DTOs

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
