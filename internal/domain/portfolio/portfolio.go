package portfolio

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
)

var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrUsernameTaken     = errors.New("username already published")
	ErrSourceNotFound    = errors.New("source portfolio not found")
)

type Metadata struct {
	TotalSections        int       `json:"totalSections"`
	CompletedSections    int       `json:"completedSections"`
	CompletionPercentage int       `json:"completionPercentage"`
	LastModified         time.Time `json:"lastModified"`
	OgImageURL           *string   `json:"ogImageUrl,omitempty"`
	ThumbnailURL         *string   `json:"thumbnailUrl,omitempty"`
	AvatarPublicID       string    `json:"avatarPublicId,omitempty"`
}

// Record is a published portfolio.
type Record struct {
	ID             uuid.UUID            `json:"id"`
	Username       string               `json:"username"`
	PortfolioData  onboarding.Portfolio `json:"portfolioData"`
	URL            string               `json:"url"`
	IsPublished    bool                 `json:"isPublished"`
	Views          int64                `json:"views"`
	Metadata       Metadata             `json:"metadata"`
	IdempotencyKey string               `json:"-"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// PublicURL joins the public base URL and a username.
func PublicURL(base, username string) string {
	return strings.TrimRight(base, "/") + "/" + username
}

// Refresh recomputes the completion metadata from the stored aggregate.
func (r *Record) Refresh(now time.Time) {
	pr := onboarding.ProgressOf(r.PortfolioData)
	r.Metadata.TotalSections = pr.Total
	r.Metadata.CompletedSections = pr.Completed
	r.Metadata.CompletionPercentage = pr.Percentage
	r.Metadata.LastModified = now
}

// MarkRenditions stores the derived avatar images.
func (r *Record) MarkRenditions(publicID, ogImageURL, thumbnailURL string) {
	r.Metadata.AvatarPublicID = publicID
	r.Metadata.OgImageURL = &ogImageURL
	r.Metadata.ThumbnailURL = &thumbnailURL
}

// ProfileImageURL returns the photo section's image, if any.
func (r *Record) ProfileImageURL() string {
	s, ok := r.PortfolioData.Section(onboarding.SectionPhoto)
	if !ok {
		return ""
	}
	d, ok := s.Data.(onboarding.PhotoData)
	if !ok {
		return ""
	}
	return strings.TrimSpace(d.ProfileImage.URL)
}

// DisplayName is "First Last" from the profile section, or the username.
func (r *Record) DisplayName() string {
	if s, ok := r.PortfolioData.Section(onboarding.SectionProfile); ok {
		if d, ok := s.Data.(onboarding.ProfileData); ok {
			if name := strings.TrimSpace(d.FirstName + " " + d.LastName); name != "" {
				return name
			}
		}
	}
	return r.Username
}

// Headline is the profile title, used as feed description.
func (r *Record) Headline() string {
	if s, ok := r.PortfolioData.Section(onboarding.SectionProfile); ok {
		if d, ok := s.Data.(onboarding.ProfileData); ok {
			return d.Title
		}
	}
	return ""
}

type Repository interface {
	// Save inserts a new record; ErrUsernameTaken when the username exists.
	Save(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, username string) error
	FindByUsername(ctx context.Context, username string) (*Record, error)
	IncrementViews(ctx context.Context, username string) (int64, error)
	// ExistingUsernames returns the subset of names that are published.
	ExistingUsernames(ctx context.Context, names []string) (map[string]bool, error)
	List(ctx context.Context, limit, offset int) ([]*Record, error)
	Count(ctx context.Context) (int, error)
}

type SourceMetadata struct {
	ProfileCompleteness int       `json:"profileCompleteness"`
	IsVerified          bool      `json:"isVerified"`
	IsAvailableForWork  bool      `json:"isAvailableForWork"`
	LastUpdated         time.Time `json:"lastUpdated"`
	CreatedAt           time.Time `json:"createdAt"`
}

// SourcePortfolio is an importable portfolio keyed by its public URL.
type SourcePortfolio struct {
	URL       string               `json:"url"`
	Portfolio onboarding.Portfolio `json:"portfolio"`
	Metadata  SourceMetadata       `json:"metadata"`
}

type SourceRepository interface {
	FindByURL(ctx context.Context, url string) (*SourcePortfolio, error)
	Save(ctx context.Context, s *SourcePortfolio) error
}
