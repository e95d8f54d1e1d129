package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
)

func TestRecord_Refresh(t *testing.T) {
	p := onboarding.NewPortfolio()
	p, _ = onboarding.SaveSectionData(p, onboarding.SectionSkills, onboarding.SkillsData{Skills: []string{"Editing"}})
	p = onboarding.SettleAll(p)

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	r := &Record{Username: "kai", PortfolioData: p}
	r.Refresh(now)

	assert.Equal(t, 5, r.Metadata.TotalSections)
	assert.Equal(t, 1, r.Metadata.CompletedSections)
	assert.Equal(t, 20, r.Metadata.CompletionPercentage)
	assert.Equal(t, now, r.Metadata.LastModified)
}

func TestRecord_Accessors(t *testing.T) {
	p := onboarding.NewPortfolio()
	p, _ = onboarding.SaveSectionData(p, onboarding.SectionPhoto, onboarding.PhotoData{ProfileImage: onboarding.Image{URL: " https://img.example.com/a.jpg "}})
	p, _ = onboarding.SaveSectionData(p, onboarding.SectionProfile, onboarding.ProfileData{FirstName: "Kai", LastName: "Lee", Title: "Editor"})
	r := &Record{Username: "kai", PortfolioData: p}

	assert.Equal(t, "https://img.example.com/a.jpg", r.ProfileImageURL())
	assert.Equal(t, "Kai Lee", r.DisplayName())
	assert.Equal(t, "Editor", r.Headline())

	empty := &Record{Username: "solo"}
	assert.Empty(t, empty.ProfileImageURL())
	assert.Equal(t, "solo", empty.DisplayName())
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://app.joinroster.co/kai", PublicURL("https://app.joinroster.co/", "kai"))
}
