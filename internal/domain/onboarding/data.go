package onboarding

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Section ids double as the discriminator of the data payload.
const (
	SectionPhoto          = 1
	SectionProfile        = 2
	SectionWorkExperience = 3
	SectionSkills         = 4
	SectionSocialLinks    = 5
)

// SectionData is the closed set of per-step payloads. Payloads are treated as
// immutable: reducers replace them, they never edit them in place.
type SectionData interface {
	sectionID() int
}

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type PhotoData struct {
	ProfileImage Image `json:"profileImage"`
}

type Location struct {
	City     string `json:"city"`
	Country  string `json:"country"`
	Timezone string `json:"timezone,omitempty"`
}

type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Language struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type ProfileData struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary,omitempty"`
	Website   string     `json:"website,omitempty"`
	Location  Location   `json:"location"`
	Contact   Contact    `json:"contact"`
	Languages []Language `json:"languages,omitempty"`
}

type PortfolioItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	VideoURL  string `json:"videoUrl,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Views     string `json:"views,omitempty"`
}

type WorkExperience struct {
	ID                   string          `json:"id"`
	Type                 string          `json:"type"`
	CompanyName          string          `json:"companyName"`
	JobTitle             string          `json:"jobTitle"`
	StartDate            string          `json:"startDate"`
	EndDate              *string         `json:"endDate"`
	DurationOfEmployment string          `json:"durationOfEmployment"`
	EmploymentType       string          `json:"employmentType"`
	IsCurrentRole        bool            `json:"isCurrentRole"`
	Summary              string          `json:"summary"`
	PortfolioItems       []PortfolioItem `json:"portfolioItems"`
}

type WorkExperienceData struct {
	WorkExperience []WorkExperience `json:"workExperience"`
}

type SkillsData struct {
	Skills    []string `json:"skills"`
	Softwares []string `json:"softwares"`
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Handle   string `json:"handle"`
}

type SocialLinksData struct {
	SocialLinks []SocialLink `json:"socialLinks"`
}

// UnknownData keeps the payload of a section id this build does not know.
type UnknownData struct {
	Raw json.RawMessage
}

func (PhotoData) sectionID() int          { return SectionPhoto }
func (ProfileData) sectionID() int        { return SectionProfile }
func (WorkExperienceData) sectionID() int { return SectionWorkExperience }
func (SkillsData) sectionID() int         { return SectionSkills }
func (SocialLinksData) sectionID() int    { return SectionSocialLinks }
func (UnknownData) sectionID() int        { return 0 }

func (u UnknownData) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return []byte("null"), nil
	}
	return u.Raw, nil
}

// IsKnownSection reports whether id has a typed payload.
func IsKnownSection(id int) bool {
	return id >= SectionPhoto && id <= SectionSocialLinks
}

// EmptyData returns the zero payload for a known section, nil otherwise.
func EmptyData(id int) SectionData {
	switch id {
	case SectionPhoto:
		return PhotoData{}
	case SectionProfile:
		return ProfileData{}
	case SectionWorkExperience:
		return WorkExperienceData{WorkExperience: []WorkExperience{}}
	case SectionSkills:
		return SkillsData{Skills: []string{}, Softwares: []string{}}
	case SectionSocialLinks:
		return SocialLinksData{SocialLinks: []SocialLink{}}
	}
	return nil
}

// DecodeSectionData decodes raw into the payload type selected by id.
// An absent or null payload yields nil.
func DecodeSectionData(id int, raw json.RawMessage) (SectionData, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var (
		data SectionData
		err  error
	)
	switch id {
	case SectionPhoto:
		var d PhotoData
		err = json.Unmarshal(trimmed, &d)
		data = d
	case SectionProfile:
		var d ProfileData
		err = json.Unmarshal(trimmed, &d)
		data = d
	case SectionWorkExperience:
		var d WorkExperienceData
		err = json.Unmarshal(trimmed, &d)
		data = d
	case SectionSkills:
		var d SkillsData
		err = json.Unmarshal(trimmed, &d)
		data = d
	case SectionSocialLinks:
		var d SocialLinksData
		err = json.Unmarshal(trimmed, &d)
		data = d
	default:
		data = UnknownData{Raw: append(json.RawMessage(nil), trimmed...)}
	}
	if err != nil {
		return nil, fmt.Errorf("decode data of section %d: %w", id, err)
	}
	return data, nil
}

// matchesSection reports whether data is the payload type registered for id.
func matchesSection(id int, data SectionData) bool {
	if data == nil {
		return true
	}
	if !IsKnownSection(id) {
		_, ok := data.(UnknownData)
		return ok
	}
	return data.sectionID() == id
}
