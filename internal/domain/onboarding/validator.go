package onboarding

import "strings"

// IsStepValid decides whether a section's content is complete.
// Sections this build does not know are always valid.
func IsStepValid(s Section) bool {
	switch s.ID {
	case SectionPhoto:
		d, ok := s.Data.(PhotoData)
		return ok && notBlank(d.ProfileImage.URL)
	case SectionProfile:
		d, ok := s.Data.(ProfileData)
		return ok && notBlank(
			d.FirstName,
			d.LastName,
			d.Title,
			d.Contact.Email,
			d.Location.City,
			d.Location.Country,
		)
	case SectionWorkExperience:
		d, ok := s.Data.(WorkExperienceData)
		return ok && len(d.WorkExperience) >= 1
	case SectionSkills:
		d, ok := s.Data.(SkillsData)
		return ok && len(d.Skills) >= 1
	case SectionSocialLinks:
		d, ok := s.Data.(SocialLinksData)
		return ok && len(d.SocialLinks) >= 1
	default:
		return true
	}
}

func notBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
