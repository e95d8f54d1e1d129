package onboarding

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DurationText renders the time between two ISO dates the way profiles show
// it ("1 year 5 months"). A nil or empty end means "until now".
func DurationText(start string, end *string, now time.Time) (string, error) {
	if strings.TrimSpace(start) == "" {
		return "", nil
	}
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return "", fmt.Errorf("invalid start date %q: %w", start, err)
	}
	to := now
	if end != nil && strings.TrimSpace(*end) != "" {
		if to, err = time.Parse(dateLayout, *end); err != nil {
			return "", fmt.Errorf("invalid end date %q: %w", *end, err)
		}
	}

	diff := to.Sub(from)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(diff.Hours() / 24))
	years := days / 365
	months := (days % 365) / 30

	switch {
	case years > 0 && months > 0:
		return fmt.Sprintf("%s %s", plural(years, "year"), plural(months, "month")), nil
	case years > 0:
		return plural(years, "year"), nil
	case months > 0:
		return plural(months, "month"), nil
	default:
		return "Less than a month", nil
	}
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}

// PrepareSectionData normalizes a payload before it is saved and reports
// field-level problems keyed by a JSON-ish path.
func PrepareSectionData(data SectionData, now time.Time) (SectionData, map[string]string) {
	fieldErrors := map[string]string{}

	switch d := data.(type) {
	case SocialLinksData:
		links := make([]SocialLink, len(d.SocialLinks))
		for i, link := range d.SocialLinks {
			link.URL = strings.TrimSpace(link.URL)
			if msg := ValidateSocialLink(link); msg != "" {
				fieldErrors[fmt.Sprintf("socialLinks[%d].url", i)] = msg
			} else if link.Handle == "" && link.URL != "" {
				link.Handle = ExtractHandle(link.Platform, link.URL)
			}
			links[i] = link
		}
		data = SocialLinksData{SocialLinks: links}

	case WorkExperienceData:
		items := make([]WorkExperience, len(d.WorkExperience))
		for i, exp := range d.WorkExperience {
			if exp.IsCurrentRole {
				exp.EndDate = nil
			}
			duration, err := DurationText(exp.StartDate, exp.EndDate, now)
			if err != nil {
				fieldErrors[fmt.Sprintf("workExperience[%d].dates", i)] = "Please enter dates as YYYY-MM-DD"
			} else if duration != "" {
				exp.DurationOfEmployment = duration
			}
			items[i] = exp
		}
		data = WorkExperienceData{WorkExperience: items}

	case ProfileData:
		d.Contact.Email = strings.TrimSpace(d.Contact.Email)
		if d.Contact.Email != "" && !strings.Contains(d.Contact.Email, "@") {
			fieldErrors["contact.email"] = "Please enter a valid email address"
		}
		data = d
	}

	if len(fieldErrors) == 0 {
		return data, nil
	}
	return data, fieldErrors
}
