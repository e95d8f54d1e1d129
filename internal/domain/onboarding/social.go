package onboarding

import (
	"fmt"
	"regexp"
	"strings"
)

type Platform struct {
	Key        string
	Name       string
	Category   string
	URLPattern *regexp.Regexp
}

var platforms = map[string]Platform{
	"linkedin":  {Key: "linkedin", Name: "LinkedIn", Category: "Professional", URLPattern: regexp.MustCompile(`^https?://(www\.)?linkedin\.com/(in|company)/[a-zA-Z0-9-]+/?$`)},
	"behance":   {Key: "behance", Name: "Behance", Category: "Professional", URLPattern: regexp.MustCompile(`^https?://(www\.)?behance\.net/[a-zA-Z0-9_-]+/?$`)},
	"dribbble":  {Key: "dribbble", Name: "Dribbble", Category: "Professional", URLPattern: regexp.MustCompile(`^https?://(www\.)?dribbble\.com/[a-zA-Z0-9_-]+/?$`)},
	"youtube":   {Key: "youtube", Name: "YouTube", Category: "Creative", URLPattern: regexp.MustCompile(`^https?://(www\.)?youtube\.com/(c/|channel/|user/|@)[a-zA-Z0-9_-]+/?$`)},
	"instagram": {Key: "instagram", Name: "Instagram", Category: "Creative", URLPattern: regexp.MustCompile(`^https?://(www\.)?instagram\.com/[a-zA-Z0-9_.]+/?$`)},
	"tiktok":    {Key: "tiktok", Name: "TikTok", Category: "Creative", URLPattern: regexp.MustCompile(`^https?://(www\.)?tiktok\.com/@[a-zA-Z0-9_.]+/?$`)},
	"vimeo":     {Key: "vimeo", Name: "Vimeo", Category: "Creative", URLPattern: regexp.MustCompile(`^https?://(www\.)?vimeo\.com/[a-zA-Z0-9_-]+/?$`)},
	"twitter":   {Key: "twitter", Name: "Twitter / X", Category: "Social", URLPattern: regexp.MustCompile(`^https?://(www\.)?(twitter\.com|x\.com)/[a-zA-Z0-9_]+/?$`)},
	"facebook":  {Key: "facebook", Name: "Facebook", Category: "Social", URLPattern: regexp.MustCompile(`^https?://(www\.)?facebook\.com/[a-zA-Z0-9_.]+/?$`)},
	"website":   {Key: "website", Name: "Personal Website", Category: "Other", URLPattern: regexp.MustCompile(`^https?://[a-zA-Z0-9\-._~:/?#\[\]@!$&'()*+,;=]+$`)},
	"github":    {Key: "github", Name: "GitHub", Category: "Other", URLPattern: regexp.MustCompile(`^https?://(www\.)?github\.com/[a-zA-Z0-9_-]+/?$`)},
	"discord":   {Key: "discord", Name: "Discord", Category: "Other", URLPattern: regexp.MustCompile(`^https?://(www\.)?discord\.(gg|com)/[a-zA-Z0-9_-]+/?$`)},
}

var (
	youtubeHandle  = regexp.MustCompile(`@([a-zA-Z0-9_-]+)`)
	tiktokHandle   = regexp.MustCompile(`@([a-zA-Z0-9_.]+)`)
	socialHandle   = regexp.MustCompile(`/([a-zA-Z0-9_.]+)/?$`)
	linkedinHandle = regexp.MustCompile(`/in/([a-zA-Z0-9-]+)`)
	genericHandle  = regexp.MustCompile(`/([a-zA-Z0-9_.-]+)/?$`)
)

func LookupPlatform(key string) (Platform, bool) {
	p, ok := platforms[key]
	return p, ok
}

// ValidateSocialLink returns a user-facing message, or "" when the link is fine.
// Blank URLs are accepted so a platform can be added before it is filled in.
func ValidateSocialLink(link SocialLink) string {
	p, ok := platforms[link.Platform]
	if !ok {
		return fmt.Sprintf("Unsupported platform %q", link.Platform)
	}
	if strings.TrimSpace(link.URL) == "" {
		return ""
	}
	if !p.URLPattern.MatchString(link.URL) {
		return fmt.Sprintf("Please enter a valid %s URL", p.Name)
	}
	return ""
}

// ExtractHandle derives the display handle from a profile URL.
func ExtractHandle(platform, url string) string {
	switch platform {
	case "youtube":
		if m := youtubeHandle.FindStringSubmatch(url); m != nil {
			return "@" + m[1]
		}
	case "tiktok":
		if m := tiktokHandle.FindStringSubmatch(url); m != nil {
			return "@" + m[1]
		}
	case "instagram", "twitter":
		if m := socialHandle.FindStringSubmatch(url); m != nil {
			return "@" + m[1]
		}
	case "linkedin":
		if m := linkedinHandle.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	default:
		if m := genericHandle.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}
