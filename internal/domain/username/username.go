package username

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinLength      = 3
	MaxLength      = 30
	MaxSuggestions = 6
)

var (
	ErrRequired           = errors.New("Username is required")
	ErrTooShort           = errors.New("Username must be at least 3 characters long")
	ErrTooLong            = errors.New("Username must be less than 30 characters")
	ErrInvalidCharacters  = errors.New("Username can only contain letters, numbers, and hyphens")
	ErrEdgeHyphen         = errors.New("Username cannot start or end with a hyphen")
	ErrConsecutiveHyphens = errors.New("Username cannot have consecutive hyphens")
)

var (
	allowed     = regexp.MustCompile(`^[a-z0-9-]+$`)
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]`)
	fixedSuffix = []string{"2024", "2025"}
	underscores = []string{"_", "_portfolio", "_pro"}
	wordSuffix  = []string{"pro", "dev", "design", "creative", "studio", "work"}
)

// Verdict is the outcome of an availability check.
type Verdict string

const (
	VerdictAvailable Verdict = "available"
	VerdictTaken     Verdict = "taken"
	VerdictInvalid   Verdict = "invalid"
	VerdictError     Verdict = "error"
	VerdictUnknown   Verdict = "unknown"
)

// Candidate is a checked username.
type Candidate struct {
	Name        string
	Verdict     Verdict
	Message     string
	Suggestions []string
}

// TakenChecker answers, in one round trip, which of the given names are in use.
type TakenChecker interface {
	Taken(ctx context.Context, names []string) (map[string]bool, error)
}

// Normalize trims and lower-cases a raw candidate.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Sanitize is the input-field filter: it normalizes raw and drops every
// character a username can never contain.
func Sanitize(raw string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, Normalize(raw))
}

// Validate checks a normalized username and returns the first rule it breaks.
func Validate(name string) error {
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return ErrRequired
	case n < MinLength:
		return ErrTooShort
	case n > MaxLength:
		return ErrTooLong
	}
	if !allowed.MatchString(name) {
		return ErrInvalidCharacters
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return ErrEdgeHyphen
	}
	if strings.Contains(name, "--") {
		return ErrConsecutiveHyphens
	}
	return nil
}

// SuggestionBase reduces a rejected candidate to ASCII letters and digits.
// Accents are folded first so "José" becomes "jose" rather than "jos".
func SuggestionBase(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return nonAlnum.ReplaceAllString(strings.ToLower(folded), "")
}

// Candidates lists every suggestion for base in preference order, without
// consulting any taken set. Duplicates are removed.
func Candidates(base string, now time.Time) []string {
	year := strconv.Itoa(now.Year() % 100)
	if len(year) < 2 {
		year = "0" + year
	}

	out := make([]string, 0, 17)
	seen := make(map[string]bool, 17)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for i := 1; i <= 5; i++ {
		add(base + strconv.Itoa(i))
	}
	add(base + year)
	for _, s := range fixedSuffix {
		add(base + s)
	}
	for _, s := range underscores {
		add(base + s)
	}
	for _, s := range wordSuffix {
		add(base + s)
	}
	return out
}

// Suggest returns up to MaxSuggestions candidates that are not taken.
func Suggest(base string, now time.Time, taken map[string]bool) []string {
	out := make([]string, 0, MaxSuggestions)
	for _, c := range Candidates(base, now) {
		if taken[c] {
			continue
		}
		out = append(out, c)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}
