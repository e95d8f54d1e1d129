package username

import (
	"context"
	"fmt"

	"github.com/khoahotran/portfolio-onboarding/internal/application/service"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	domain "github.com/khoahotran/portfolio-onboarding/internal/domain/username"
)

// TakenSet is the union of reserved names, published portfolios and live
// claims. Each lookup costs one round trip per backing store.
type TakenSet struct {
	reserved map[string]bool
	repo     portfolio.Repository
	claims   service.ClaimStore
}

var _ domain.TakenChecker = (*TakenSet)(nil)

func NewTakenSet(reserved []string, repo portfolio.Repository, claims service.ClaimStore) *TakenSet {
	set := make(map[string]bool, len(reserved))
	for _, r := range reserved {
		set[domain.Normalize(r)] = true
	}
	return &TakenSet{reserved: set, repo: repo, claims: claims}
}

func (t *TakenSet) IsReserved(name string) bool {
	return t.reserved[name]
}

func (t *TakenSet) Taken(ctx context.Context, names []string) (map[string]bool, error) {
	out := make(map[string]bool, len(names))
	lookup := make([]string, 0, len(names))
	for _, n := range names {
		if t.reserved[n] {
			out[n] = true
			continue
		}
		lookup = append(lookup, n)
	}
	if len(lookup) == 0 {
		return out, nil
	}

	published, err := t.repo.ExistingUsernames(ctx, lookup)
	if err != nil {
		return nil, fmt.Errorf("lookup published usernames: %w", err)
	}
	for n := range published {
		out[n] = true
	}

	if t.claims == nil {
		return out, nil
	}
	claimed, err := t.claims.Claimed(ctx, lookup)
	if err != nil {
		return nil, fmt.Errorf("lookup claimed usernames: %w", err)
	}
	for n := range claimed {
		out[n] = true
	}
	return out, nil
}
