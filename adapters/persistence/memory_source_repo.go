package persistence

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
)

//go:embed fixtures/sources.json
var seedSources []byte

// SeedSources decodes the bundled importable portfolios.
func SeedSources() ([]*portfolio.SourcePortfolio, error) {
	var out []*portfolio.SourcePortfolio
	if err := json.Unmarshal(seedSources, &out); err != nil {
		return nil, fmt.Errorf("failed to decode source fixtures: %w", err)
	}
	return out, nil
}

type MemorySourceRepo struct {
	mu      sync.RWMutex
	sources map[string]portfolio.SourcePortfolio
}

// NewMemorySourceRepo returns a repo preloaded with the bundled fixtures.
func NewMemorySourceRepo() (*MemorySourceRepo, error) {
	seeds, err := SeedSources()
	if err != nil {
		return nil, err
	}
	r := &MemorySourceRepo{sources: make(map[string]portfolio.SourcePortfolio, len(seeds))}
	for _, s := range seeds {
		r.sources[s.URL] = *s
	}
	return r, nil
}

var _ portfolio.SourceRepository = (*MemorySourceRepo)(nil)

func (r *MemorySourceRepo) FindByURL(ctx context.Context, url string) (*portfolio.SourcePortfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[url]
	if !ok {
		return nil, portfolio.ErrSourceNotFound
	}
	return &s, nil
}

func (r *MemorySourceRepo) Save(ctx context.Context, s *portfolio.SourcePortfolio) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.URL] = *s
	return nil
}
