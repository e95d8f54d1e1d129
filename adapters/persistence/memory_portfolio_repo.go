package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
)

// MemoryPortfolioRepo keeps published portfolios in process. Records are
// copied on the way in and out.
type MemoryPortfolioRepo struct {
	mu   sync.RWMutex
	data map[string]portfolio.Record
}

func NewMemoryPortfolioRepo() *MemoryPortfolioRepo {
	return &MemoryPortfolioRepo{data: make(map[string]portfolio.Record)}
}

var _ portfolio.Repository = (*MemoryPortfolioRepo)(nil)

func (r *MemoryPortfolioRepo) Save(ctx context.Context, rec *portfolio.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[rec.Username]; ok {
		return portfolio.ErrUsernameTaken
	}
	r.data[rec.Username] = *rec
	return nil
}

func (r *MemoryPortfolioRepo) Update(ctx context.Context, rec *portfolio.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[rec.Username]; !ok {
		return portfolio.ErrPortfolioNotFound
	}
	r.data[rec.Username] = *rec
	return nil
}

func (r *MemoryPortfolioRepo) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[username]; !ok {
		return portfolio.ErrPortfolioNotFound
	}
	delete(r.data, username)
	return nil
}

func (r *MemoryPortfolioRepo) FindByUsername(ctx context.Context, username string) (*portfolio.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[username]
	if !ok {
		return nil, portfolio.ErrPortfolioNotFound
	}
	return &rec, nil
}

func (r *MemoryPortfolioRepo) IncrementViews(ctx context.Context, username string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.data[username]
	if !ok {
		return 0, portfolio.ErrPortfolioNotFound
	}
	rec.Views++
	r.data[username] = rec
	return rec.Views, nil
}

func (r *MemoryPortfolioRepo) ExistingUsernames(ctx context.Context, names []string) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool)
	for _, n := range names {
		if _, ok := r.data[n]; ok {
			out[n] = true
		}
	}
	return out, nil
}

// List returns published records, newest first.
func (r *MemoryPortfolioRepo) List(ctx context.Context, limit, offset int) ([]*portfolio.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	all := make([]*portfolio.Record, 0, len(r.data))
	for _, rec := range r.data {
		rec := rec
		all = append(all, &rec)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].Username < all[j].Username
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []*portfolio.Record{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *MemoryPortfolioRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data), nil
}
