package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
)

type storedDraft struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryDraftRepo stores drafts as JSON, the same form the Redis store uses,
// so both hand back freshly decoded values.
type MemoryDraftRepo struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]storedDraft
	now    func() time.Time
}

func NewMemoryDraftRepo() *MemoryDraftRepo {
	return &MemoryDraftRepo{drafts: make(map[uuid.UUID]storedDraft), now: time.Now}
}

var _ onboarding.DraftRepository = (*MemoryDraftRepo)(nil)

func (r *MemoryDraftRepo) Save(ctx context.Context, d *onboarding.Draft, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[d.ID] = storedDraft{payload: payload, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *MemoryDraftRepo) FindByID(ctx context.Context, id uuid.UUID) (*onboarding.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	stored, ok := r.drafts[id]
	r.mu.RUnlock()
	if !ok || !r.now().Before(stored.expiresAt) {
		return nil, onboarding.ErrDraftNotFound
	}
	var d onboarding.Draft
	if err := json.Unmarshal(stored.payload, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &d, nil
}

func (r *MemoryDraftRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, id)
	return nil
}
