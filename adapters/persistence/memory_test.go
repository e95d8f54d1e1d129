package persistence

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
)

func TestMemoryPortfolioRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPortfolioRepo()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, repo.Save(ctx, &portfolio.Record{ID: uuid.New(), Username: name, IsPublished: true, CreatedAt: base.Add(time.Duration(i) * time.Hour)}))
	}
	assert.ErrorIs(t, repo.Save(ctx, &portfolio.Record{Username: "beta"}), portfolio.ErrUsernameTaken)

	views, err := repo.IncrementViews(ctx, "alpha")
	require.NoError(t, err)
	assert.EqualValues(t, 1, views)

	existing, err := repo.ExistingUsernames(ctx, []string{"alpha", "zeta"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"alpha": true}, existing)

	page, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "gamma", page[0].Username)
	assert.Equal(t, "beta", page[1].Username)

	page, err = repo.List(ctx, 2, 5)
	require.NoError(t, err)
	assert.Empty(t, page)

	require.NoError(t, repo.Delete(ctx, "alpha"))
	assert.ErrorIs(t, repo.Delete(ctx, "alpha"), portfolio.ErrPortfolioNotFound)
	_, err = repo.FindByUsername(ctx, "alpha")
	assert.ErrorIs(t, err, portfolio.ErrPortfolioNotFound)
}

func TestMemoryClaimStore_ExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryClaimStore()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Claim(ctx, "kai", uuid.NewString(), time.Minute)
			if err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins)
}

func TestMemoryClaimStore_ReleaseAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryClaimStore()
	store.now = func() time.Time { return now }

	ok, _ := store.Claim(ctx, "kai", "a", time.Minute)
	require.True(t, ok)
	ok, _ = store.Claim(ctx, "kai", "a", time.Minute)
	assert.True(t, ok, "same token reclaims")

	require.NoError(t, store.Release(ctx, "kai", "b"))
	claimed, _ := store.Claimed(ctx, []string{"kai", "lee"})
	assert.Equal(t, map[string]bool{"kai": true}, claimed)

	now = now.Add(2 * time.Minute)
	ok, _ = store.Claim(ctx, "kai", "b", time.Minute)
	assert.True(t, ok, "expired claim is free")

	require.NoError(t, store.Release(ctx, "kai", "b"))
	claimed, _ = store.Claimed(ctx, []string{"kai"})
	assert.Empty(t, claimed)
}

func TestMemoryDraftRepo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryDraftRepo()
	repo.now = func() time.Time { return now }

	p, _ := onboarding.SaveSectionData(onboarding.NewPortfolio(), onboarding.SectionSkills, onboarding.SkillsData{Skills: []string{"Editing"}})
	d := &onboarding.Draft{ID: uuid.New(), Portfolio: onboarding.Snapshot(p), CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Save(ctx, d, time.Hour))

	found, err := repo.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Portfolio.Sections[3].Data, found.Portfolio.Sections[3].Data)

	now = now.Add(2 * time.Hour)
	_, err = repo.FindByID(ctx, d.ID)
	assert.ErrorIs(t, err, onboarding.ErrDraftNotFound)
}

func TestMemorySourceRepo_Seeded(t *testing.T) {
	repo, err := NewMemorySourceRepo()
	require.NoError(t, err)

	src, err := repo.FindByURL(context.Background(), "https://sonuchoudhary.my.canva.site/portfolio")
	require.NoError(t, err)
	assert.True(t, src.Metadata.IsVerified)

	s, ok := src.Portfolio.Section(onboarding.SectionProfile)
	require.True(t, ok)
	profile := s.Data.(onboarding.ProfileData)
	assert.Equal(t, "Sonu", profile.FirstName)
	assert.Equal(t, "Mumbai", profile.Location.City)
	assert.True(t, onboarding.IsStepValid(s))

	_, err = repo.FindByURL(context.Background(), "https://example.com/none")
	assert.ErrorIs(t, err, portfolio.ErrSourceNotFound)
}
