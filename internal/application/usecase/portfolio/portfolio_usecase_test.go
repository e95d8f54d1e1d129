package portfolio

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio-onboarding/adapters/persistence"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

type reservedSet map[string]bool

func (r reservedSet) IsReserved(name string) bool { return r[name] }

type recordingPublisher struct {
	mu     sync.Mutex
	events []portfolio.Event
	err    error
}

func (p *recordingPublisher) PublishPortfolioEvent(_ context.Context, e portfolio.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []portfolio.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]portfolio.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func completeProfile() onboarding.Portfolio {
	p := onboarding.NewPortfolio()
	p, _ = onboarding.SaveSectionData(p, onboarding.SectionPhoto, onboarding.PhotoData{ProfileImage: onboarding.Image{URL: "https://img.example.com/kai.jpg"}})
	p, _ = onboarding.SaveSectionData(p, onboarding.SectionProfile, onboarding.ProfileData{
		FirstName: "Kai",
		LastName:  "Lee",
		Title:     "Motion Designer",
		Location:  onboarding.Location{City: "Lisbon", Country: "Portugal"},
		Contact:   onboarding.Contact{Email: "kai@example.com"},
	})
	return p
}

func assertAppError(t *testing.T, err error, base error, msg string) {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.ErrorIs(t, err, base)
	if msg != "" {
		assert.Equal(t, msg, appErr.Message)
	}
}

type PortfolioUseCaseTestSuite struct {
	suite.Suite
	repo      *persistence.MemoryPortfolioRepo
	claims    *persistence.MemoryClaimStore
	publisher *recordingPublisher
	generate  *GeneratePortfolioUseCase
	get       *GetPortfolioUseCase
	update    *UpdatePortfolioUseCase
	delete    *DeletePortfolioUseCase
	list      *ListPortfoliosUseCase
	now       time.Time
}

func (s *PortfolioUseCaseTestSuite) SetupTest() {
	log := logger.NewNopLogger()
	s.now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	s.repo = persistence.NewMemoryPortfolioRepo()
	s.claims = persistence.NewMemoryClaimStore()
	s.publisher = &recordingPublisher{}

	s.generate = NewGeneratePortfolioUseCase(s.repo, s.claims, reservedSet{"admin": true}, s.publisher, "https://app.joinroster.co", 30*time.Second, log)
	s.generate.now = func() time.Time { return s.now }
	s.get = NewGetPortfolioUseCase(s.repo, log)
	s.update = NewUpdatePortfolioUseCase(s.repo, s.publisher, log)
	s.update.now = func() time.Time { return s.now.Add(time.Hour) }
	s.delete = NewDeletePortfolioUseCase(s.repo, s.publisher, log)
	s.list = NewListPortfoliosUseCase(s.repo, log)
}

func TestPortfolioUseCases(t *testing.T) {
	suite.Run(t, new(PortfolioUseCaseTestSuite))
}

func (s *PortfolioUseCaseTestSuite) Test_Generate_Success() {
	data := completeProfile()

	out, err := s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "  Kai-Lee ", PortfolioData: &data})

	s.Require().NoError(err)
	s.Equal("kai-lee", out.Username)
	s.Equal("https://app.joinroster.co/kai-lee", out.URL)
	s.Equal(40, out.CompletionPercentage)
	s.Equal(s.now, out.CreatedAt)
	s.False(out.Replayed)
	s.Equal([]portfolio.EventType{portfolio.EventGenerated}, s.publisher.types())

	rec, err := s.repo.FindByUsername(context.Background(), "kai-lee")
	s.Require().NoError(err)
	for _, sec := range rec.PortfolioData.Sections {
		s.NotEqual(onboarding.StatusCurrent, sec.Status)
	}

	claimed, _ := s.claims.Claimed(context.Background(), []string{"kai-lee"})
	s.Empty(claimed, "claim released after publish")
}

func (s *PortfolioUseCaseTestSuite) Test_Generate_Validation() {
	data := completeProfile()

	_, err := s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai"})
	assertAppError(s.T(), err, apperror.ErrInvalidInput, MsgDataRequired)

	_, err = s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "k_i", PortfolioData: &data})
	assertAppError(s.T(), err, apperror.ErrInvalidInput, MsgInvalidFormat)

	empty := onboarding.NewPortfolio()
	_, err = s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai", PortfolioData: &empty})
	assertAppError(s.T(), err, apperror.ErrInvalidInput, MsgProfileIncomplete)
}

func (s *PortfolioUseCaseTestSuite) Test_Generate_ClaimedCompletedIsRevalidated() {
	data := onboarding.NewPortfolio()
	data.Sections[1].Status = onboarding.StatusCompleted
	data.Sections[1].OriginalStatus = onboarding.StatusCompleted

	_, err := s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai", PortfolioData: &data})

	assertAppError(s.T(), err, apperror.ErrInvalidInput, MsgProfileIncomplete)
}

func (s *PortfolioUseCaseTestSuite) Test_Generate_ReservedAndDuplicate() {
	data := completeProfile()

	_, err := s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "Admin", PortfolioData: &data})
	assertAppError(s.T(), err, apperror.ErrConflict, MsgUnavailable)

	_, err = s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai", PortfolioData: &data})
	s.Require().NoError(err)
	_, err = s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai", PortfolioData: &data})
	assertAppError(s.T(), err, apperror.ErrConflict, MsgUnavailable)
}

func (s *PortfolioUseCaseTestSuite) Test_Generate_PublishedNameWinsOverIncompleteProfile() {
	data := completeProfile()
	_, err := s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai", PortfolioData: &data})
	s.Require().NoError(err)

	empty := onboarding.NewPortfolio()
	_, err = s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai", PortfolioData: &empty})

	assertAppError(s.T(), err, apperror.ErrConflict, MsgUnavailable)
}

func (s *PortfolioUseCaseTestSuite) Test_Generate_IdempotentReplay() {
	data := completeProfile()
	input := GeneratePortfolioInput{Username: "kai", PortfolioData: &data, IdempotencyKey: "key-1"}

	first, err := s.generate.Execute(context.Background(), input)
	s.Require().NoError(err)
	second, err := s.generate.Execute(context.Background(), input)
	s.Require().NoError(err)

	s.True(second.Replayed)
	s.Equal(first.URL, second.URL)
	s.Equal(first.CreatedAt, second.CreatedAt)
	s.Len(s.publisher.types(), 1)

	input.IdempotencyKey = "key-2"
	_, err = s.generate.Execute(context.Background(), input)
	assertAppError(s.T(), err, apperror.ErrConflict, MsgUnavailable)
}

func (s *PortfolioUseCaseTestSuite) Test_Generate_ConcurrentClaimRace() {
	data := completeProfile()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "race", PortfolioData: &data})
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperror.ErrConflict):
			conflicts++
		}
	}
	s.Equal(1, successes)
	s.Equal(1, conflicts)
}

func (s *PortfolioUseCaseTestSuite) Test_Get_CountsViews() {
	data := completeProfile()
	_, err := s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai", PortfolioData: &data})
	s.Require().NoError(err)

	rec, err := s.get.Execute(context.Background(), "KAI")
	s.Require().NoError(err)
	s.EqualValues(1, rec.Views)
	rec, err = s.get.Execute(context.Background(), "kai")
	s.Require().NoError(err)
	s.EqualValues(2, rec.Views)

	_, err = s.get.Execute(context.Background(), "")
	assertAppError(s.T(), err, apperror.ErrInvalidInput, MsgUsernameRequired)
	_, err = s.get.Execute(context.Background(), "nobody")
	assertAppError(s.T(), err, apperror.ErrNotFound, "Portfolio not found")
}

func (s *PortfolioUseCaseTestSuite) Test_Update_RecomputesMetadata() {
	data := completeProfile()
	_, err := s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai", PortfolioData: &data})
	s.Require().NoError(err)

	more, _ := onboarding.SaveSectionData(data, onboarding.SectionSkills, onboarding.SkillsData{Skills: []string{"Compositing"}})
	out, err := s.update.Execute(context.Background(), UpdatePortfolioInput{Username: "kai", PortfolioData: &more})
	s.Require().NoError(err)
	s.Equal(s.now.Add(time.Hour), out.UpdatedAt)

	rec, _ := s.repo.FindByUsername(context.Background(), "kai")
	s.Equal(60, rec.Metadata.CompletionPercentage)
	s.Equal([]portfolio.EventType{portfolio.EventGenerated, portfolio.EventUpdated}, s.publisher.types())

	_, err = s.update.Execute(context.Background(), UpdatePortfolioInput{Username: "ghost", PortfolioData: &more})
	assertAppError(s.T(), err, apperror.ErrNotFound, "Portfolio not found")
	_, err = s.update.Execute(context.Background(), UpdatePortfolioInput{Username: "kai"})
	assertAppError(s.T(), err, apperror.ErrInvalidInput, MsgDataRequired)
}

func (s *PortfolioUseCaseTestSuite) Test_Delete() {
	data := completeProfile()
	_, err := s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai", PortfolioData: &data})
	s.Require().NoError(err)

	s.Require().NoError(s.delete.Execute(context.Background(), "kai"))
	assertAppError(s.T(), s.delete.Execute(context.Background(), "kai"), apperror.ErrNotFound, "Portfolio not found")
	assertAppError(s.T(), s.delete.Execute(context.Background(), " "), apperror.ErrInvalidInput, MsgUsernameRequired)
	s.Equal([]portfolio.EventType{portfolio.EventGenerated, portfolio.EventDeleted}, s.publisher.types())

	// the name is free again
	_, err = s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai", PortfolioData: &data})
	s.NoError(err)
}

func (s *PortfolioUseCaseTestSuite) Test_PublisherFailureDoesNotFailPublish() {
	s.publisher.err = errors.New("broker down")
	data := completeProfile()

	_, err := s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: "kai", PortfolioData: &data})

	s.NoError(err)
}

func (s *PortfolioUseCaseTestSuite) Test_List_Paginates() {
	data := completeProfile()
	for i, name := range []string{"aaa", "bbb", "ccc"} {
		s.now = time.Date(2025, 5, 1, i, 0, 0, 0, time.UTC)
		_, err := s.generate.Execute(context.Background(), GeneratePortfolioInput{Username: name, PortfolioData: &data})
		s.Require().NoError(err)
	}

	out, err := s.list.Execute(context.Background(), ListPortfoliosInput{Page: 2, Limit: 2})
	s.Require().NoError(err)
	s.Equal(3, out.Total)
	s.Require().Len(out.Portfolios, 1)
	s.Equal("aaa", out.Portfolios[0].Username)
}

type fakeUploader struct {
	uploads []string
	deleted []string
}

func (f *fakeUploader) Upload(_ context.Context, _ io.Reader, folder, publicID string) (string, error) {
	f.uploads = append(f.uploads, folder+"/"+publicID)
	return "https://media.example.com/" + publicID, nil
}

func (f *fakeUploader) UploadRemote(_ context.Context, url, _, publicID string) (string, error) {
	f.uploads = append(f.uploads, url+"->"+publicID)
	return "https://media.example.com/" + publicID, nil
}

func (f *fakeUploader) Delete(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

func (f *fakeUploader) TransformURL(publicID, transformation string) (string, error) {
	return "https://media.example.com/" + transformation + "/" + publicID, nil
}

func TestProcessPortfolioEvent(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewMemoryPortfolioRepo()
	up := &fakeUploader{}
	uc := NewProcessPortfolioEventUseCase(repo, up, logger.NewNopLogger())

	rec := &portfolio.Record{Username: "kai", PortfolioData: completeProfile()}
	require.NoError(t, repo.Save(ctx, rec))

	err := uc.Execute(ctx, portfolio.Event{Type: portfolio.EventGenerated, PortfolioID: rec.ID, Username: "kai"})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://img.example.com/kai.jpg->portfolios/kai/avatar"}, up.uploads)
	stored, _ := repo.FindByUsername(ctx, "kai")
	require.NotNil(t, stored.Metadata.OgImageURL)
	assert.Equal(t, "https://media.example.com/c_fill,g_auto,w_1200,h_630/portfolios/kai/avatar", *stored.Metadata.OgImageURL)
	assert.Equal(t, "https://media.example.com/c_limit,w_400/portfolios/kai/avatar", *stored.Metadata.ThumbnailURL)

	require.NoError(t, uc.Execute(ctx, portfolio.Event{Type: portfolio.EventDeleted, Username: "kai"}))
	assert.Equal(t, []string{"portfolios/kai/avatar"}, up.deleted)

	// missing records are skipped, not retried
	assert.NoError(t, uc.Execute(ctx, portfolio.Event{Type: portfolio.EventUpdated, Username: "ghost"}))
}

func TestFeedUseCase(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewMemoryPortfolioRepo()
	rec := &portfolio.Record{Username: "kai", URL: "https://app.joinroster.co/kai", PortfolioData: completeProfile(), CreatedAt: time.Now()}
	require.NoError(t, repo.Save(ctx, rec))

	feed, err := NewFeedUseCase(repo, "https://app.joinroster.co", logger.NewNopLogger()).Execute(ctx)
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Kai Lee", feed.Items[0].Title)
	assert.Equal(t, "Motion Designer", feed.Items[0].Description)

	rss, err := feed.ToRss()
	require.NoError(t, err)
	assert.Contains(t, rss, "https://app.joinroster.co/kai")
}

func TestLookupSource(t *testing.T) {
	sources, err := persistence.NewMemorySourceRepo()
	require.NoError(t, err)
	uc := NewLookupSourceUseCase(sources, logger.NewNopLogger())

	src, err := uc.Execute(context.Background(), " https://sonuchoudhary.my.canva.site/portfolio ")
	require.NoError(t, err)
	assert.Equal(t, 95, src.Metadata.ProfileCompleteness)

	_, err = uc.Execute(context.Background(), "https://example.com/missing")
	assertAppError(t, err, apperror.ErrNotFound, "Portfolio not found")
}
