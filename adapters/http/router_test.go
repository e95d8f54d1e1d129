package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio-onboarding/adapters/event"
	"github.com/khoahotran/portfolio-onboarding/adapters/persistence"
	authUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/auth"
	onboardingUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/onboarding"
	portfolioUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/portfolio"
	usernameUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/username"
	"github.com/khoahotran/portfolio-onboarding/internal/config"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
	"github.com/khoahotran/portfolio-onboarding/pkg/auth"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

const (
	ownerEmail    = "owner@roster.dev"
	ownerPassword = "e2e_test_password_123"
	sonuURL       = "https://sonuchoudhary.my.canva.site/portfolio"
)

type APITestSuite struct {
	suite.Suite
	Router *gin.Engine
	repo   *persistence.MemoryPortfolioRepo
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()

	repo := persistence.NewMemoryPortfolioRepo()
	claims := persistence.NewMemoryClaimStore()
	drafts := persistence.NewMemoryDraftRepo()
	sources, err := persistence.NewMemorySourceRepo()
	s.Require().NoError(err)
	publisher := event.NewLogPublisher(log)

	hash, err := auth.HashPassword(ownerPassword)
	s.Require().NoError(err)
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)

	taken := usernameUC.NewTakenSet(config.DefaultReservedUsernames, repo, claims)
	baseURL := "https://app.joinroster.co"

	getUC := portfolioUC.NewGetPortfolioUseCase(repo, log)
	deleteUC := portfolioUC.NewDeletePortfolioUseCase(repo, publisher, log)

	handlers := Handlers{
		Username: NewUsernameHandler(usernameUC.NewCheckUsernameUseCase(taken, log), log),
		Portfolio: NewPortfolioHandler(
			portfolioUC.NewGeneratePortfolioUseCase(repo, claims, taken, publisher, baseURL, 30*time.Second, log),
			getUC,
			portfolioUC.NewUpdatePortfolioUseCase(repo, publisher, log),
			deleteUC,
			portfolioUC.NewLookupSourceUseCase(sources, log),
		),
		Onboarding: NewOnboardingHandler(onboardingUC.NewDraftUseCase(drafts, sources, &nopUploader{}, time.Hour, log)),
		RSS:        NewRSSHandler(portfolioUC.NewFeedUseCase(repo, baseURL, log), log),
		Auth: NewAuthHandler(
			authUC.NewLoginUseCase(authUC.Owner{Email: ownerEmail, PasswordHash: hash}, jwtSvc, log),
			portfolioUC.NewListPortfoliosUseCase(repo, log),
			deleteUC,
			log,
		),
	}

	s.repo = repo
	s.Router = NewRouter(handlers, RouterOptions{
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimiter:    NewRateLimiter(1000, 1000),
		JWT:            jwtSvc,
	}, log)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](s *APITestSuite, rr *httptest.ResponseRecorder) T {
	var v T
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type envelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
	Data    json.RawMessage   `json:"data"`
}

func publishablePortfolio() onboarding.Portfolio {
	p := onboarding.NewPortfolio()
	p, _ = onboarding.SaveSectionData(p, onboarding.SectionProfile, onboarding.ProfileData{
		FirstName: "Kai",
		LastName:  "Lee",
		Title:     "Motion Designer",
		Location:  onboarding.Location{City: "Lisbon", Country: "Portugal"},
		Contact:   onboarding.Contact{Email: "kai@example.com"},
	})
	return p
}

func (s *APITestSuite) TestCheckUsername() {
	rr := s.do(http.MethodPost, "/api/check-username", gin.H{"username": "Admin"})
	s.Equal(http.StatusOK, rr.Code)
	got := decode[CheckUsernameResponse](s, rr)
	s.False(got.Available)
	s.Equal(`Username "admin" is already taken`, got.Message)
	s.Len(got.Suggestions, 6)

	rr = s.do(http.MethodPost, "/api/check-username", gin.H{"username": "kai-lee"})
	s.Equal(http.StatusOK, rr.Code)
	s.True(decode[CheckUsernameResponse](s, rr).Available)

	rr = s.do(http.MethodPost, "/api/check-username", gin.H{"username": "-kai"})
	s.Equal(http.StatusBadRequest, rr.Code)
	got = decode[CheckUsernameResponse](s, rr)
	s.Equal("Username cannot start or end with a hyphen", got.Message)
	s.NotEmpty(got.Suggestions)

	rr = s.do(http.MethodPost, "/api/check-username", "not an object")
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("Username is required", decode[CheckUsernameResponse](s, rr).Message)

	rr = s.do(http.MethodGet, "/api/check-username", nil)
	s.Equal(http.StatusMethodNotAllowed, rr.Code)
}

func (s *APITestSuite) TestPortfolioLifecycle() {
	data := publishablePortfolio()

	rr := s.do(http.MethodPost, "/api/generate-portfolio", gin.H{"username": "Kai", "portfolioData": data})
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	env := decode[envelope](s, rr)
	s.True(env.Success)
	created := GeneratedPortfolioDTO{}
	s.Require().NoError(json.Unmarshal(env.Data, &created))
	s.Equal("kai", created.Username)
	s.Equal("https://app.joinroster.co/kai", created.URL)
	s.Equal(20, created.CompletionPercentage)

	rr = s.do(http.MethodPost, "/api/generate-portfolio", gin.H{"username": "kai", "portfolioData": data})
	s.Equal(http.StatusConflict, rr.Code)
	s.Equal("Username is no longer available", decode[envelope](s, rr).Message)

	rr = s.do(http.MethodGet, "/api/generate-portfolio?username=KAI", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var rec struct {
		Username string `json:"username"`
		Views    int64  `json:"views"`
	}
	s.Require().NoError(json.Unmarshal(decode[envelope](s, rr).Data, &rec))
	s.Equal("kai", rec.Username)
	s.EqualValues(1, rec.Views)

	rr = s.do(http.MethodPut, "/api/generate-portfolio", gin.H{"username": "kai", "portfolioData": data})
	s.Equal(http.StatusOK, rr.Code)
	s.Equal("Portfolio updated successfully", decode[envelope](s, rr).Message)

	rr = s.do(http.MethodDelete, "/api/generate-portfolio?username=kai", nil)
	s.Equal(http.StatusOK, rr.Code)

	rr = s.do(http.MethodGet, "/api/generate-portfolio?username=kai", nil)
	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal("Portfolio not found", decode[envelope](s, rr).Message)
}

func (s *APITestSuite) TestGeneratePortfolio_Rejections() {
	rr := s.do(http.MethodPost, "/api/generate-portfolio", gin.H{"username": "kai"})
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("Username and portfolio data are required", decode[envelope](s, rr).Message)

	rr = s.do(http.MethodPost, "/api/generate-portfolio", gin.H{"username": "kai", "portfolioData": onboarding.NewPortfolio()})
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("Profile section must be completed before generating portfolio", decode[envelope](s, rr).Message)

	rr = s.do(http.MethodPost, "/api/generate-portfolio", gin.H{"username": "k--ai", "portfolioData": publishablePortfolio()})
	s.Equal(http.StatusBadRequest, rr.Code)
	env := decode[envelope](s, rr)
	s.Equal("Invalid username format", env.Message)
	s.Equal("Username cannot have consecutive hyphens", env.Details["username"])

	rr = s.do(http.MethodGet, "/api/generate-portfolio", nil)
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("Username parameter is required", decode[envelope](s, rr).Message)

	rr = s.do(http.MethodPut, "/api/generate-portfolio", gin.H{"username": "ghost", "portfolioData": publishablePortfolio()})
	s.Equal(http.StatusNotFound, rr.Code)
}

func (s *APITestSuite) TestGeneratePortfolio_IdempotencyKey() {
	body := gin.H{"username": "mira", "portfolioData": publishablePortfolio()}

	first := s.do(http.MethodPost, "/api/generate-portfolio", body, HeaderIdempotencyKey, "key-1")
	s.Require().Equal(http.StatusOK, first.Code)

	again := s.do(http.MethodPost, "/api/generate-portfolio", body, HeaderIdempotencyKey, "key-1")
	s.Equal(http.StatusOK, again.Code)
	s.Equal("true", again.Header().Get("Idempotent-Replayed"))
	s.JSONEq(string(decode[envelope](s, first).Data), string(decode[envelope](s, again).Data))

	other := s.do(http.MethodPost, "/api/generate-portfolio", body, HeaderIdempotencyKey, "key-2")
	s.Equal(http.StatusConflict, other.Code)
}

func (s *APITestSuite) TestLookupSource() {
	rr := s.do(http.MethodPost, "/api/portfolio", gin.H{"url": sonuURL})
	s.Require().Equal(http.StatusOK, rr.Code)
	env := decode[envelope](s, rr)
	s.True(env.Success)
	s.Equal("Portfolio retrieved successfully", env.Message)

	rr = s.do(http.MethodPost, "/api/portfolio", gin.H{"url": "https://unknown.example.com"})
	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal("Portfolio not found", decode[envelope](s, rr).Message)
}

func (s *APITestSuite) TestDraftFlow() {
	rr := s.do(http.MethodPost, "/api/onboarding/drafts", gin.H{"sourceUrl": sonuURL})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	var draft DraftDTO
	s.Require().NoError(json.Unmarshal(decode[envelope](s, rr).Data, &draft))
	s.Equal(100, draft.Progress.Percentage)
	base := "/api/onboarding/drafts/" + draft.ID

	rr = s.do(http.MethodPost, base+"/navigate", gin.H{"action": "jump", "sectionId": 5})
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Require().NoError(json.Unmarshal(decode[envelope](s, rr).Data, &draft))
	s.Equal(4, draft.Portfolio.StepperPosition)
	s.Equal("moved", draft.Result)

	rr = s.do(http.MethodPost, base+"/navigate", gin.H{"action": "advance"})
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Require().NoError(json.Unmarshal(decode[envelope](s, rr).Data, &draft))
	s.True(draft.Complete)

	rr = s.do(http.MethodPost, base+"/navigate", gin.H{"action": "sideways"})
	s.Equal(http.StatusBadRequest, rr.Code)

	links := gin.H{"socialLinks": []gin.H{{"platform": "instagram", "url": "https://example.com/me"}}}
	rr = s.do(http.MethodPut, base+"/sections/5", gin.H{"data": links})
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("Please enter a valid Instagram URL", decode[envelope](s, rr).Details["socialLinks[0].url"])

	links = gin.H{"socialLinks": []gin.H{{"platform": "instagram", "url": "https://instagram.com/sonu.edits"}}}
	rr = s.do(http.MethodPut, base+"/sections/5", gin.H{"data": links})
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Contains(rr.Body.String(), `"handle":"@sonu.edits"`)

	rr = s.do(http.MethodGet, "/api/onboarding/drafts/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *APITestSuite) TestDraftPhotoUpload() {
	rr := s.do(http.MethodPost, "/api/onboarding/drafts", nil)
	s.Require().Equal(http.StatusCreated, rr.Code)
	var draft DraftDTO
	s.Require().NoError(json.Unmarshal(decode[envelope](s, rr).Data, &draft))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "me.png")
	s.Require().NoError(err)
	_, _ = part.Write([]byte("png-bytes"))
	s.Require().NoError(w.WriteField("alt", "Kai smiling"))
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/drafts/"+draft.ID+"/photo", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr = httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Contains(rr.Body.String(), "https://media.example.com/onboarding/"+draft.ID+"/profile")
}

func (s *APITestSuite) TestFeed() {
	rr := s.do(http.MethodPost, "/api/generate-portfolio", gin.H{"username": "kai", "portfolioData": publishablePortfolio()})
	s.Require().Equal(http.StatusOK, rr.Code)

	rr = s.do(http.MethodGet, "/api/feed.xml", nil)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Header().Get("Content-Type"), "application/xml")
	s.Contains(rr.Body.String(), "<rss")
	s.Contains(rr.Body.String(), "Kai Lee")
}

func (s *APITestSuite) TestAdminFlow() {
	rr := s.do(http.MethodPost, "/api/admin/auth/login", gin.H{"email": ownerEmail, "password": "wrongpassword"})
	s.Equal(http.StatusUnauthorized, rr.Code)

	rr = s.do(http.MethodPost, "/api/admin/auth/login", gin.H{"email": ownerEmail, "password": ownerPassword})
	s.Require().Equal(http.StatusOK, rr.Code)
	token := decode[map[string]string](s, rr)["access_token"]
	s.Require().NotEmpty(token)

	rr = s.do(http.MethodGet, "/api/admin/portfolios", nil)
	s.Equal(http.StatusUnauthorized, rr.Code)

	rr = s.do(http.MethodPost, "/api/generate-portfolio", gin.H{"username": "kai", "portfolioData": publishablePortfolio()})
	s.Require().Equal(http.StatusOK, rr.Code)

	rr = s.do(http.MethodGet, "/api/admin/portfolios?page=1&limit=10", nil, "Authorization", "Bearer "+token)
	s.Require().Equal(http.StatusOK, rr.Code)
	var list struct {
		Data  []PortfolioSummaryDTO `json:"data"`
		Total int                   `json:"total"`
	}
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &list))
	s.Equal(1, list.Total)
	s.Equal("Kai Lee", list.Data[0].DisplayName)

	rr = s.do(http.MethodDelete, "/api/admin/portfolios/kai", nil, "Authorization", "Bearer "+token)
	s.Equal(http.StatusOK, rr.Code)

	rr = s.do(http.MethodDelete, "/api/admin/portfolios/kai", nil, "Authorization", "Bearer "+token)
	s.Equal(http.StatusNotFound, rr.Code)
}

func (s *APITestSuite) TestMiddleware() {
	rr := s.do(http.MethodGet, "/api/health", nil, HeaderRequestID, "req-42")
	s.Equal(http.StatusOK, rr.Code)
	s.Equal("req-42", rr.Header().Get(HeaderRequestID))

	rr = s.do(http.MethodOptions, "/api/check-username", nil, "Origin", "http://localhost:3000")
	s.Equal(http.StatusNoContent, rr.Code)
	s.Equal("http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	s.Router.GET("/boom", func(*gin.Context) { panic("kaboom") })
	rr = s.do(http.MethodGet, "/boom", nil)
	s.Equal(http.StatusInternalServerError, rr.Code)
	s.False(decode[envelope](s, rr).Success)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(NewRateLimiter(0.001, 2)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	clock := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return clock }

	l.limiter("10.0.0.1")
	clock = clock.Add(rateLimiterIdleTTL / 2)
	l.limiter("10.0.0.2")
	if got := len(l.buckets); got != 2 {
		t.Fatalf("expected 2 buckets, got %d", got)
	}

	clock = clock.Add(rateLimiterIdleTTL)
	l.limiter("10.0.0.3")
	if got := len(l.buckets); got != 1 {
		t.Fatalf("expected idle buckets to be swept, got %d", got)
	}
	if _, ok := l.buckets["10.0.0.3"]; !ok {
		t.Fatal("active bucket was evicted")
	}
}

type nopUploader struct{}

func (nopUploader) Upload(_ context.Context, _ io.Reader, folder, publicID string) (string, error) {
	return "https://media.example.com/" + strings.Trim(folder, "/") + "/" + publicID, nil
}

func (nopUploader) UploadRemote(_ context.Context, url, _, _ string) (string, error) {
	return url, nil
}

func (nopUploader) Delete(context.Context, string) error { return nil }

func (nopUploader) TransformURL(publicID, transformation string) (string, error) {
	return transformation + "/" + publicID, nil
}
