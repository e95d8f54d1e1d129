package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/application/service"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/username"
	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

type GeneratePortfolioUseCase struct {
	repo      portfolio.Repository
	claims    service.ClaimStore
	reserved  ReservedNames
	publisher service.EventPublisher
	baseURL   string
	claimTTL  time.Duration
	logger    logger.Logger
	now       func() time.Time
}

func NewGeneratePortfolioUseCase(
	repo portfolio.Repository,
	claims service.ClaimStore,
	reserved ReservedNames,
	publisher service.EventPublisher,
	baseURL string,
	claimTTL time.Duration,
	log logger.Logger,
) *GeneratePortfolioUseCase {
	return &GeneratePortfolioUseCase{
		repo:      repo,
		claims:    claims,
		reserved:  reserved,
		publisher: publisher,
		baseURL:   baseURL,
		claimTTL:  claimTTL,
		logger:    log,
		now:       time.Now,
	}
}

type GeneratePortfolioInput struct {
	Username       string
	PortfolioData  *onboarding.Portfolio
	IdempotencyKey string
}

type GeneratePortfolioOutput struct {
	Username             string
	URL                  string
	CreatedAt            time.Time
	CompletionPercentage int
	// Replayed is set when the key matched an earlier successful publish.
	Replayed bool
}

func outputOf(rec *portfolio.Record, replayed bool) *GeneratePortfolioOutput {
	return &GeneratePortfolioOutput{
		Username:             rec.Username,
		URL:                  rec.URL,
		CreatedAt:            rec.CreatedAt,
		CompletionPercentage: rec.Metadata.CompletionPercentage,
		Replayed:             replayed,
	}
}

func (uc *GeneratePortfolioUseCase) Execute(ctx context.Context, input GeneratePortfolioInput) (*GeneratePortfolioOutput, error) {
	ctx, span := tracer.Start(ctx, "GeneratePortfolio")
	defer span.End()

	name := username.Normalize(input.Username)
	if name == "" || input.PortfolioData == nil {
		return nil, apperror.NewValidation(MsgDataRequired)
	}
	if err := username.Validate(name); err != nil {
		return nil, apperror.NewFieldErrors(MsgInvalidFormat, map[string]string{"username": err.Error()})
	}
	span.SetAttributes(attribute.String("username", name))

	existing, err := uc.published(ctx, name)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if existing != nil {
		if input.IdempotencyKey != "" && existing.IdempotencyKey == input.IdempotencyKey {
			return outputOf(existing, true), nil
		}
		return nil, apperror.NewConflictMessage(MsgUnavailable)
	}

	if uc.reserved != nil && uc.reserved.IsReserved(name) {
		return nil, apperror.NewConflictMessage(MsgUnavailable)
	}

	data := onboarding.SettleAll(onboarding.FromRecord(*input.PortfolioData))
	if s, ok := data.Section(onboarding.SectionProfile); !ok || s.Status != onboarding.StatusCompleted {
		return nil, apperror.NewValidation(MsgProfileIncomplete)
	}

	token := input.IdempotencyKey
	if token == "" {
		token = uuid.NewString()
	}
	claimed, err := uc.claims.Claim(ctx, name, token, uc.claimTTL)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to claim username", err)
	}
	if !claimed {
		return nil, apperror.NewConflictMessage(MsgUnavailable)
	}
	defer func() {
		if err := uc.claims.Release(context.WithoutCancel(ctx), name, token); err != nil {
			uc.logger.Warn("Failed to release username claim", zap.String("username", name), zap.Error(err))
		}
	}()

	now := uc.now().UTC()
	rec := &portfolio.Record{
		ID:             uuid.New(),
		Username:       name,
		PortfolioData:  data,
		URL:            portfolio.PublicURL(uc.baseURL, name),
		IsPublished:    true,
		IdempotencyKey: input.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	rec.Refresh(now)

	if err := uc.repo.Save(ctx, rec); err != nil {
		if errors.Is(err, portfolio.ErrUsernameTaken) {
			if out, rerr := uc.replay(ctx, name, input.IdempotencyKey); rerr != nil || out != nil {
				return out, rerr
			}
			return nil, apperror.NewConflictMessage(MsgUnavailable)
		}
		span.RecordError(err)
		uc.logger.Error("Failed to save portfolio", err, zap.String("username", name))
		return nil, apperror.NewInternal("failed to save portfolio", err)
	}

	uc.logger.Info("Portfolio generated", zap.String("username", name), zap.String("url", rec.URL))
	publishEvent(ctx, uc.publisher, uc.logger, portfolio.EventGenerated, rec)
	return outputOf(rec, false), nil
}

// published returns the record already stored under name, or nil.
func (uc *GeneratePortfolioUseCase) published(ctx context.Context, name string) (*portfolio.Record, error) {
	existing, err := uc.repo.FindByUsername(ctx, name)
	if errors.Is(err, portfolio.ErrPortfolioNotFound) {
		return nil, nil
	}
	if err != nil {
		uc.logger.Error("Failed to look up portfolio", err, zap.String("username", name))
		return nil, apperror.NewInternal("failed to look up portfolio", err)
	}
	return existing, nil
}

// replay returns the stored result when key was already used for name.
func (uc *GeneratePortfolioUseCase) replay(ctx context.Context, name, key string) (*GeneratePortfolioOutput, error) {
	if key == "" {
		return nil, nil
	}
	existing, err := uc.published(ctx, name)
	if err != nil || existing == nil || existing.IdempotencyKey != key {
		return nil, err
	}
	return outputOf(existing, true), nil
}
