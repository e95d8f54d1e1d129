package username

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	domain "github.com/khoahotran/portfolio-onboarding/internal/domain/username"
	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

var tracer = otel.Tracer("username_usecase")

type CheckUsernameUseCase struct {
	taken  domain.TakenChecker
	logger logger.Logger
	now    func() time.Time
}

func NewCheckUsernameUseCase(taken domain.TakenChecker, log logger.Logger) *CheckUsernameUseCase {
	return &CheckUsernameUseCase{taken: taken, logger: log, now: time.Now}
}

type CheckUsernameInput struct {
	Username string
}

type CheckUsernameOutput struct {
	Username    string
	Verdict     domain.Verdict
	Message     string
	Suggestions []string
}

func (o *CheckUsernameOutput) Available() bool {
	return o.Verdict == domain.VerdictAvailable
}

func (uc *CheckUsernameUseCase) Execute(ctx context.Context, input CheckUsernameInput) (*CheckUsernameOutput, error) {
	ctx, span := tracer.Start(ctx, "CheckUsername")
	defer span.End()

	name := domain.Normalize(input.Username)
	span.SetAttributes(attribute.String("username", name))

	if err := domain.Validate(name); err != nil {
		out := &CheckUsernameOutput{Username: name, Verdict: domain.VerdictInvalid, Message: err.Error()}
		// the stripped base may be empty ("!!"); numeric and suffix
		// candidates are still offered
		if name != "" {
			suggestions, err := uc.suggest(ctx, domain.SuggestionBase(name))
			if err != nil {
				span.RecordError(err)
				return nil, err
			}
			out.Suggestions = suggestions
		}
		return out, nil
	}

	now := uc.now()
	candidates := domain.Candidates(name, now)
	taken, err := uc.taken.Taken(ctx, append([]string{name}, candidates...))
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to check username", err, zap.String("username", name))
		return nil, apperror.NewInternal("failed to check username", err)
	}

	if taken[name] {
		span.SetAttributes(attribute.String("verdict", string(domain.VerdictTaken)))
		return &CheckUsernameOutput{
			Username:    name,
			Verdict:     domain.VerdictTaken,
			Message:     fmt.Sprintf("Username %q is already taken", name),
			Suggestions: domain.Suggest(name, now, taken),
		}, nil
	}

	span.SetAttributes(attribute.String("verdict", string(domain.VerdictAvailable)))
	return &CheckUsernameOutput{
		Username: name,
		Verdict:  domain.VerdictAvailable,
		Message:  fmt.Sprintf("Username %q is available", name),
	}, nil
}

func (uc *CheckUsernameUseCase) suggest(ctx context.Context, base string) ([]string, error) {
	now := uc.now()
	taken, err := uc.taken.Taken(ctx, domain.Candidates(base, now))
	if err != nil {
		uc.logger.Error("Failed to look up suggestions", err, zap.String("base", base))
		return nil, apperror.NewInternal("failed to look up suggestions", err)
	}
	return domain.Suggest(base, now, taken), nil
}
