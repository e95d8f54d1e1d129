package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
	"github.com/khoahotran/portfolio-onboarding/pkg/auth"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

// Owner is the single admin account, read from configuration.
type Owner struct {
	Email        string
	PasswordHash string
}

type LoginUseCase struct {
	owner  Owner
	jwtSvc *auth.JWTService
	logger logger.Logger
}

func NewLoginUseCase(owner Owner, jwtSvc *auth.JWTService, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		owner:  owner,
		jwtSvc: jwtSvc,
		logger: log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken string
}

var tracer = otel.Tracer("auth_usecase")

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	_, span := tracer.Start(ctx, "Execute")
	defer span.End()

	if uc.owner.Email == "" || uc.owner.PasswordHash == "" {
		err := apperror.NewUnauthorized("admin login is disabled", nil)
		span.RecordError(err)
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(uc.owner.Email))) == 1
	// bcrypt runs even when the email does not match
	passwordOK := auth.CheckPasswordHash(input.Password, uc.owner.PasswordHash)
	if !emailOK || !passwordOK {
		err := apperror.NewUnauthorized("email or password is incorrect", nil)
		span.RecordError(err)
		uc.logger.Warn("Admin login rejected", zap.String("email", email))
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(email)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("email", email))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("email", email))
	return &LoginOutput{AccessToken: token}, nil
}
