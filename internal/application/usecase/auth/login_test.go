package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
	"github.com/khoahotran/portfolio-onboarding/pkg/auth"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

func newLogin(t *testing.T) (*LoginUseCase, *auth.JWTService) {
	t.Helper()
	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	return NewLoginUseCase(Owner{Email: "Owner@Roster.dev", PasswordHash: hash}, jwtSvc, logger.NewNopLogger()), jwtSvc
}

func TestLogin_Success(t *testing.T) {
	uc, jwtSvc := newLogin(t)

	out, err := uc.Execute(context.Background(), LoginInput{Email: " owner@roster.dev", Password: "s3cret!"})
	require.NoError(t, err)

	claims, err := jwtSvc.ValidateToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "owner@roster.dev", claims.Email)
}

func TestLogin_WrongCredentials(t *testing.T) {
	uc, _ := newLogin(t)

	_, err := uc.Execute(context.Background(), LoginInput{Email: "owner@roster.dev", Password: "nope"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = uc.Execute(context.Background(), LoginInput{Email: "intruder@roster.dev", Password: "s3cret!"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLogin_Disabled(t *testing.T) {
	uc := NewLoginUseCase(Owner{}, auth.NewJWTService("x", time.Hour), logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), LoginInput{Email: "a@b.c", Password: "x"})

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
