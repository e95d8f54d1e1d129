package portfolio

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/application/service"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

const (
	MsgDataRequired      = "Username and portfolio data are required"
	MsgUsernameRequired  = "Username parameter is required"
	MsgInvalidFormat     = "Invalid username format"
	MsgUnavailable       = "Username is no longer available"
	MsgProfileIncomplete = "Profile section must be completed before generating portfolio"
)

var tracer = otel.Tracer("portfolio_usecase")

// ReservedNames reports usernames that can never be published.
type ReservedNames interface {
	IsReserved(name string) bool
}

func notFound(username string) *apperror.AppError {
	return apperror.NewNotFound("Portfolio", username)
}

// publishEvent is best effort: the change is already stored, so a broker
// failure is logged and not returned.
func publishEvent(ctx context.Context, pub service.EventPublisher, log logger.Logger, t portfolio.EventType, rec *portfolio.Record) {
	if pub == nil {
		return
	}
	e := portfolio.Event{
		Type:           t,
		PortfolioID:    rec.ID,
		Username:       rec.Username,
		ImageURL:       rec.ProfileImageURL(),
		AvatarPublicID: rec.Metadata.AvatarPublicID,
		OccurredAt:     time.Now().UTC(),
	}
	if err := pub.PublishPortfolioEvent(context.WithoutCancel(ctx), e); err != nil {
		log.Error("Failed to publish portfolio event", err,
			zap.String("event_type", string(t)),
			zap.String("username", rec.Username),
		)
	}
}
