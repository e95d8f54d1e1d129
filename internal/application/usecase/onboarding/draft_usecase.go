package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/application/service"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/apperror"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

var tracer = otel.Tracer("onboarding_usecase")

type NavigateAction string

const (
	ActionAdvance NavigateAction = "advance"
	ActionRetreat NavigateAction = "retreat"
	ActionGoTo    NavigateAction = "goto"
	ActionJump    NavigateAction = "jump"
)

// DraftUseCase runs the wizard on the server. Drafts are stored as
// snapshots and rehydrated with onboarding.Load on every read.
type DraftUseCase struct {
	drafts   onboarding.DraftRepository
	sources  portfolio.SourceRepository
	uploader service.Uploader
	ttl      time.Duration
	logger   logger.Logger
	now      func() time.Time
}

func NewDraftUseCase(
	drafts onboarding.DraftRepository,
	sources portfolio.SourceRepository,
	uploader service.Uploader,
	ttl time.Duration,
	log logger.Logger,
) *DraftUseCase {
	return &DraftUseCase{
		drafts:   drafts,
		sources:  sources,
		uploader: uploader,
		ttl:      ttl,
		logger:   log,
		now:      time.Now,
	}
}

type DraftOutput struct {
	Draft    *onboarding.Draft
	Progress onboarding.Progress
	Result   onboarding.Result
}

func (o *DraftOutput) Complete() bool {
	return o.Result == onboarding.WizardComplete
}

func (uc *DraftUseCase) output(d *onboarding.Draft, res onboarding.Result) *DraftOutput {
	return &DraftOutput{Draft: d, Progress: onboarding.ProgressOf(d.Portfolio), Result: res}
}

func (uc *DraftUseCase) load(ctx context.Context, id uuid.UUID) (*onboarding.Draft, error) {
	d, err := uc.drafts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, onboarding.ErrDraftNotFound) {
			return nil, apperror.NewNotFound("Draft", id.String())
		}
		return nil, apperror.NewInternal("failed to load draft", err)
	}
	d.Portfolio = onboarding.Load(d.Portfolio)
	return d, nil
}

// store persists the aggregate without its current overlay and returns the
// live aggregate back to d. The active step is not settled here: only
// navigation decides verdicts.
func (uc *DraftUseCase) store(ctx context.Context, d *onboarding.Draft) error {
	live := d.Portfolio
	d.UpdatedAt = uc.now().UTC()
	d.Portfolio = onboarding.Detach(live)
	err := uc.drafts.Save(ctx, d, uc.ttl)
	d.Portfolio = onboarding.Load(d.Portfolio)
	if err != nil {
		uc.logger.Error("Failed to save draft", err, zap.String("draft_id", d.ID.String()))
		return apperror.NewInternal("failed to save draft", err)
	}
	return nil
}

type StartDraftInput struct {
	SourceURL string
}

func (uc *DraftUseCase) ExecuteStart(ctx context.Context, input StartDraftInput) (*DraftOutput, error) {
	ctx, span := tracer.Start(ctx, "StartDraft")
	defer span.End()

	p := onboarding.NewPortfolio()
	sourceURL := strings.TrimSpace(input.SourceURL)
	if sourceURL != "" {
		src, err := uc.sources.FindByURL(ctx, sourceURL)
		if err != nil {
			if errors.Is(err, portfolio.ErrSourceNotFound) {
				return nil, apperror.NewNotFound("Portfolio", sourceURL)
			}
			return nil, apperror.NewInternal("failed to look up source portfolio", err)
		}
		imported := src.Portfolio
		imported.StepperPosition = 0
		p = onboarding.FromRecord(imported)
	}

	now := uc.now().UTC()
	d := &onboarding.Draft{
		ID:        uuid.New(),
		SourceURL: sourceURL,
		Portfolio: p,
		CreatedAt: now,
	}
	if err := uc.store(ctx, d); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("draft_id", d.ID.String()))
	uc.logger.Info("Draft started", zap.String("draft_id", d.ID.String()), zap.Bool("imported", sourceURL != ""))
	return uc.output(d, onboarding.Moved), nil
}

func (uc *DraftUseCase) ExecuteGet(ctx context.Context, id uuid.UUID) (*DraftOutput, error) {
	d, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.output(d, onboarding.Ignored), nil
}

type SaveSectionInput struct {
	DraftID   uuid.UUID
	SectionID int
	Data      json.RawMessage
}

func (uc *DraftUseCase) ExecuteSaveSection(ctx context.Context, input SaveSectionInput) (*DraftOutput, error) {
	ctx, span := tracer.Start(ctx, "SaveSection")
	defer span.End()
	span.SetAttributes(attribute.Int("section_id", input.SectionID))

	d, err := uc.load(ctx, input.DraftID)
	if err != nil {
		return nil, err
	}

	data, err := onboarding.DecodeSectionData(input.SectionID, input.Data)
	if err != nil {
		return nil, apperror.NewInvalidInput("malformed section data", err)
	}
	data, fields := onboarding.PrepareSectionData(data, uc.now())
	if len(fields) > 0 {
		return nil, apperror.NewFieldErrors("Please correct the highlighted fields", fields)
	}

	next, err := onboarding.SaveSectionData(d.Portfolio, input.SectionID, data)
	if err != nil {
		if errors.Is(err, onboarding.ErrUnknownSection) {
			return nil, apperror.NewNotFound("Section", fmt.Sprint(input.SectionID))
		}
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	d.Portfolio = next

	if err := uc.store(ctx, d); err != nil {
		return nil, err
	}
	return uc.output(d, onboarding.Ignored), nil
}

type NavigateInput struct {
	DraftID   uuid.UUID
	Action    NavigateAction
	Target    int
	SectionID int
}

func (uc *DraftUseCase) ExecuteNavigate(ctx context.Context, input NavigateInput) (*DraftOutput, error) {
	ctx, span := tracer.Start(ctx, "Navigate")
	defer span.End()

	d, err := uc.load(ctx, input.DraftID)
	if err != nil {
		return nil, err
	}

	var (
		next onboarding.Portfolio
		res  onboarding.Result
	)
	switch input.Action {
	case ActionAdvance:
		next, res = onboarding.Advance(d.Portfolio)
	case ActionRetreat:
		next, res = onboarding.Retreat(d.Portfolio)
	case ActionGoTo:
		next, res = onboarding.GoTo(d.Portfolio, input.Target)
	case ActionJump:
		next, res = onboarding.JumpToStep(d.Portfolio, input.SectionID)
	default:
		return nil, apperror.NewValidation(fmt.Sprintf("Unknown navigation action %q", input.Action))
	}
	span.SetAttributes(attribute.String("result", res.String()))

	if res != onboarding.Moved {
		return uc.output(d, res), nil
	}
	d.Portfolio = next
	if err := uc.store(ctx, d); err != nil {
		return nil, err
	}
	return uc.output(d, res), nil
}

type UploadPhotoInput struct {
	DraftID uuid.UUID
	File    io.Reader
	Alt     string
}

func (uc *DraftUseCase) ExecuteUploadPhoto(ctx context.Context, input UploadPhotoInput) (*DraftOutput, error) {
	ctx, span := tracer.Start(ctx, "UploadPhoto")
	defer span.End()

	if uc.uploader == nil {
		return nil, apperror.NewInternal("media storage is not configured", nil)
	}

	d, err := uc.load(ctx, input.DraftID)
	if err != nil {
		return nil, err
	}

	folder := fmt.Sprintf("onboarding/%s", d.ID.String())
	url, err := uc.uploader.Upload(ctx, input.File, folder, "profile")
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to upload profile photo", err, zap.String("draft_id", d.ID.String()))
		return nil, apperror.NewInternal("failed to upload photo", err)
	}

	next, err := onboarding.SaveSectionData(d.Portfolio, onboarding.SectionPhoto, onboarding.PhotoData{
		ProfileImage: onboarding.Image{URL: url, Alt: input.Alt},
	})
	if err != nil {
		return nil, apperror.NewNotFound("Section", fmt.Sprint(onboarding.SectionPhoto))
	}
	d.Portfolio = next

	if err := uc.store(ctx, d); err != nil {
		return nil, err
	}
	return uc.output(d, onboarding.Ignored), nil
}
