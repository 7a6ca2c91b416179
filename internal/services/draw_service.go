package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/events"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/metrics"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories"
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawServiceImpl runs lucky draws over the full participant registry
type DrawServiceImpl struct {
	repo repositories.ParticipantRepository
	options
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(repo repositories.ParticipantRepository, opts ...Option) *DrawServiceImpl {
	return &DrawServiceImpl{
		repo:    repo,
		options: newOptions(opts),
	}
}

// SelectWinner counts the registry, draws k uniformly from [0, N) and fetches the participant at offset k.
// An empty registry fails with ErrNoParticipants before any offset query.
func (s *DrawServiceImpl) SelectWinner(ctx context.Context) (*models.DrawResult, error) {
	ctx, span := s.tracer.Start(ctx, "DrawService.SelectWinner")
	defer span.End()

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, s.drawFailed(ctx, err)
	}
	span.SetAttributes(attribute.Int64("draw.total_participants", total))
	if total == 0 {
		s.metrics.IncDraw(metrics.OutcomeNoParticipants)
		s.logger.InfoContext(ctx, "Lucky draw skipped, registry is empty")
		return nil, models.ErrNoParticipants
	}

	offset := s.int64N(total)
	span.SetAttributes(attribute.Int64("draw.offset", offset))

	winner, err := s.repo.FindAt(ctx, offset)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			err = fmt.Errorf("%w: no participant at offset %d of %d", models.ErrSelectionFailed, offset, total)
		}
		return nil, s.drawFailed(ctx, err)
	}

	result := &models.DrawResult{
		Winner:            winner,
		TotalParticipants: total,
		Offset:            offset,
		DrawnAt:           s.now().UTC(),
	}
	s.metrics.IncDraw(metrics.OutcomeSelected)
	s.logger.InfoContext(ctx, "Lucky draw winner selected",
		"participantId", winner.ID,
		"couponCode", winner.CouponCode,
		"offset", offset,
		"totalParticipants", total,
	)
	s.publish(ctx, events.Event{
		Type:       events.TypeWinnerDrawn,
		Key:        winner.CouponCode,
		OccurredAt: result.DrawnAt,
		Attributes: map[string]string{
			"participantId":     winner.ID,
			"offset":            strconv.FormatInt(offset, 10),
			"totalParticipants": strconv.FormatInt(total, 10),
		},
	})
	return result, nil
}

func (s *DrawServiceImpl) drawFailed(ctx context.Context, err error) error {
	s.metrics.IncDraw(metrics.OutcomeFailed)
	recordError(trace.SpanFromContext(ctx), err)
	s.logger.ErrorContext(ctx, "Lucky draw failed", "error", err)
	return err
}
