package services

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks ParticipantService,DrawService,AuthService

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/events"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/metrics"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
)

const tracerName = "github.com/ArowuTest/mawadha-giveaway-backend/internal/services"

// ParticipantService defines the interface for registration and participant lookups
type ParticipantService interface {
	// Register validates req and stores a new participant, or returns the existing one for the phone
	Register(ctx context.Context, req *models.RegistrationRequest) (*models.RegistrationResult, error)

	// FindByCouponCode retrieves the participant holding code
	FindByCouponCode(ctx context.Context, code string) (*models.Participant, error)

	// FindByPhone retrieves the participant registered under the normalized phone
	FindByPhone(ctx context.Context, countryCode, phone string) (*models.Participant, error)

	// List retrieves one 1-based page of participants, newest first
	List(ctx context.Context, page, pageSize int) (*models.ParticipantPage, error)

	// Count returns the number of registered participants
	Count(ctx context.Context) (int64, error)
}

// DrawService defines the interface for lucky draw operations
type DrawService interface {
	// SelectWinner picks one participant uniformly at random from the whole registry
	SelectWinner(ctx context.Context) (*models.DrawResult, error)
}

// AuthService defines the interface for admin authentication
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// options carries the collaborators shared by every service
type options struct {
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher events.Publisher
	tracer    trace.Tracer
	now       func() time.Time
	int64N    func(n int64) int64
}

// Option configures a service.
type Option func(*options)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithPublisher sets the event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

// WithTracer sets the tracer used for service spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithClock replaces the clock stamping results.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithRandomSource replaces the uniform [0, n) source used by the draw.
func WithRandomSource(int64N func(n int64) int64) Option {
	return func(o *options) {
		o.int64N = int64N
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:    slog.Default(),
		publisher: events.NoopPublisher{},
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
		int64N:    rand.Int64N,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.metrics == nil {
		o.metrics = metrics.New()
	}
	return o
}

// publish sends event and logs, never returns, a failure
func (o options) publish(ctx context.Context, event events.Event) {
	if err := o.publisher.Publish(ctx, event); err != nil {
		o.logger.WarnContext(ctx, "Failed to publish event", "type", event.Type, "key", event.Key, "error", err)
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
