package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/config"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/events"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/metrics"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/utils"
)

const (
	minNameLength          = 2
	maxAttractionReasonLen = 1000
	minAge                 = 0
	maxAge                 = 120

	fallbackPageSize = 10
)

// CouponGenerator produces a candidate coupon code for a participant name
type CouponGenerator interface {
	Generate(name string) string
}

// Compile-time check to ensure ParticipantServiceImpl implements ParticipantService
var _ ParticipantService = (*ParticipantServiceImpl)(nil)

// ParticipantServiceImpl handles registration, lookups and the admin listing
type ParticipantServiceImpl struct {
	repo            repositories.ParticipantRepository
	coupons         CouponGenerator
	couponAttempts  int
	defaultPageSize int
	maxPageSize     int
	options
}

// NewParticipantService creates a new ParticipantServiceImpl
func NewParticipantService(
	repo repositories.ParticipantRepository,
	coupons CouponGenerator,
	cfg config.DrawConfig,
	opts ...Option,
) *ParticipantServiceImpl {
	defaultPageSize := cfg.DefaultPageSize
	if defaultPageSize <= 0 {
		defaultPageSize = fallbackPageSize
	}
	return &ParticipantServiceImpl{
		repo:            repo,
		coupons:         coupons,
		couponAttempts:  max(cfg.CouponAttempts, 1),
		defaultPageSize: defaultPageSize,
		maxPageSize:     max(cfg.MaxPageSize, defaultPageSize),
		options:         newOptions(opts),
	}
}

// Register validates req, then returns the existing participant for (countryCode, phone) or creates a new one.
// A coupon collision regenerates the code up to the configured number of attempts.
func (s *ParticipantServiceImpl) Register(ctx context.Context, req *models.RegistrationRequest) (*models.RegistrationResult, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipantService.Register")
	defer span.End()

	candidate, err := buildParticipant(req)
	if err != nil {
		s.metrics.IncRegistration(metrics.OutcomeInvalid)
		return nil, err
	}
	span.SetAttributes(attribute.String("participant.country_code", candidate.CountryCode))

	existing, err := s.repo.FindByPhone(ctx, candidate.CountryCode, candidate.Phone)
	if err == nil {
		return s.alreadyRegistered(ctx, span, existing), nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, s.registrationFailed(ctx, span, err)
	}

	for attempt := 1; attempt <= s.couponAttempts; attempt++ {
		candidate.CouponCode = s.coupons.Generate(candidate.Name)

		stored, err := s.repo.Insert(ctx, candidate)
		switch {
		case err == nil:
			s.metrics.IncRegistration(metrics.OutcomeCreated)
			span.SetAttributes(attribute.String("participant.id", stored.ID))
			s.logger.InfoContext(ctx, "Participant registered",
				"participantId", stored.ID,
				"couponCode", stored.CouponCode,
				"countryCode", stored.CountryCode,
				"attempt", attempt,
			)
			s.publish(ctx, events.Event{
				Type:       events.TypeParticipantRegistered,
				Key:        stored.CouponCode,
				OccurredAt: stored.CreatedAt,
				Attributes: map[string]string{
					"participantId": stored.ID,
					"countryCode":   stored.CountryCode,
				},
			})
			return &models.RegistrationResult{Participant: stored}, nil

		case errors.Is(err, models.ErrDuplicateCoupon):
			s.metrics.IncCouponCollision()
			s.logger.WarnContext(ctx, "Coupon code collision, regenerating", "couponCode", candidate.CouponCode, "attempt", attempt)

		case errors.Is(err, models.ErrDuplicatePhone):
			// a concurrent registration for the same phone won the insert
			existing, err := s.repo.FindByPhone(ctx, candidate.CountryCode, candidate.Phone)
			if err != nil {
				return nil, s.registrationFailed(ctx, span, err)
			}
			return s.alreadyRegistered(ctx, span, existing), nil

		default:
			return nil, s.registrationFailed(ctx, span, err)
		}
	}

	return nil, s.registrationFailed(ctx, span, models.ErrCouponExhausted)
}

func (s *ParticipantServiceImpl) alreadyRegistered(ctx context.Context, span trace.Span, existing *models.Participant) *models.RegistrationResult {
	s.metrics.IncRegistration(metrics.OutcomeExisting)
	span.SetAttributes(attribute.String("participant.id", existing.ID), attribute.Bool("participant.existing", true))
	s.logger.InfoContext(ctx, "Participant already registered", "participantId", existing.ID, "couponCode", existing.CouponCode)
	return &models.RegistrationResult{Participant: existing, AlreadyRegistered: true}
}

func (s *ParticipantServiceImpl) registrationFailed(ctx context.Context, span trace.Span, err error) error {
	s.metrics.IncRegistration(metrics.OutcomeFailed)
	recordError(span, err)
	s.logger.ErrorContext(ctx, "Registration failed", "error", err)
	return err
}

// buildParticipant normalizes req and collects every field violation
func buildParticipant(req *models.RegistrationRequest) (*models.Participant, error) {
	verr := models.NewValidationError()

	name := strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(name) < minNameLength {
		verr.Add("name", fmt.Sprintf("name must be at least %d characters", minNameLength))
	}

	countryCode := strings.TrimSpace(req.CountryCode)
	phone := utils.NormalizePhone(req.Phone)
	validatePhoneFields(verr, countryCode, phone)

	if req.Age <= minAge || req.Age >= maxAge {
		verr.Add("age", fmt.Sprintf("age must be between %d and %d", minAge+1, maxAge-1))
	}

	status := models.MaritalStatus(strings.TrimSpace(req.MaritalStatus))
	if !status.Valid() {
		verr.Add("maritalStatus", "maritalStatus must be one of Single, Engaged, Married")
	}

	reason := strings.TrimSpace(req.AttractionReason)
	if utf8.RuneCountInString(reason) > maxAttractionReasonLen {
		verr.Add("attractionReason", fmt.Sprintf("attractionReason must be at most %d characters", maxAttractionReasonLen))
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return &models.Participant{
		Name:             name,
		CountryCode:      countryCode,
		Phone:            phone,
		Age:              req.Age,
		MaritalStatus:    status,
		AttractionReason: reason,
	}, nil
}

// validatePhoneFields checks an already normalized phone against the rule for countryCode
func validatePhoneFields(verr *models.ValidationError, countryCode, phone string) {
	rule, err := utils.LookupCountryCode(countryCode)
	if err != nil {
		verr.Add("countryCode", "unsupported country code")
	}
	switch {
	case phone == "":
		verr.Add("phone", "phone is required")
	case err == nil && !utils.ValidatePhone(phone, countryCode):
		verr.Add("phone", "phone must match the format "+rule.Format)
	}
}

// FindByCouponCode retrieves the participant holding code
func (s *ParticipantServiceImpl) FindByCouponCode(ctx context.Context, code string) (*models.Participant, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipantService.FindByCouponCode")
	defer span.End()

	code = strings.TrimSpace(code)
	if code == "" {
		verr := models.NewValidationError()
		verr.Add("code", "coupon code is required")
		return nil, verr
	}

	participant, err := s.repo.FindByCouponCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.metrics.IncCouponLookup(false)
		} else {
			recordError(span, err)
		}
		return nil, err
	}
	s.metrics.IncCouponLookup(true)
	return participant, nil
}

// FindByPhone normalizes phone, validates it for countryCode and looks up the exact match
func (s *ParticipantServiceImpl) FindByPhone(ctx context.Context, countryCode, phone string) (*models.Participant, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipantService.FindByPhone")
	defer span.End()

	countryCode = strings.TrimSpace(countryCode)
	phone = utils.NormalizePhone(phone)
	verr := models.NewValidationError()
	validatePhoneFields(verr, countryCode, phone)
	if verr.HasErrors() {
		return nil, verr
	}

	participant, err := s.repo.FindByPhone(ctx, countryCode, phone)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		recordError(span, err)
	}
	return participant, err
}

// List retrieves one page of participants newest first. Count and page run concurrently.
func (s *ParticipantServiceImpl) List(ctx context.Context, page, pageSize int) (*models.ParticipantPage, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipantService.List")
	defer span.End()

	page, pageSize = s.normalizePaging(page, pageSize)
	offset := int64(page-1) * int64(pageSize)

	var (
		total int64
		items []*models.Participant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, offset, int64(pageSize))
		return err
	})
	if err := g.Wait(); err != nil {
		recordError(span, err)
		s.logger.ErrorContext(ctx, "Failed to list participants", "page", page, "pageSize", pageSize, "error", err)
		return nil, err
	}
	if items == nil {
		items = []*models.Participant{}
	}

	return &models.ParticipantPage{
		Items:      items,
		TotalCount: total,
		TotalPages: totalPages(total, pageSize),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// Count returns the number of registered participants
func (s *ParticipantServiceImpl) Count(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipantService.Count")
	defer span.End()

	count, err := s.repo.Count(ctx)
	if err != nil {
		recordError(span, err)
		return 0, err
	}
	return count, nil
}

func (s *ParticipantServiceImpl) normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	return page, pageSize
}

// totalPages is ceil(total / pageSize)
func totalPages(total int64, pageSize int) int64 {
	size := int64(pageSize)
	return (total + size - 1) / size
}
