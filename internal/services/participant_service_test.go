package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/config"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/events"
	eventmocks "github.com/ArowuTest/mawadha-giveaway-backend/internal/events/mocks"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/metrics"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories/memory"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories/mocks"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/utils"
)

var testDrawConfig = config.DrawConfig{CouponAttempts: 3, DefaultPageSize: 10, MaxPageSize: 100}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedCoupons hands out codes in order and repeats the last one
type fixedCoupons struct {
	codes []string
	calls int
}

func (f *fixedCoupons) Generate(string) string {
	code := f.codes[min(f.calls, len(f.codes)-1)]
	f.calls++
	return code
}

func aishaRequest() *models.RegistrationRequest {
	return &models.RegistrationRequest{
		Name:          "Aisha Khan",
		CountryCode:   "+971",
		Phone:         "501234567",
		Age:           29,
		MaritalStatus: "Single",
	}
}

type ParticipantServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	repo      *mocks.MockParticipantRepository
	publisher *eventmocks.MockPublisher
	coupons   *fixedCoupons
	metrics   *metrics.Metrics
	service   *ParticipantServiceImpl
	ctx       context.Context
}

func TestParticipantServiceSuite(t *testing.T) {
	suite.Run(t, new(ParticipantServiceSuite))
}

func (s *ParticipantServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.repo = mocks.NewMockParticipantRepository(s.ctrl)
	s.publisher = eventmocks.NewMockPublisher(s.ctrl)
	s.coupons = &fixedCoupons{codes: []string{"AI12345001", "AI54321002", "AI99999003"}}
	s.metrics = metrics.New()
	s.service = NewParticipantService(s.repo, s.coupons, testDrawConfig,
		WithLogger(quietLogger()),
		WithMetrics(s.metrics),
		WithPublisher(s.publisher),
	)
}

func (s *ParticipantServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ParticipantServiceSuite) stored(p *models.Participant) *models.Participant {
	out := *p
	out.ID = "participant-1"
	return &out
}

func (s *ParticipantServiceSuite) TestRegister_CreatesParticipant() {
	s.repo.EXPECT().FindByPhone(gomock.Any(), "+971", "501234567").Return(nil, models.ErrNotFound)
	s.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *models.Participant) (*models.Participant, error) {
			s.Equal("Aisha Khan", p.Name)
			s.Equal("AI12345001", p.CouponCode)
			s.Equal(models.MaritalStatusSingle, p.MaritalStatus)
			return s.stored(p), nil
		})
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e events.Event) error {
			s.Equal(events.TypeParticipantRegistered, e.Type)
			s.Equal("AI12345001", e.Key)
			s.Equal("participant-1", e.Attributes["participantId"])
			return nil
		})

	result, err := s.service.Register(s.ctx, aishaRequest())
	s.Require().NoError(err)
	s.False(result.AlreadyRegistered)
	s.Equal("AI12345001", result.Participant.CouponCode)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(metrics.OutcomeCreated)))
}

func (s *ParticipantServiceSuite) TestRegister_NormalizesInput() {
	req := aishaRequest()
	req.Name = "  Aisha Khan "
	req.Phone = " 50-123 4567 "
	req.CountryCode = " +971"
	req.AttractionReason = "  the grand prize  "

	s.repo.EXPECT().FindByPhone(gomock.Any(), "+971", "501234567").Return(nil, models.ErrNotFound)
	s.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *models.Participant) (*models.Participant, error) {
			s.Equal("Aisha Khan", p.Name)
			s.Equal("501234567", p.Phone)
			s.Equal("+971", p.CountryCode)
			s.Equal("the grand prize", p.AttractionReason)
			return s.stored(p), nil
		})
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.Register(s.ctx, req)
	s.NoError(err)
}

func (s *ParticipantServiceSuite) TestRegister_ExistingPhoneReturnsExistingCoupon() {
	existing := &models.Participant{ID: "participant-0", CountryCode: "+971", Phone: "501234567", CouponCode: "AI11111111"}
	s.repo.EXPECT().FindByPhone(gomock.Any(), "+971", "501234567").Return(existing, nil)
	s.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	result, err := s.service.Register(s.ctx, aishaRequest())
	s.Require().NoError(err)
	s.True(result.AlreadyRegistered)
	s.Equal("AI11111111", result.Participant.CouponCode)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(metrics.OutcomeExisting)))
}

func (s *ParticipantServiceSuite) TestRegister_ConcurrentDuplicateResolvesToExisting() {
	existing := &models.Participant{ID: "participant-0", CountryCode: "+971", Phone: "501234567", CouponCode: "AI11111111"}
	gomock.InOrder(
		s.repo.EXPECT().FindByPhone(gomock.Any(), "+971", "501234567").Return(nil, models.ErrNotFound),
		s.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil, models.ErrDuplicatePhone),
		s.repo.EXPECT().FindByPhone(gomock.Any(), "+971", "501234567").Return(existing, nil),
	)

	result, err := s.service.Register(s.ctx, aishaRequest())
	s.Require().NoError(err)
	s.True(result.AlreadyRegistered)
	s.Equal("participant-0", result.Participant.ID)
}

func (s *ParticipantServiceSuite) TestRegister_RegeneratesOnCouponCollision() {
	s.repo.EXPECT().FindByPhone(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrNotFound)
	gomock.InOrder(
		s.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil, models.ErrDuplicateCoupon),
		s.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *models.Participant) (*models.Participant, error) {
				return s.stored(p), nil
			}),
	)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.service.Register(s.ctx, aishaRequest())
	s.Require().NoError(err)
	s.Equal("AI54321002", result.Participant.CouponCode)
	s.Equal(2, s.coupons.calls)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CouponCollisions))
}

func (s *ParticipantServiceSuite) TestRegister_CouponExhausted() {
	s.repo.EXPECT().FindByPhone(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrNotFound)
	s.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil, models.ErrDuplicateCoupon).Times(testDrawConfig.CouponAttempts)

	_, err := s.service.Register(s.ctx, aishaRequest())
	s.ErrorIs(err, models.ErrCouponExhausted)
	s.Equal(testDrawConfig.CouponAttempts, s.coupons.calls)
}

func (s *ParticipantServiceSuite) TestRegister_StorageUnavailable() {
	storageErr := fmt.Errorf("%w: %w", models.ErrStorageUnavailable, errors.New("connection refused"))

	s.Run("on phone lookup", func() {
		s.repo.EXPECT().FindByPhone(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, storageErr)

		_, err := s.service.Register(s.ctx, aishaRequest())
		s.ErrorIs(err, models.ErrStorageUnavailable)
	})

	s.Run("on insert", func() {
		s.repo.EXPECT().FindByPhone(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrNotFound)
		s.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil, storageErr)

		_, err := s.service.Register(s.ctx, aishaRequest())
		s.ErrorIs(err, models.ErrStorageUnavailable)
	})

	s.Equal(2.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(metrics.OutcomeFailed)))
}

func (s *ParticipantServiceSuite) TestRegister_PublishFailureDoesNotFailRegistration() {
	s.repo.EXPECT().FindByPhone(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrNotFound)
	s.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *models.Participant) (*models.Participant, error) {
			return s.stored(p), nil
		})
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	result, err := s.service.Register(s.ctx, aishaRequest())
	s.Require().NoError(err)
	s.NotNil(result.Participant)
}

func (s *ParticipantServiceSuite) TestRegister_ValidationCollectsAllFields() {
	// no repository expectations: validation fails before storage
	_, err := s.service.Register(s.ctx, &models.RegistrationRequest{
		Name:             "A",
		CountryCode:      "+1",
		Phone:            "",
		Age:              120,
		MaritalStatus:    "Divorced",
		AttractionReason: strings.Repeat("x", 1001),
	})

	var verr *models.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.ElementsMatch(
		[]string{"name", "countryCode", "phone", "age", "maritalStatus", "attractionReason"},
		fieldNames(verr),
	)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(metrics.OutcomeInvalid)))
}

func (s *ParticipantServiceSuite) TestRegister_PhoneValidation() {
	cases := []struct {
		name        string
		countryCode string
		phone       string
		wantFields  []string
	}{
		{"wrong length for Bahrain", "+973", "501234567", []string{"phone"}},
		{"letters", "+971", "50123456a", []string{"phone"}},
		{"unknown country code only", "+44", "501234567", []string{"countryCode"}},
		{"India accepts ten digits", "+91", "9876543210", nil},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := aishaRequest()
			req.CountryCode = tc.countryCode
			req.Phone = tc.phone
			if tc.wantFields == nil {
				s.repo.EXPECT().FindByPhone(gomock.Any(), tc.countryCode, tc.phone).
					Return(&models.Participant{CouponCode: "AI11111111"}, nil)
				_, err := s.service.Register(s.ctx, req)
				s.NoError(err)
				return
			}
			_, err := s.service.Register(s.ctx, req)
			var verr *models.ValidationError
			s.Require().ErrorAs(err, &verr)
			s.ElementsMatch(tc.wantFields, fieldNames(verr))
		})
	}
}

func (s *ParticipantServiceSuite) TestFindByCouponCode() {
	s.Run("empty code is a validation error", func() {
		_, err := s.service.FindByCouponCode(s.ctx, "   ")
		var verr *models.ValidationError
		s.ErrorAs(err, &verr)
	})

	s.Run("code is trimmed", func() {
		s.repo.EXPECT().FindByCouponCode(gomock.Any(), "AI12345001").Return(&models.Participant{CouponCode: "AI12345001"}, nil)
		p, err := s.service.FindByCouponCode(s.ctx, " AI12345001 ")
		s.Require().NoError(err)
		s.Equal("AI12345001", p.CouponCode)
	})

	s.Run("unknown code", func() {
		s.repo.EXPECT().FindByCouponCode(gomock.Any(), "ZZ0").Return(nil, models.ErrNotFound)
		_, err := s.service.FindByCouponCode(s.ctx, "ZZ0")
		s.ErrorIs(err, models.ErrNotFound)
	})

	s.Equal(1.0, testutil.ToFloat64(s.metrics.CouponLookups.WithLabelValues("true")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CouponLookups.WithLabelValues("false")))
}

func (s *ParticipantServiceSuite) TestFindByPhone_NormalizesBeforeLookup() {
	s.repo.EXPECT().FindByPhone(gomock.Any(), "+966", "512345678").Return(&models.Participant{CouponCode: "SA1"}, nil)

	p, err := s.service.FindByPhone(s.ctx, "+966", "51 234-5678")
	s.Require().NoError(err)
	s.Equal("SA1", p.CouponCode)

	_, err = s.service.FindByPhone(s.ctx, "+966", "5123")
	var verr *models.ValidationError
	s.ErrorAs(err, &verr)
}

func (s *ParticipantServiceSuite) TestList_NormalizesPaging() {
	cases := []struct {
		page, pageSize         int
		wantOffset, wantLimit  int64
		wantPage, wantPageSize int
	}{
		{0, 0, 0, 10, 1, 10},
		{-3, 5, 0, 5, 1, 5},
		{3, 10, 20, 10, 3, 10},
		{2, 500, 100, 100, 2, 100},
	}
	for _, tc := range cases {
		s.repo.EXPECT().Count(gomock.Any()).Return(int64(41), nil)
		s.repo.EXPECT().List(gomock.Any(), tc.wantOffset, tc.wantLimit).Return(nil, nil)

		page, err := s.service.List(s.ctx, tc.page, tc.pageSize)
		s.Require().NoError(err)
		s.Equal(tc.wantPage, page.Page)
		s.Equal(tc.wantPageSize, page.PageSize)
		s.Equal(int64(41), page.TotalCount)
		s.Equal((int64(41)+int64(tc.wantPageSize)-1)/int64(tc.wantPageSize), page.TotalPages)
		s.NotNil(page.Items)
	}
}

func (s *ParticipantServiceSuite) TestList_PropagatesStorageErrors() {
	storageErr := fmt.Errorf("%w: timeout", models.ErrStorageUnavailable)
	s.repo.EXPECT().Count(gomock.Any()).Return(int64(0), storageErr)
	s.repo.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return([]*models.Participant{}, nil).AnyTimes()

	_, err := s.service.List(s.ctx, 1, 10)
	s.ErrorIs(err, models.ErrStorageUnavailable)
}

func fieldNames(verr *models.ValidationError) []string {
	names := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		names = append(names, k)
	}
	return names
}

// The tests below exercise the service against the in-memory registry end to end

func newMemoryService(t *testing.T) (*ParticipantServiceImpl, *memory.ParticipantRepository) {
	t.Helper()
	repo := memory.NewParticipantRepository()
	return NewParticipantService(repo, utils.NewCouponGenerator(), testDrawConfig, WithLogger(quietLogger())), repo
}

func TestRegister_AishaKhanRoundTrip(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, aishaRequest())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^AI[0-9]+$`), result.Participant.CouponCode)

	found, err := svc.FindByCouponCode(ctx, result.Participant.CouponCode)
	require.NoError(t, err)
	assert.Equal(t, "Aisha Khan", found.Name)
	assert.Equal(t, "+971", found.CountryCode)
	assert.Equal(t, "501234567", found.Phone)
	assert.Equal(t, 29, found.Age)
	assert.Equal(t, models.MaritalStatusSingle, found.MaritalStatus)
	assert.Equal(t, result.Participant.ID, found.ID)
}

func TestRegister_TwiceYieldsFirstCoupon(t *testing.T) {
	svc, repo := newMemoryService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, aishaRequest())
	require.NoError(t, err)

	again := aishaRequest()
	again.Name = "Someone Else"
	again.Phone = "50 123 4567"
	second, err := svc.Register(ctx, again)
	require.NoError(t, err)

	assert.True(t, second.AlreadyRegistered)
	assert.Equal(t, first.Participant.CouponCode, second.Participant.CouponCode)
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestList_PagesCoverEveryParticipantOnce(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()

	const total = 23
	for i := 0; i < total; i++ {
		req := aishaRequest()
		req.Phone = fmt.Sprintf("50%07d", i)
		_, err := svc.Register(ctx, req)
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(3), first.TotalPages)

	seen := map[string]bool{}
	for page := 1; page <= int(first.TotalPages); page++ {
		p, err := svc.List(ctx, page, 10)
		require.NoError(t, err)
		for _, item := range p.Items {
			assert.False(t, seen[item.ID], "participant %s listed twice", item.ID)
			seen[item.ID] = true
		}
	}
	assert.Len(t, seen, total)
}
