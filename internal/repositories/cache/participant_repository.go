package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories"
)

const (
	couponKeyPrefix = "giveaway:coupon:"
	phoneKeyPrefix  = "giveaway:phone:"
)

// Compile-time check to ensure ParticipantRepository implements the interface
var _ repositories.ParticipantRepository = (*ParticipantRepository)(nil)

// ParticipantRepository caches coupon and phone lookups in Redis in front of another repository.
// Participants are immutable so entries never need invalidation, only expiry. Misses are not cached.
// Redis errors are logged and the call falls through to the wrapped repository.
type ParticipantRepository struct {
	repositories.ParticipantRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures a ParticipantRepository.
type Option func(*ParticipantRepository)

// WithLogger sets the logger used for Redis failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *ParticipantRepository) {
		r.logger = logger
	}
}

// NewParticipantRepository wraps next with a Redis lookup cache
func NewParticipantRepository(next repositories.ParticipantRepository, client *redis.Client, ttl time.Duration, opts ...Option) *ParticipantRepository {
	r := &ParticipantRepository{
		ParticipantRepository: next,
		client:                client,
		ttl:                   ttl,
		logger:                slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func couponKey(code string) string {
	return couponKeyPrefix + code
}

func phoneKey(countryCode, phone string) string {
	return phoneKeyPrefix + countryCode + ":" + phone
}

// Insert stores through the wrapped repository and warms both lookup keys
func (r *ParticipantRepository) Insert(ctx context.Context, participant *models.Participant) (*models.Participant, error) {
	stored, err := r.ParticipantRepository.Insert(ctx, participant)
	if err != nil {
		return nil, err
	}
	r.store(ctx, stored)
	return stored, nil
}

// FindByCouponCode serves from Redis when possible
func (r *ParticipantRepository) FindByCouponCode(ctx context.Context, code string) (*models.Participant, error) {
	if p, ok := r.load(ctx, couponKey(code)); ok {
		return p, nil
	}
	p, err := r.ParticipantRepository.FindByCouponCode(ctx, code)
	if err != nil {
		return nil, err
	}
	r.store(ctx, p)
	return p, nil
}

// FindByPhone serves from Redis when possible
func (r *ParticipantRepository) FindByPhone(ctx context.Context, countryCode, phone string) (*models.Participant, error) {
	if p, ok := r.load(ctx, phoneKey(countryCode, phone)); ok {
		return p, nil
	}
	p, err := r.ParticipantRepository.FindByPhone(ctx, countryCode, phone)
	if err != nil {
		return nil, err
	}
	r.store(ctx, p)
	return p, nil
}

func (r *ParticipantRepository) load(ctx context.Context, key string) (*models.Participant, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.WarnContext(ctx, "participant cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var p models.Participant
	if err := json.Unmarshal(raw, &p); err != nil {
		r.logger.WarnContext(ctx, "participant cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return &p, true
}

func (r *ParticipantRepository) store(ctx context.Context, p *models.Participant) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, couponKey(p.CouponCode), raw, r.ttl)
	pipe.Set(ctx, phoneKey(p.CountryCode, p.Phone), raw, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.WarnContext(ctx, "participant cache write failed", "participantId", p.ID, "error", err)
	}
}
