package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories"
)

const (
	phoneConstraint  = "participants_country_code_whatsapp_key"
	couponConstraint = "participants_coupon_code_key"

	uniqueViolation = "23505"
)

// Schema creates the participants table. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS participants (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    whatsapp TEXT NOT NULL,
    country_code TEXT NOT NULL,
    age INTEGER NOT NULL CHECK (age > 0 AND age < 120),
    marital_status TEXT NOT NULL CHECK (marital_status IN ('Single', 'Engaged', 'Married')),
    attraction_reason TEXT NOT NULL DEFAULT '',
    coupon_code TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT participants_country_code_whatsapp_key UNIQUE (country_code, whatsapp),
    CONSTRAINT participants_coupon_code_key UNIQUE (coupon_code)
);

CREATE INDEX IF NOT EXISTS idx_participants_created_at ON participants (created_at DESC, id DESC);
`

const selectColumns = `id, name, whatsapp, country_code, age, marital_status, attraction_reason, coupon_code, created_at`

// Compile-time check to ensure ParticipantRepository implements the interface
var _ repositories.ParticipantRepository = (*ParticipantRepository)(nil)

// ParticipantRepository handles Postgres operations for Participant
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

// CreateSchema applies Schema
func (r *ParticipantRepository) CreateSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", unavailable(err))
	}
	return nil
}

// Insert inserts a new participant and returns it with the database-assigned created_at
func (r *ParticipantRepository) Insert(ctx context.Context, participant *models.Participant) (*models.Participant, error) {
	id := uuid.New()
	stored := *participant
	stored.ID = id.String()

	const query = `
		INSERT INTO participants (id, name, whatsapp, country_code, age, marital_status, attraction_reason, coupon_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		id,
		stored.Name,
		stored.Phone,
		stored.CountryCode,
		stored.Age,
		string(stored.MaritalStatus),
		stored.AttractionReason,
		stored.CouponCode,
	).Scan(&stored.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case phoneConstraint:
				return nil, models.ErrDuplicatePhone
			case couponConstraint:
				return nil, models.ErrDuplicateCoupon
			}
		}
		return nil, unavailable(err)
	}
	stored.CreatedAt = stored.CreatedAt.UTC()
	return &stored, nil
}

// FindByPhone finds a participant by country code and phone
func (r *ParticipantRepository) FindByPhone(ctx context.Context, countryCode, phone string) (*models.Participant, error) {
	query := `SELECT ` + selectColumns + ` FROM participants WHERE country_code = $1 AND whatsapp = $2`
	return r.queryOne(ctx, query, countryCode, phone)
}

// FindByCouponCode finds a participant by coupon code
func (r *ParticipantRepository) FindByCouponCode(ctx context.Context, code string) (*models.Participant, error) {
	query := `SELECT ` + selectColumns + ` FROM participants WHERE coupon_code = $1`
	return r.queryOne(ctx, query, code)
}

// Count counts all participants
func (r *ParticipantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count); err != nil {
		return 0, unavailable(err)
	}
	return count, nil
}

// List retrieves participants newest first with offset/limit pagination
func (r *ParticipantRepository) List(ctx context.Context, offset, limit int64) ([]*models.Participant, error) {
	if offset < 0 || limit <= 0 {
		return []*models.Participant{}, nil
	}
	query := `SELECT ` + selectColumns + ` FROM participants ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT $2`
	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, unavailable(err)
	}
	participants, err := pgx.CollectRows(rows, scanParticipant)
	if err != nil {
		return nil, unavailable(err)
	}
	if participants == nil {
		participants = []*models.Participant{}
	}
	return participants, nil
}

// FindAt fetches the single participant at offset
func (r *ParticipantRepository) FindAt(ctx context.Context, offset int64) (*models.Participant, error) {
	if offset < 0 {
		return nil, models.ErrNotFound
	}
	query := `SELECT ` + selectColumns + ` FROM participants ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT 1`
	return r.queryOne(ctx, query, offset)
}

func (r *ParticipantRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Participant, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, unavailable(err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanParticipant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, unavailable(err)
	}
	return p, nil
}

func scanParticipant(row pgx.CollectableRow) (*models.Participant, error) {
	var (
		p      models.Participant
		status string
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Phone,
		&p.CountryCode,
		&p.Age,
		&status,
		&p.AttractionReason,
		&p.CouponCode,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.MaritalStatus = models.MaritalStatus(status)
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
}
