package repositories

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks ParticipantRepository

import (
	"context"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
)

// ParticipantRepository defines the interface for participant data operations.
//
// Listing order is created_at descending with id descending as tie-breaker; List and FindAt
// share it so an offset means the same row in both. Lookups return models.ErrNotFound when
// nothing matches. Backend failures wrap models.ErrStorageUnavailable.
type ParticipantRepository interface {
	// Insert assigns ID and CreatedAt and stores the participant.
	// Unique violations return models.ErrDuplicatePhone or models.ErrDuplicateCoupon.
	Insert(ctx context.Context, participant *models.Participant) (*models.Participant, error)
	FindByPhone(ctx context.Context, countryCode, phone string) (*models.Participant, error)
	FindByCouponCode(ctx context.Context, code string) (*models.Participant, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, offset, limit int64) ([]*models.Participant, error)
	// FindAt returns the single participant at offset under the listing order
	FindAt(ctx context.Context, offset int64) (*models.Participant, error)
}
