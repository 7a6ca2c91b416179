package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories"
)

// Compile-time check to ensure ParticipantRepository implements the interface
var _ repositories.ParticipantRepository = (*ParticipantRepository)(nil)

type entry struct {
	participant models.Participant
	seq         int64
}

// ParticipantRepository keeps participants in process memory.
// Used by tests and the "memory" storage driver.
type ParticipantRepository struct {
	mu      sync.RWMutex
	now     func() time.Time
	seq     int64
	entries []entry // kept in listing order
	byPhone map[string]int64
	byCode  map[string]int64
	index   map[int64]int // seq -> position in entries
}

// NewParticipantRepository creates an empty in-memory repository
func NewParticipantRepository() *ParticipantRepository {
	return NewParticipantRepositoryWithClock(time.Now)
}

// NewParticipantRepositoryWithClock creates an empty repository stamping CreatedAt from now
func NewParticipantRepositoryWithClock(now func() time.Time) *ParticipantRepository {
	return &ParticipantRepository{
		now:     now,
		byPhone: map[string]int64{},
		byCode:  map[string]int64{},
		index:   map[int64]int{},
	}
}

func phoneKey(countryCode, phone string) string {
	return countryCode + "|" + phone
}

// Insert stores a copy of participant with a fresh ID and CreatedAt
func (r *ParticipantRepository) Insert(ctx context.Context, participant *models.Participant) (*models.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := phoneKey(participant.CountryCode, participant.Phone)
	if _, ok := r.byPhone[key]; ok {
		return nil, models.ErrDuplicatePhone
	}
	if _, ok := r.byCode[participant.CouponCode]; ok {
		return nil, models.ErrDuplicateCoupon
	}

	stored := *participant
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.now().UTC()
	r.seq++
	r.entries = append(r.entries, entry{participant: stored, seq: r.seq})
	sort.SliceStable(r.entries, func(i, j int) bool {
		a, b := r.entries[i], r.entries[j]
		if !a.participant.CreatedAt.Equal(b.participant.CreatedAt) {
			return a.participant.CreatedAt.After(b.participant.CreatedAt)
		}
		return a.seq > b.seq
	})
	for i, e := range r.entries {
		r.index[e.seq] = i
	}
	r.byPhone[key] = r.seq
	r.byCode[stored.CouponCode] = r.seq

	out := stored
	return &out, nil
}

func (r *ParticipantRepository) bySeq(seq int64, ok bool) (*models.Participant, error) {
	if !ok {
		return nil, models.ErrNotFound
	}
	p := r.entries[r.index[seq]].participant
	return &p, nil
}

// FindByPhone finds a participant by country code and phone
func (r *ParticipantRepository) FindByPhone(ctx context.Context, countryCode, phone string) (*models.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seq, ok := r.byPhone[phoneKey(countryCode, phone)]
	return r.bySeq(seq, ok)
}

// FindByCouponCode finds a participant by coupon code
func (r *ParticipantRepository) FindByCouponCode(ctx context.Context, code string) (*models.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seq, ok := r.byCode[code]
	return r.bySeq(seq, ok)
}

// Count returns the number of stored participants
func (r *ParticipantRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.entries)), nil
}

// List returns up to limit participants starting at offset
func (r *ParticipantRepository) List(ctx context.Context, offset, limit int64) ([]*models.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.Participant{}
	total := int64(len(r.entries))
	if offset < 0 || offset >= total || limit <= 0 {
		return out, nil
	}
	end := min(offset+limit, total)
	for _, e := range r.entries[offset:end] {
		p := e.participant
		out = append(out, &p)
	}
	return out, nil
}

// FindAt returns the participant at offset
func (r *ParticipantRepository) FindAt(ctx context.Context, offset int64) (*models.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if offset < 0 || offset >= int64(len(r.entries)) {
		return nil, models.ErrNotFound
	}
	p := r.entries[offset].participant
	return &p, nil
}
