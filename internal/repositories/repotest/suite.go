// Package repotest holds the behaviour every ParticipantRepository backend must share.
package repotest

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/suite"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories"
)

// ParticipantRepositorySuite runs the registry contract against the repository returned by NewRepository.
// NewRepository is called before every test and must return an empty repository.
type ParticipantRepositorySuite struct {
	suite.Suite
	NewRepository func() repositories.ParticipantRepository

	repo repositories.ParticipantRepository
	ctx  context.Context
}

func (s *ParticipantRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.NewRepository()
}

// NewParticipant returns a valid, unsaved participant whose phone and coupon derive from n
func NewParticipant(n int) *models.Participant {
	return &models.Participant{
		Name:             fmt.Sprintf("Participant %d", n),
		CountryCode:      "+971",
		Phone:            fmt.Sprintf("50%07d", n),
		Age:              30,
		MaritalStatus:    models.MaritalStatusSingle,
		AttractionReason: "the prizes",
		CouponCode:       fmt.Sprintf("PA%05d%03d", 10000+n, n%1000),
	}
}

func (s *ParticipantRepositorySuite) insert(n int) *models.Participant {
	p, err := s.repo.Insert(s.ctx, NewParticipant(n))
	s.Require().NoError(err)
	return p
}

func (s *ParticipantRepositorySuite) TestInsertAndLookups() {
	input := &models.Participant{
		Name:             "Aisha Khan",
		CountryCode:      "+971",
		Phone:            "501234567",
		Age:              29,
		MaritalStatus:    models.MaritalStatusSingle,
		AttractionReason: "family",
		CouponCode:       "AI12345678",
	}

	s.Run("insert assigns server fields", func() {
		saved, err := s.repo.Insert(s.ctx, input)
		s.Require().NoError(err)
		s.NotEmpty(saved.ID)
		s.False(saved.CreatedAt.IsZero())
	})

	s.Run("finds by coupon code with fields round-tripped", func() {
		found, err := s.repo.FindByCouponCode(s.ctx, "AI12345678")
		s.Require().NoError(err)
		s.Equal(input.Name, found.Name)
		s.Equal(input.CountryCode, found.CountryCode)
		s.Equal(input.Phone, found.Phone)
		s.Equal(input.Age, found.Age)
		s.Equal(input.MaritalStatus, found.MaritalStatus)
		s.Equal(input.AttractionReason, found.AttractionReason)
		s.Equal(input.CouponCode, found.CouponCode)
	})

	s.Run("finds by phone", func() {
		found, err := s.repo.FindByPhone(s.ctx, "+971", "501234567")
		s.Require().NoError(err)
		s.Equal("AI12345678", found.CouponCode)
	})

	s.Run("phone lookup requires both fields to match", func() {
		_, err := s.repo.FindByPhone(s.ctx, "+966", "501234567")
		s.ErrorIs(err, models.ErrNotFound)
	})

	s.Run("unknown coupon is not found", func() {
		_, err := s.repo.FindByCouponCode(s.ctx, "ZZ00000000")
		s.ErrorIs(err, models.ErrNotFound)
	})
}

func (s *ParticipantRepositorySuite) TestUniqueness() {
	first := s.insert(1)

	s.Run("same country code and phone is rejected", func() {
		dup := NewParticipant(2)
		dup.CountryCode = first.CountryCode
		dup.Phone = first.Phone
		_, err := s.repo.Insert(s.ctx, dup)
		s.ErrorIs(err, models.ErrDuplicatePhone)
	})

	s.Run("same phone under another country code is accepted", func() {
		other := NewParticipant(3)
		other.CountryCode = "+966"
		other.Phone = first.Phone
		_, err := s.repo.Insert(s.ctx, other)
		s.NoError(err)
	})

	s.Run("coupon collision is reported separately", func() {
		dup := NewParticipant(4)
		dup.CouponCode = first.CouponCode
		_, err := s.repo.Insert(s.ctx, dup)
		s.ErrorIs(err, models.ErrDuplicateCoupon)
	})

	count, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

func (s *ParticipantRepositorySuite) TestListOrderingAndCoverage() {
	const total = 23
	const pageSize = 5
	ids := map[string]bool{}
	for i := 0; i < total; i++ {
		ids[s.insert(i).ID] = true
	}

	count, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(total), count)

	seen := map[string]int{}
	var all []*models.Participant
	for offset := int64(0); offset < count; offset += pageSize {
		page, err := s.repo.List(s.ctx, offset, pageSize)
		s.Require().NoError(err)
		s.LessOrEqual(len(page), pageSize)
		all = append(all, page...)
	}
	s.Len(all, total)
	for i, p := range all {
		seen[p.ID]++
		if i > 0 {
			s.False(p.CreatedAt.After(all[i-1].CreatedAt), "createdAt must not increase down the list")
		}
	}
	for id := range ids {
		s.Equal(1, seen[id], "participant %s must appear exactly once", id)
	}

	s.Run("offset past the end returns an empty page", func() {
		page, err := s.repo.List(s.ctx, total+10, pageSize)
		s.Require().NoError(err)
		s.Empty(page)
	})

	s.Run("FindAt agrees with List", func() {
		for _, offset := range []int64{0, 7, total - 1} {
			p, err := s.repo.FindAt(s.ctx, offset)
			s.Require().NoError(err)
			s.Equal(all[offset].ID, p.ID)
		}
	})

	s.Run("FindAt past the end is not found", func() {
		_, err := s.repo.FindAt(s.ctx, total)
		s.ErrorIs(err, models.ErrNotFound)
	})
}

func (s *ParticipantRepositorySuite) TestEmptyRegistry() {
	count, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)

	page, err := s.repo.List(s.ctx, 0, 10)
	s.Require().NoError(err)
	s.Empty(page)

	_, err = s.repo.FindAt(s.ctx, 0)
	s.ErrorIs(err, models.ErrNotFound)
}
