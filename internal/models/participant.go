package models

import "time"

// MaritalStatus is the participant's declared marital status
type MaritalStatus string

const (
	MaritalStatusSingle  MaritalStatus = "Single"
	MaritalStatusEngaged MaritalStatus = "Engaged"
	MaritalStatusMarried MaritalStatus = "Married"
)

// Valid reports whether s is one of the supported statuses
func (s MaritalStatus) Valid() bool {
	switch s {
	case MaritalStatusSingle, MaritalStatusEngaged, MaritalStatusMarried:
		return true
	default:
		return false
	}
}

// Participant represents one registration in the giveaway.
// Records are created once and never updated.
type Participant struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	CountryCode      string        `json:"countryCode"`
	Phone            string        `json:"phone"`
	Age              int           `json:"age"`
	MaritalStatus    MaritalStatus `json:"maritalStatus"`
	AttractionReason string        `json:"attractionReason,omitempty"`
	CouponCode       string        `json:"couponCode"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// RegistrationRequest is the payload accepted by the registration endpoint
type RegistrationRequest struct {
	Name             string `json:"name"`
	CountryCode      string `json:"countryCode"`
	Phone            string `json:"phone"`
	Age              int    `json:"age"`
	MaritalStatus    string `json:"maritalStatus"`
	AttractionReason string `json:"attractionReason"`
}

// RegistrationResult is returned by the participant service after a registration attempt
type RegistrationResult struct {
	Participant       *Participant `json:"participant"`
	AlreadyRegistered bool         `json:"alreadyRegistered"`
}

// ParticipantPage is one page of the admin participant listing
type ParticipantPage struct {
	Items      []*Participant `json:"items"`
	TotalCount int64          `json:"totalCount"`
	TotalPages int64          `json:"totalPages"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
}

// DrawResult is the outcome of a lucky draw
type DrawResult struct {
	Winner            *Participant `json:"winner"`
	TotalParticipants int64        `json:"totalParticipants"`
	Offset            int64        `json:"offset"`
	DrawnAt           time.Time    `json:"drawnAt"`
}
