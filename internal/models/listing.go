package models

import (
	"strings"
	"time"
)

// DefaultExpiresHours is the verification window used when a listing does not carry a usable one.
const DefaultExpiresHours = 72

// Listing is one record of a feed snapshot.
type Listing struct {
	ID           Text     `json:"id" validate:"required"`
	Title        Text     `json:"title,omitempty"`
	Address      Text     `json:"address"`
	Unit         Text     `json:"unit"`
	Beds         Number   `json:"beds"`
	Baths        Number   `json:"baths"`
	Rent         Number   `json:"rent"`
	Status       Text     `json:"status"`
	VerifiedAt   Text     `json:"verifiedAt,omitempty"`
	ExpiresHours Number   `json:"expiresHours"`
	Photos       TextList `json:"photos"`
	Notes        TextList `json:"notes,omitempty"`
	ManagerEmail Text     `json:"managerEmail,omitempty"`
}

// StoredStatus is the status as written in the feed.
func (l Listing) StoredStatus() Status {
	return ParseStatus(string(l.Status))
}

// WindowHours returns the verification window, falling back to DefaultExpiresHours.
func (l Listing) WindowHours() float64 {
	if l.ExpiresHours.Valid && l.ExpiresHours.Value > 0 {
		return l.ExpiresHours.Value
	}
	return DefaultExpiresHours
}

// ManagedBy reports whether the listing belongs to the given manager email.
// Comparison is trimmed and case-insensitive.
func (l Listing) ManagedBy(email string) bool {
	return strings.EqualFold(l.ManagerEmail.Trimmed(), strings.TrimSpace(email))
}

// Transition outcomes.
const (
	OutcomeApplied       = "applied"
	OutcomeFailed        = "failed"
	OutcomeMisconfigured = "misconfigured"
)

// Transition records one manager dispatch attempt. It is an audit entry only;
// listing status is always read back from the feed.
type Transition struct {
	ID           string        `firestore:"-" json:"id"`
	ListingID    string        `firestore:"listingID" json:"listingId"`
	Action       Status        `firestore:"action" json:"action"`
	ManagerEmail string        `firestore:"managerEmail" json:"managerEmail"`
	Endpoint     string        `firestore:"endpoint" json:"endpoint"`
	Outcome      string        `firestore:"outcome" json:"outcome"`
	Error        string        `firestore:"error,omitempty" json:"error,omitempty"`
	RequestedAt  time.Time     `firestore:"requestedAt" json:"requestedAt"`
	Duration     time.Duration `firestore:"durationNanos" json:"durationNanos"`
}
