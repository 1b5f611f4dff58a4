package catalog

import (
	"strings"
	"time"

	"github.com/pauljones0/rental-board/internal/models"
	"github.com/pauljones0/rental-board/internal/util"
)

// Criteria narrows a listing collection. Zero-valued fields always pass.
type Criteria struct {
	Query        string   `json:"q,omitempty"`
	MinBeds      *float64 `json:"beds,omitempty"`
	MaxRent      *float64 `json:"maxPrice,omitempty"`
	Status       string   `json:"status,omitempty"`
	ManagerEmail string   `json:"managerEmail,omitempty"`
}

// ParseCriteria builds criteria from raw control values. Blank or non-numeric
// bounds leave the corresponding criterion unset.
func ParseCriteria(query, minBeds, maxRent, status string) Criteria {
	c := Criteria{
		Query:  strings.TrimSpace(query),
		Status: strings.TrimSpace(status),
	}
	if v, ok := util.ParseFloat(minBeds); ok {
		c.MinBeds = &v
	}
	if v, ok := util.ParseFloat(maxRent); ok {
		c.MaxRent = &v
	}
	return c
}

// IsEmpty reports whether no criterion is set.
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Query) == "" &&
		c.MinBeds == nil &&
		c.MaxRent == nil &&
		strings.TrimSpace(c.Status) == "" &&
		strings.TrimSpace(c.ManagerEmail) == ""
}

// Matches reports whether l satisfies every set criterion.
func Matches(l models.Listing, c Criteria, now time.Time) bool {
	if q := util.Norm(c.Query); q != "" {
		if !strings.Contains(strings.ToLower(haystack(l)), q) {
			return false
		}
	}

	// Listings whose numeric field cannot be read never satisfy a numeric bound.
	if c.MinBeds != nil {
		if !l.Beds.Valid || l.Beds.Value < *c.MinBeds {
			return false
		}
	}
	if c.MaxRent != nil {
		if !l.Rent.Valid || l.Rent.Value > *c.MaxRent {
			return false
		}
	}

	if s := strings.TrimSpace(c.Status); s != "" {
		want := models.ParseStatus(s)
		if want == models.StatusAvailable {
			if EffectiveStatus(l, now) != models.StatusAvailable {
				return false
			}
		} else if l.StoredStatus() != want {
			return false
		}
	}

	if email := strings.TrimSpace(c.ManagerEmail); email != "" && !l.ManagedBy(email) {
		return false
	}
	return true
}

// haystack is the free-text search corpus. It uses the stored status label so
// the verification downgrade never changes what a text query finds.
func haystack(l models.Listing) string {
	parts := []string{
		l.Address.String(),
		l.Unit.String(),
		l.Rent.String(),
		l.Beds.String(),
		l.Baths.String(),
		strings.Join(l.Notes.Strings(), " "),
		l.StoredStatus().Label(),
	}
	return strings.Join(parts, " ")
}
