package catalog

import (
	"time"

	"github.com/pauljones0/rental-board/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// hoursAgo returns an RFC 3339 timestamp h hours before testNow.
func hoursAgo(h float64) models.Text {
	return models.Text(testNow.Add(-time.Duration(h * float64(time.Hour))).Format(time.RFC3339))
}

func listing(id, status string, verifiedAt models.Text, rent float64) models.Listing {
	return models.Listing{
		ID:         models.Text(id),
		Status:     models.Text(status),
		VerifiedAt: verifiedAt,
		Rent:       models.NumberOf(rent),
	}
}

func ids(listings []models.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.ID.String()
	}
	return out
}

func ptr(v float64) *float64 {
	return &v
}
