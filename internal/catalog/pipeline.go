package catalog

import (
	"time"

	"github.com/pauljones0/rental-board/internal/models"
)

// Run filters listings by c and returns the matches in display order.
// The input slice is left untouched and the result is never nil.
func Run(listings []models.Listing, c Criteria, now time.Time) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if Matches(l, c, now) {
			out = append(out, l)
		}
	}
	Sort(out, now)
	return out
}

// RunViews is Run followed by BuildView for every result.
func RunViews(listings []models.Listing, c Criteria, now time.Time) []View {
	matched := Run(listings, c, now)
	views := make([]View, 0, len(matched))
	for _, l := range matched {
		views = append(views, BuildView(l, now))
	}
	return views
}
