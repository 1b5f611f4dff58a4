package catalog

import (
	"time"

	"github.com/pauljones0/rental-board/internal/models"
)

// EffectiveStatus is the status used for filtering and display. An available
// listing whose verification window has passed is shown as pending; every other
// stored status passes through, and unrecognized values resolve to unknown.
func EffectiveStatus(l models.Listing, now time.Time) models.Status {
	stored := l.StoredStatus()
	if stored == models.StatusAvailable && EvaluateListing(l, now).Expired {
		return models.StatusPending
	}
	return stored
}
