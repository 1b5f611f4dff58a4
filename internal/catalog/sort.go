package catalog

import (
	"cmp"
	"slices"
	"time"

	"github.com/pauljones0/rental-board/internal/models"
)

type sortKey struct {
	verified int64
	rank     int
	rent     float64
}

func keyOf(l models.Listing, now time.Time) sortKey {
	return sortKey{
		verified: verifiedUnixMilli(l),
		rank:     EffectiveStatus(l, now).Rank(),
		rent:     l.Rent.OrZero(),
	}
}

func compareKeys(a, b sortKey) int {
	if c := cmp.Compare(b.verified, a.verified); c != 0 {
		return c
	}
	if c := cmp.Compare(a.rank, b.rank); c != 0 {
		return c
	}
	return cmp.Compare(a.rent, b.rent)
}

// Compare orders listings for display: most recently verified first, then by
// effective-status rank, then by ascending rent. Missing rent counts as zero.
func Compare(a, b models.Listing, now time.Time) int {
	return compareKeys(keyOf(a, now), keyOf(b, now))
}

// Sort orders listings in place using Compare. Equal listings keep their relative order.
func Sort(listings []models.Listing, now time.Time) {
	type entry struct {
		listing models.Listing
		key     sortKey
	}
	entries := make([]entry, len(listings))
	for i, l := range listings {
		entries[i] = entry{listing: l, key: keyOf(l, now)}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return compareKeys(a.key, b.key)
	})
	for i, e := range entries {
		listings[i] = e.listing
	}
}
