// Package catalog derives effective listing status from verification recency and
// turns a feed snapshot plus user criteria into an ordered display set.
// Every function takes the current time explicitly and never mutates its input.
package catalog

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pauljones0/rental-board/internal/models"
)

// LabelNotVerified is the recency label for listings without a usable verification timestamp.
const LabelNotVerified = "Not verified"

// Recency is the outcome of evaluating a verification timestamp against its window.
type Recency struct {
	Label        string   `json:"label"`
	Expired      bool     `json:"expired"`
	ElapsedHours *float64 `json:"elapsedHours"`
}

// Verified reports whether a timestamp was present and parsable.
func (r Recency) Verified() bool {
	return r.ElapsedHours != nil
}

// Zone-less layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a feed timestamp. ok is false for blank or unrecognized input.
func ParseTimestamp(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Evaluate computes elapsed hours since verifiedAt and whether the window has passed.
// Missing or malformed timestamps are reported as not verified, never as an error.
// A non-positive window falls back to models.DefaultExpiresHours.
func Evaluate(verifiedAt string, windowHours float64, now time.Time) Recency {
	t, ok := ParseTimestamp(verifiedAt)
	if !ok {
		return Recency{Label: LabelNotVerified}
	}
	if !(windowHours > 0) || math.IsInf(windowHours, 0) {
		windowHours = models.DefaultExpiresHours
	}

	elapsed := now.Sub(t).Hours()
	expired := elapsed > windowHours

	whole := int64(math.Floor(elapsed))
	if whole < 0 {
		whole = 0
	}
	label := fmt.Sprintf("Verified within %dh", whole)
	if expired {
		label = fmt.Sprintf("Expired (%dh ago)", whole)
	}
	return Recency{Label: label, Expired: expired, ElapsedHours: &elapsed}
}

// EvaluateListing evaluates a listing against its own verification window.
func EvaluateListing(l models.Listing, now time.Time) Recency {
	return Evaluate(string(l.VerifiedAt), l.WindowHours(), now)
}

// verifiedUnixMilli is the recency sort key; unverified listings sort as verified at the Unix epoch.
func verifiedUnixMilli(l models.Listing) int64 {
	t, ok := ParseTimestamp(string(l.VerifiedAt))
	if !ok {
		return 0
	}
	return t.UnixMilli()
}
