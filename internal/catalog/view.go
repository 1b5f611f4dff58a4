package catalog

import (
	"fmt"
	"time"

	"github.com/pauljones0/rental-board/internal/models"
	"github.com/pauljones0/rental-board/internal/util"
)

const placeholder = "—"

// Notes shown on a card.
const (
	NoteDemo       = "Demo: shown for UX only. Do not rely on availability."
	NoteExpired    = "This entry is past the verification window; treat as unconfirmed until re-verified."
	NoteVerified   = "Verified entry: status reflects recent confirmation within the window shown."
	NoteUnverified = "Not yet verified: confirm availability before relying on this status."
)

const maxCardNotes = 4

// View is the presentation record for one listing.
type View struct {
	ID           string        `json:"id"`
	Heading      string        `json:"heading"`
	Address      string        `json:"address"`
	Unit         string        `json:"unit,omitempty"`
	StoredStatus models.Status `json:"storedStatus"`
	Status       models.Status `json:"status"`
	StatusLabel  string        `json:"statusLabel"`
	StatusClass  string        `json:"statusClass"`
	RentLabel    string        `json:"rentLabel"`
	BedsLabel    string        `json:"bedsLabel"`
	BathsLabel   string        `json:"bathsLabel"`
	Verification string        `json:"verification"`
	Recency      Recency       `json:"recency"`
	Note         string        `json:"note"`
	Notes        []string      `json:"notes"`
	CoverPhoto   string        `json:"coverPhoto,omitempty"`
	Photos       []string      `json:"photos"`
	ManagerEmail string        `json:"managerEmail,omitempty"`
}

// BuildView derives the presentation record for l at time now.
func BuildView(l models.Listing, now time.Time) View {
	rec := EvaluateListing(l, now)
	stored := l.StoredStatus()
	effective := EffectiveStatus(l, now)

	v := View{
		ID:           l.ID.Trimmed(),
		Heading:      heading(l),
		Address:      orPlaceholder(l.Address.Trimmed()),
		StoredStatus: stored,
		Status:       effective,
		StatusLabel:  effective.Label(),
		StatusClass:  string(effective),
		RentLabel:    RentLabel(l.Rent),
		BedsLabel:    BedsLabel(l.Beds),
		BathsLabel:   BathsLabel(l.Baths),
		Verification: rec.Label,
		Recency:      rec,
		Photos:       l.Photos.Strings(),
		ManagerEmail: l.ManagerEmail.Trimmed(),
	}
	if effective == models.StatusUnknown {
		v.StatusClass = string(models.StatusDemo)
	}
	if unit := l.Unit.Trimmed(); unit != placeholder {
		v.Unit = unit
	}
	if len(v.Photos) > 0 {
		v.CoverPhoto = v.Photos[0]
	}

	notes := l.Notes.Strings()
	if len(notes) > maxCardNotes {
		notes = notes[:maxCardNotes]
	}
	v.Notes = notes

	switch {
	case stored == models.StatusDemo:
		v.Verification = LabelNotVerified
		v.Note = NoteDemo
	case rec.Expired:
		v.Note = NoteExpired
	case rec.Verified():
		v.Note = NoteVerified
	default:
		v.Note = NoteUnverified
	}
	return v
}

func heading(l models.Listing) string {
	for _, s := range []string{l.Title.Trimmed(), l.Address.Trimmed(), l.ID.Trimmed()} {
		if s != "" {
			return s
		}
	}
	return placeholder
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// RentLabel renders a monthly rent such as "$1,200/mo".
func RentLabel(n models.Number) string {
	if !n.Valid {
		return placeholder
	}
	return "$" + util.FormatThousands(n.Value) + "/mo"
}

// BedsLabel renders a bedroom count; zero bedrooms is a studio.
func BedsLabel(n models.Number) string {
	if !n.Valid {
		return orPlaceholder(n.Raw)
	}
	switch n.Value {
	case 0:
		return "Studio"
	case 1:
		return "1 bed"
	default:
		return util.FormatFloat(n.Value) + " beds"
	}
}

// BathsLabel renders a bathroom count such as "1.5 bath".
func BathsLabel(n models.Number) string {
	if !n.Valid {
		return orPlaceholder(n.Raw)
	}
	return util.FormatFloat(n.Value) + " bath"
}

// NoMatches is shown instead of a result count when nothing matches.
const NoMatches = "No matches"

// ResultMeta summarizes how many listings are shown.
func ResultMeta(n int) string {
	if n == 1 {
		return "1 listing shown."
	}
	return fmt.Sprintf("%d listings shown.", n)
}
