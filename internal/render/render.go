// Package render writes the public catalog page.
package render

import (
	"html/template"
	"io"
	"time"

	"github.com/pauljones0/rental-board/internal/catalog"
	"github.com/pauljones0/rental-board/internal/models"
)

// LoadFailed replaces the results when the feed could not be read.
const LoadFailed = "Listings failed to load. Please try again later."

// Page is everything the catalog template needs.
type Page struct {
	Query     string
	MinBeds   string
	MaxPrice  string
	Status    string
	Statuses  []models.Status
	Views     []catalog.View
	Meta      string
	Failed    bool
	FetchedAt time.Time
}

// NewPage builds a page for the given control values and results. failed marks
// a page whose feed read did not succeed.
func NewPage(query, minBeds, maxPrice, status string, views []catalog.View, failed bool, fetchedAt time.Time) Page {
	p := Page{
		Query:     query,
		MinBeds:   minBeds,
		MaxPrice:  maxPrice,
		Status:    status,
		Statuses:  []models.Status{models.StatusAvailable, models.StatusPending, models.StatusWaitlist, models.StatusFilled},
		Views:     views,
		Failed:    failed,
		FetchedAt: fetchedAt,
	}
	switch {
	case failed:
		p.Meta = LoadFailed
	case len(views) == 0:
		p.Meta = catalog.NoMatches
	default:
		p.Meta = catalog.ResultMeta(len(views))
	}
	return p
}

// Catalog writes the catalog page to w.
func Catalog(w io.Writer, p Page) error {
	return catalogTemplate.Execute(w, p)
}

var catalogTemplate = template.Must(template.New("catalog").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Rental listings</title>
</head>
<body>
<form id="filters" method="get" action="/">
  <input type="search" name="q" value="{{.Query}}" placeholder="Search address, unit, notes">
  <input type="number" name="beds" value="{{.MinBeds}}" min="0" placeholder="Min beds">
  <input type="number" name="maxPrice" value="{{.MaxPrice}}" min="0" placeholder="Max rent">
  <select name="status">
    <option value="">Any status</option>
    {{- range .Statuses}}
    <option value="{{.}}"{{if eq (print .) $.Status}} selected{{end}}>{{.Label}}</option>
    {{- end}}
  </select>
  <button type="submit">Filter</button>
</form>
<p id="result-meta">{{.Meta}}</p>
{{- if not .Failed}}
<div id="cards">
{{- range .Views}}
  <article class="card" data-id="{{.ID}}">
    {{- if .CoverPhoto}}
    <img class="cover" src="{{.CoverPhoto}}" alt="{{.Heading}}">
    {{- end}}
    <h2>{{.Heading}}</h2>
    {{- if .Unit}}<p class="unit">Unit {{.Unit}}</p>{{end}}
    <span class="badge {{.StatusClass}}">{{.StatusLabel}}</span>
    <p class="facts"><span class="rent">{{.RentLabel}}</span> · <span class="beds">{{.BedsLabel}}</span> · <span class="baths">{{.BathsLabel}}</span></p>
    <p class="verification">{{.Verification}}</p>
    <p class="note">{{.Note}}</p>
    {{- if .Notes}}
    <ul class="notes">{{range .Notes}}<li>{{.}}</li>{{end}}</ul>
    {{- end}}
  </article>
{{- end}}
</div>
{{- end}}
{{- if not .FetchedAt.IsZero}}
<footer>Updated {{.FetchedAt.UTC.Format "2006-01-02 15:04 MST"}}</footer>
{{- end}}
</body>
</html>
`))
