package padi

import (
	"fmt"
	"strings"
	"testing"

	"padi-scraper/models"
	"padi-scraper/scraper"
)

type entryFixture struct {
	name, category, center string
	spans                  []string
}

// renderEntry mimics one locator result: an ul#padi-store-url-link holding
// the name link, feature and center-type labels and the address spans.
func renderEntry(e entryFixture) string {
	var b strings.Builder
	b.WriteString(`<ul id="padi-store-url-link">`)
	if e.name != "-" {
		fmt.Fprintf(&b, `<li><a class="listing">%s</a></li>`, e.name)
	}
	if e.category != "-" {
		fmt.Fprintf(&b, `<li><span class="featureCategory">%s</span></li>`, e.category)
	}
	if e.center != "-" {
		fmt.Fprintf(&b, `<li><div class="centerTypeCategory">%s</div></li>`, e.center)
	}
	b.WriteString(`<li class="address">`)
	for _, s := range e.spans {
		fmt.Fprintf(&b, `<span class="ng-star-inserted">%s</span>`, s)
	}
	b.WriteString(`</li></ul>`)
	return b.String()
}

func renderPage(entries ...entryFixture) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="results">`)
	for _, e := range entries {
		b.WriteString(renderEntry(e))
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func fullEntry(name string) entryFixture {
	return entryFixture{
		name:     name,
		category: "Dive Center",
		center:   "PADI 5 Star Dive Resort",
		spans:    []string{"12", "Harbour Road", ",", " Sharm El Sheikh ", ",", " Egypt "},
	}
}

func newTestExtractor(limit int) *Extractor {
	return NewExtractor(scraper.DefaultSelectors(), limit)
}

func TestExtractFullEntry(t *testing.T) {
	listings, err := newTestExtractor(0).Extract(renderPage(fullEntry(" Red Sea Divers\n")), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}

	got := listings[0].Flatten()
	want := &models.Listing{
		Name:            "Red Sea Divers",
		Category:        "Dive Center",
		CenterCategory:  "PADI 5 Star Dive Resort",
		LocationCountry: "Egypt",
		LocationCity:    "Sharm El Sheikh",
	}
	if *got != *want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if listings[0].DefaultedCount() != 0 {
		t.Errorf("no field should be defaulted, got %d", listings[0].DefaultedCount())
	}
	if listings[0].Page != 1 || listings[0].Position != 0 {
		t.Errorf("page/position: got %d/%d", listings[0].Page, listings[0].Position)
	}
}

func TestExtractMissingName(t *testing.T) {
	e := fullEntry("")
	e.name = "-"

	listings, err := newTestExtractor(0).Extract(renderPage(e), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}
	if listings[0].Name.Value != models.NoInformation || !listings[0].Name.Defaulted {
		t.Errorf("name: got %+v, want defaulted sentinel", listings[0].Name)
	}
	if listings[0].Category.Defaulted {
		t.Error("other fields should be unaffected")
	}
}

func TestExtractDefaultsPerField(t *testing.T) {
	tests := []struct {
		name  string
		entry entryFixture
		check func(*models.RawListing) models.Field
	}{
		{"empty category", entryFixture{name: "A", category: "   ", center: "C", spans: fullEntry("").spans},
			func(r *models.RawListing) models.Field { return r.Category }},
		{"missing center", entryFixture{name: "A", category: "B", center: "-", spans: fullEntry("").spans},
			func(r *models.RawListing) models.Field { return r.CenterCategory }},
		{"too few spans for country", entryFixture{name: "A", category: "B", center: "C", spans: []string{"1", "2", "3", "Dahab"}},
			func(r *models.RawListing) models.Field { return r.LocationCountry }},
		{"no spans for city", entryFixture{name: "A", category: "B", center: "C"},
			func(r *models.RawListing) models.Field { return r.LocationCity }},
		{"blank city span", entryFixture{name: "A", category: "B", center: "C", spans: []string{"1", "2", "3", "  ", "5", "Malta"}},
			func(r *models.RawListing) models.Field { return r.LocationCity }},
	}

	for _, tt := range tests {
		listings, err := newTestExtractor(0).Extract(renderPage(tt.entry), 2)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if len(listings) != 1 {
			t.Fatalf("%s: got %d listings, want 1", tt.name, len(listings))
		}
		got := tt.check(listings[0])
		if got.Value != models.NoInformation || !got.Defaulted {
			t.Errorf("%s: got %+v, want defaulted sentinel", tt.name, got)
		}
	}
}

func TestExtractPreservesOrder(t *testing.T) {
	names := []string{"Alpha Divers", "Bravo Scuba", "Charlie Reef", "Delta Dive"}
	var entries []entryFixture
	for _, n := range names {
		entries = append(entries, fullEntry(n))
	}

	listings, err := newTestExtractor(0).Extract(renderPage(entries...), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listings) != len(names) {
		t.Fatalf("got %d listings, want %d", len(listings), len(names))
	}
	for i, l := range listings {
		if l.Name.Value != names[i] {
			t.Errorf("listing %d: got %q, want %q", i, l.Name.Value, names[i])
		}
		if l.Position != i || l.Page != 4 {
			t.Errorf("listing %d: position/page got %d/%d", i, l.Position, l.Page)
		}
	}
}

func TestExtractFieldsNeverEmpty(t *testing.T) {
	page := renderPage(
		fullEntry("Full"),
		entryFixture{name: "", category: "", center: "", spans: []string{"", "", "", "", "", ""}},
		entryFixture{name: "-", category: "-", center: "-"},
	)

	listings, err := newTestExtractor(0).Extract(page, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, l := range listings {
		for j, f := range l.Fields() {
			if f.Value == "" {
				t.Errorf("listing %d field %s is empty", i, models.CSVHeader[j])
			}
			if f.Value != models.NoInformation && f.Value != strings.TrimSpace(f.Value) {
				t.Errorf("listing %d field %s not trimmed: %q", i, models.CSVHeader[j], f.Value)
			}
		}
	}
}

func TestExtractRespectsLimit(t *testing.T) {
	page := renderPage(fullEntry("A"), fullEntry("B"), fullEntry("C"))

	listings, err := newTestExtractor(2).Extract(page, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listings) != 2 {
		t.Errorf("got %d listings, want 2", len(listings))
	}
}

func TestExtractNoEntries(t *testing.T) {
	listings, err := newTestExtractor(0).Extract(`<html><body><p>No results</p></body></html>`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("got %d listings, want 0", len(listings))
	}
}

func TestExtractDefaultConfigIsUnbounded(t *testing.T) {
	entries := make([]entryFixture, 60)
	for i := range entries {
		entries[i] = fullEntry(fmt.Sprintf("Shop %02d", i))
	}

	cfg := testConfig(1)
	result, err := NewExtractor(scraper.DefaultSelectors(), cfg.MaxListingsPerPage).ExtractPage(renderPage(entries...), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Listings) != 60 || result.Dropped != 0 {
		t.Errorf("got %d listings, %d dropped; want 60 and 0", len(result.Listings), result.Dropped)
	}
}

func TestExtractPageReportsDropped(t *testing.T) {
	page := renderPage(fullEntry("A"), fullEntry("B"), fullEntry("C"))

	result, err := newTestExtractor(2).ExtractPage(page, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Listings) != 2 || result.Dropped != 1 {
		t.Errorf("got %d listings, %d dropped; want 2 and 1", len(result.Listings), result.Dropped)
	}
}
