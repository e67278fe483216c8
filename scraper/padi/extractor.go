package padi

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"padi-scraper/models"
	"padi-scraper/scraper"
)

// Extractor turns a rendered locator page into listing records.
type Extractor struct {
	selectors *scraper.Selectors
	limit     int
}

// NewExtractor creates an Extractor returning at most limit listings per
// page; a limit of 0 disables the bound.
func NewExtractor(selectors *scraper.Selectors, limit int) *Extractor {
	return &Extractor{selectors: selectors, limit: limit}
}

// PageListings is the outcome of extracting one page. Dropped counts the
// entries left out because of the per-page limit.
type PageListings struct {
	Listings []*models.RawListing
	Dropped  int
}

// Extract parses html and returns one RawListing per listing entry in
// document order. Each field is looked up on its own: a missing element or
// empty text yields the NoInformation default for that field only.
func (e *Extractor) Extract(html string, page int) ([]*models.RawListing, error) {
	result, err := e.ExtractPage(html, page)
	if err != nil {
		return nil, err
	}
	return result.Listings, nil
}

// ExtractPage is Extract that also reports entries cut by the limit.
func (e *Extractor) ExtractPage(html string, page int) (*PageListings, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("extractor: parse page %d: %w", page, err)
	}

	entries := doc.Find(e.selectors.EntrySelector)
	listings := make([]*models.RawListing, 0, entries.Length())

	entries.EachWithBreak(func(i int, entry *goquery.Selection) bool {
		if e.limit > 0 && len(listings) >= e.limit {
			return false
		}

		spans := entry.Find(e.selectors.LocationSpan)
		listings = append(listings, &models.RawListing{
			Name:            firstText(entry, e.selectors.NameSelector),
			Category:        firstText(entry, e.selectors.CategorySelector),
			CenterCategory:  firstText(entry, e.selectors.CenterCategorySelector),
			LocationCountry: nthText(spans, e.selectors.CountryIndex),
			LocationCity:    nthText(spans, e.selectors.CityIndex),
			Page:            page,
			Position:        i,
		})
		return true
	})

	return &PageListings{
		Listings: listings,
		Dropped:  entries.Length() - len(listings),
	}, nil
}

func firstText(sel *goquery.Selection, selector string) models.Field {
	match := sel.Find(selector).First()
	if match.Length() == 0 {
		return models.DefaultField()
	}
	return models.NewField(match.Text())
}

func nthText(spans *goquery.Selection, idx int) models.Field {
	if idx < 0 || idx >= spans.Length() {
		return models.DefaultField()
	}
	return models.NewField(spans.Eq(idx).Text())
}
