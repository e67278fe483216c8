package models

import "strings"

// NoInformation is written in place of any field the page did not provide.
const NoInformation = "No_Information"

// CSVHeader is the fixed column order shared by every export.
var CSVHeader = []string{"name", "category", "centercategory", "location_country", "location_city"}

// Field is the outcome of a single selector lookup on a listing entry.
type Field struct {
	Value     string
	Defaulted bool
}

// NewField trims text and falls back to NoInformation when nothing is left.
func NewField(text string) Field {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultField()
	}
	return Field{Value: text}
}

// DefaultField is the placeholder for a missing or empty element.
func DefaultField() Field {
	return Field{Value: NoInformation, Defaulted: true}
}

// RawListing holds one dive-shop entry as extracted from a results page,
// keeping track of which fields had to be defaulted.
type RawListing struct {
	Name            Field
	Category        Field
	CenterCategory  Field
	LocationCountry Field
	LocationCity    Field

	Page     int
	Position int
}

// Fields returns the five fields in CSVHeader order.
func (r *RawListing) Fields() []Field {
	return []Field{r.Name, r.Category, r.CenterCategory, r.LocationCountry, r.LocationCity}
}

// DefaultedCount reports how many fields fell back to NoInformation.
func (r *RawListing) DefaultedCount() int {
	n := 0
	for _, f := range r.Fields() {
		if f.Defaulted {
			n++
		}
	}
	return n
}

// Flatten drops the extraction metadata and returns the export record.
func (r *RawListing) Flatten() *Listing {
	return &Listing{
		Name:            r.Name.Value,
		Category:        r.Category.Value,
		CenterCategory:  r.CenterCategory.Value,
		LocationCountry: r.LocationCountry.Value,
		LocationCity:    r.LocationCity.Value,
	}
}

// Listing is the flat record written to CSV, XLSX and PostgreSQL.
// Two listings are the same listing when all five fields are equal, so a
// Listing value is itself the deduplication key.
type Listing struct {
	Name            string
	Category        string
	CenterCategory  string
	LocationCountry string
	LocationCity    string
}

// Columns returns the field values in CSVHeader order.
func (l *Listing) Columns() []string {
	return []string{l.Name, l.Category, l.CenterCategory, l.LocationCountry, l.LocationCity}
}

// DefaultedCount counts the columns holding the NoInformation sentinel.
func (l *Listing) DefaultedCount() int {
	n := 0
	for _, v := range l.Columns() {
		if v == NoInformation {
			n++
		}
	}
	return n
}

// AuditReport summarises how complete the scraped dataset is.
type AuditReport struct {
	PagesVisited      int
	StopReason        string
	TotalListings     int
	UniqueListings    int
	DuplicatesDropped int
	FullyPopulated    int
	NameOnly          int
	FullyDefaulted    int
	DefaultedByField  map[string]int
	ListingsByCountry map[string]int
}
