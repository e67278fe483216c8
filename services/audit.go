package services

import (
	"fmt"
	"sort"
	"strings"

	"padi-scraper/models"
	"padi-scraper/utils"
)

// AuditService reports how complete the extracted dataset is.
type AuditService struct {
	logger *utils.Logger
}

// NewAuditService creates an AuditService with the given logger.
func NewAuditService(logger *utils.Logger) *AuditService {
	return &AuditService{logger: logger}
}

// Generate counts defaulted fields over every extracted listing, before
// deduplication, and records how many unique rows were exported.
func (s *AuditService) Generate(raw []*models.RawListing, unique []*models.Listing) *models.AuditReport {
	report := &models.AuditReport{
		TotalListings:     len(raw),
		UniqueListings:    len(unique),
		DuplicatesDropped: len(raw) - len(unique),
		DefaultedByField:  make(map[string]int, len(models.CSVHeader)),
		ListingsByCountry: make(map[string]int),
	}
	for _, col := range models.CSVHeader {
		report.DefaultedByField[col] = 0
	}

	for _, r := range raw {
		fields := r.Fields()
		for i, f := range fields {
			if f.Defaulted {
				report.DefaultedByField[models.CSVHeader[i]]++
			}
		}

		switch n := r.DefaultedCount(); {
		case n == 0:
			report.FullyPopulated++
		case n == len(fields):
			report.FullyDefaulted++
		case n == len(fields)-1 && !r.Name.Defaulted:
			report.NameOnly++
		}
	}

	for _, l := range unique {
		if l.LocationCountry != models.NoInformation {
			report.ListingsByCountry[l.LocationCountry]++
		}
	}

	if report.FullyDefaulted > 0 {
		s.logger.Warn("[audit] %d listings had no extractable field at all", report.FullyDefaulted)
	}
	return report
}

func (s *AuditService) Print(r *models.AuditReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  PADI DIVE SHOP SCRAPE AUDIT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Pages visited          : \033[1m%d\033[0m (%s)\n", r.PagesVisited, r.StopReason)
	fmt.Printf("  Listings extracted     : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Printf("  Unique listings        : \033[1m%d\033[0m\n", r.UniqueListings)
	fmt.Printf("  Duplicates dropped     : \033[1m%d\033[0m\n", r.DuplicatesDropped)
	fmt.Println()

	fmt.Printf("\033[1;33m  Completeness\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Fully populated        : \033[1;32m%d\033[0m\n", r.FullyPopulated)
	fmt.Printf("  Name only              : \033[1;33m%d\033[0m\n", r.NameOnly)
	fmt.Printf("  Nothing extracted      : \033[1;31m%d\033[0m\n", r.FullyDefaulted)
	fmt.Println()

	fmt.Printf("\033[1;33m  Defaulted to %s\033[0m\n", models.NoInformation)
	fmt.Printf("  %s\n", thin)
	for _, col := range models.CSVHeader {
		fmt.Printf("  %-22s : %d\n", col, r.DefaultedByField[col])
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Top Countries\033[0m\n")
	fmt.Printf("  %s\n", thin)
	countries := topCountries(r.ListingsByCountry, 10)
	if len(countries) == 0 {
		fmt.Printf("  No country data\n")
	}
	for _, c := range countries {
		fmt.Printf("  %-30s %d\n", truncate(c.country, 28), c.count)
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

type countryCount struct {
	country string
	count   int
}

// topCountries sorts by count descending, then name, and keeps the first n.
func topCountries(m map[string]int, n int) []countryCount {
	out := make([]countryCount, 0, len(m))
	for c, cnt := range m {
		out = append(out, countryCount{c, cnt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].country < out[j].country
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// truncate shortens s to max runes, ending in "..." when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
