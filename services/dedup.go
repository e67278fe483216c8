package services

import (
	"padi-scraper/models"
	"padi-scraper/utils"
)

// Deduplicator collapses listings whose five fields are all equal.
type Deduplicator struct {
	logger *utils.Logger
}

// NewDeduplicator creates a Deduplicator with the given logger.
func NewDeduplicator(logger *utils.Logger) *Deduplicator {
	return &Deduplicator{logger: logger}
}

// Dedupe keeps the first occurrence of every distinct listing, preserving
// accumulation order. Running it on its own output changes nothing.
func (d *Deduplicator) Dedupe(listings []*models.Listing) []*models.Listing {
	seen := utils.NewKeySet[models.Listing]()
	result := make([]*models.Listing, 0, len(listings))

	for _, l := range listings {
		if l == nil {
			continue
		}
		if !seen.Add(*l) {
			continue
		}
		result = append(result, l)
	}

	d.logger.Info("[dedup] %d → %d listings (dropped %d duplicates)",
		len(listings), seen.Size(), len(listings)-len(result))
	return result
}

// Flatten converts extracted listings into export records.
func Flatten(raw []*models.RawListing) []*models.Listing {
	out := make([]*models.Listing, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.Flatten())
	}
	return out
}
