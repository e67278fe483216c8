package padi

import (
	"context"
	"fmt"

	"padi-scraper/config"
	"padi-scraper/models"
	"padi-scraper/utils"
)

// Stop reasons recorded on Result.
const (
	StopNoNextPage  = "no next page"
	StopPageLimit   = "page limit reached"
	StopInterrupted = "interrupted"
	StopFailed      = "failed"
)

// Result is everything gathered by one pagination run.
type Result struct {
	Listings     []*models.RawListing
	PagesVisited int
	StopReason   string
	// Dropped counts entries skipped by MaxListingsPerPage.
	Dropped int
}

// Scraper walks the locator result pages and accumulates listings.
type Scraper struct {
	cfg       *config.Config
	logger    *utils.Logger
	nav       Navigator
	extractor *Extractor
}

// New creates a Scraper that drives nav and feeds each page to extractor.
func New(cfg *config.Config, logger *utils.Logger, nav Navigator, extractor *Extractor) *Scraper {
	return &Scraper{
		cfg:       cfg,
		logger:    logger,
		nav:       nav,
		extractor: extractor,
	}
}

// Scrape opens the browser session, extracts every page until the locator
// runs out of pages or MaxPages is hit, and closes the session on return.
// On error the listings gathered so far are still returned.
func (s *Scraper) Scrape(ctx context.Context) (*Result, error) {
	result := &Result{Listings: make([]*models.RawListing, 0)}
	defer s.nav.Close()

	s.logger.Info("[padi] Starting scrape, page limit %d", s.cfg.MaxPages)

	if err := s.nav.Open(ctx); err != nil {
		result.StopReason = s.stopReason(ctx)
		return result, err
	}

	for page := 1; ; page++ {
		html, err := s.nav.PageHTML(ctx)
		if err != nil {
			result.StopReason = s.stopReason(ctx)
			return result, fmt.Errorf("page %d: %w", page, err)
		}

		extracted, err := s.extractor.ExtractPage(html, page)
		if err != nil {
			result.StopReason = StopFailed
			return result, err
		}
		listings := extracted.Listings
		if extracted.Dropped > 0 {
			result.Dropped += extracted.Dropped
			s.logger.Warn("[padi] Page %d: %d entries over the per-page limit of %d were skipped",
				page, extracted.Dropped, s.cfg.MaxListingsPerPage)
		}

		result.Listings = append(result.Listings, listings...)
		result.PagesVisited++
		s.logger.Info("[padi] Page %d done: %d listings, %d collected so far",
			page, len(listings), len(result.Listings))

		if len(listings) == 0 {
			s.logger.Warn("[padi] Page %d had no listing entries", page)
		}

		if page >= s.cfg.MaxPages {
			result.StopReason = StopPageLimit
			break
		}

		advanced, err := s.nav.Next(ctx)
		if err != nil {
			result.StopReason = s.stopReason(ctx)
			return result, fmt.Errorf("advance from page %d: %w", page, err)
		}
		if !advanced {
			result.StopReason = StopNoNextPage
			break
		}
	}

	s.logger.Info("[padi] Scrape complete: %d pages, %d raw listings (%s)",
		result.PagesVisited, len(result.Listings), result.StopReason)
	return result, nil
}

func (s *Scraper) stopReason(ctx context.Context) string {
	if ctx.Err() != nil {
		return StopInterrupted
	}
	return StopFailed
}
