package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"padi-scraper/config"
	"padi-scraper/models"
	"padi-scraper/scraper"
	"padi-scraper/scraper/padi"
	"padi-scraper/services"
	"padi-scraper/storage"
	"padi-scraper/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	logger, err := utils.NewLoggerWithOptions(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer logger.Close()

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		return 1
	}

	selectors, err := scraper.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		logger.Error("Failed to load selectors: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	logger.Info("=== PADI Dive Shop Scraper starting (run %s) ===", runID)
	logger.Info("Config: start %s | page limit: %d | listings/page: %d | ready timeout: %v",
		cfg.StartURL, cfg.MaxPages, cfg.MaxListingsPerPage, cfg.PageReadyTimeout())

	writers, closeWriters, err := openWriters(ctx, cfg, runID, logger)
	if err != nil {
		logger.Error("Failed to open output: %v", err)
		return 1
	}

	nav := padi.NewBrowser(cfg, selectors, logger)
	extractor := padi.NewExtractor(selectors, cfg.MaxListingsPerPage)

	report, runErr := runPipeline(ctx, cfg, logger, nav, extractor, writers)
	for _, w := range writers {
		if pg, ok := w.(*storage.PostgresWriter); ok {
			if n, err := pg.CountRun(); err == nil {
				logger.Info("[postgres] %d rows in dive_shops belong to run %s", n, runID)
			}
		}
	}
	if err := closeWriters(); err != nil {
		logger.Error("Failed to finalise output: %v", err)
		runErr = errors.Join(runErr, err)
	}

	services.NewAuditService(logger).Print(report)

	if runErr != nil {
		logger.Error("Run finished with errors: %v", runErr)
		return 1
	}
	fmt.Printf("  Done. %d dive shops → %s\n\n", report.UniqueListings, cfg.CSVOutputPath)
	return 0
}

// openWriters builds the CSV sink and whichever optional sinks are enabled.
// The returned func closes all of them.
func openWriters(ctx context.Context, cfg *config.Config, runID string, logger *utils.Logger) ([]storage.ListingWriter, func() error, error) {
	var writers []storage.ListingWriter
	closeAll := func() error {
		var errs []error
		for _, w := range writers {
			if err := w.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return nil, nil, err
	}
	writers = append(writers, csvWriter)

	if cfg.XLSXOutputPath != "" {
		xlsxWriter, err := storage.NewXLSXWriter(cfg.XLSXOutputPath)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		writers = append(writers, xlsxWriter)
	}

	if cfg.PostgresEnabled {
		retry := &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		}
		pgWriter, err := storage.NewPostgresWriter(ctx, cfg.DSN(), runID, retry)
		if err != nil {
			logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			_ = closeAll()
			return nil, nil, err
		}
		writers = append(writers, pgWriter)
	}

	return writers, closeAll, nil
}

// runPipeline paginates, then deduplicates and exports whatever was
// accumulated. Export happens even when pagination failed or was
// interrupted; the pagination error is returned alongside any write errors.
func runPipeline(
	ctx context.Context,
	cfg *config.Config,
	logger *utils.Logger,
	nav padi.Navigator,
	extractor *padi.Extractor,
	writers []storage.ListingWriter,
) (*models.AuditReport, error) {
	result, scrapeErr := padi.New(cfg, logger, nav, extractor).Scrape(ctx)
	if scrapeErr != nil {
		logger.Error("Scrape stopped early (%s): %v", result.StopReason, scrapeErr)
	}

	unique := services.NewDeduplicator(logger).Dedupe(services.Flatten(result.Listings))
	logger.Info("Exporting %d unique listings", len(unique))

	errs := []error{scrapeErr}
	for _, w := range writers {
		if err := w.Write(unique); err != nil {
			logger.Error("Write failed: %v", err)
			errs = append(errs, err)
		}
	}

	report := services.NewAuditService(logger).Generate(result.Listings, unique)
	report.PagesVisited = result.PagesVisited
	report.StopReason = result.StopReason

	return report, errors.Join(errs...)
}
