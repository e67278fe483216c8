package padi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"padi-scraper/config"
	"padi-scraper/scraper"
	"padi-scraper/utils"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Navigator drives a single browser session through the locator results.
type Navigator interface {
	// Open starts the session and loads the first results page.
	Open(ctx context.Context) error
	// PageHTML returns the rendered markup of the current page.
	PageHTML(ctx context.Context) (string, error)
	// Next advances to the following page. It returns false when there is
	// no next page to move to.
	Next(ctx context.Context) (bool, error)
	// Close tears the session down. It is safe to call more than once.
	Close()
}

// Browser is the chromedp-backed Navigator.
type Browser struct {
	cfg       *config.Config
	selectors *scraper.Selectors
	logger    *utils.Logger

	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewBrowser creates a Browser. No Chrome process is started until Open.
func NewBrowser(cfg *config.Config, selectors *scraper.Selectors, logger *utils.Logger) *Browser {
	return &Browser{cfg: cfg, selectors: selectors, logger: logger}
}

func (b *Browser) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("ignore-ssl-errors", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if bin := findChromeBinary(b.cfg.ChromeBin); bin != "" {
		b.logger.Info("[padi] Using browser binary: %s", bin)
		opts = append(opts, chromedp.ExecPath(bin))
	}
	return opts
}

func (b *Browser) logf(format string, args ...interface{}) {
	if b.logger.IsDebug() {
		b.logger.Debug("[chromedp] "+format, args...)
	}
}

// Open launches Chrome, loads the start URL and waits until the first
// listing entry is in the DOM.
func (b *Browser) Open(ctx context.Context) error {
	if b.tabCtx != nil {
		return errors.New("padi: browser already open")
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(b.logf))
	b.tabCtx, b.cancelTab, b.cancelAlloc = tabCtx, cancelTab, cancelAlloc

	// An empty Run starts the browser on tabCtx so later timeouts only bound
	// individual actions, not the browser lifetime.
	if err := chromedp.Run(tabCtx); err != nil {
		return fmt.Errorf("padi: launch browser: %w", err)
	}

	b.logger.Info("[padi] Loading %s", b.cfg.StartURL)
	err := b.run(
		chromedp.Navigate(b.cfg.StartURL),
		chromedp.WaitReady(b.selectors.EntrySelector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("padi: open %s: %w", b.cfg.StartURL, err)
	}
	return nil
}

// PageHTML returns the outer HTML of the current document.
func (b *Browser) PageHTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if b.tabCtx == nil {
		return "", errors.New("padi: browser not open")
	}

	var html string
	if err := b.run(chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("padi: read page html: %w", err)
	}
	return html, nil
}

// Next clicks the next-page control and waits for a different first listing
// to render. A missing control, a failed click or a page that never changes
// within the ready timeout all mean pagination is over.
func (b *Browser) Next(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if b.tabCtx == nil {
		return false, errors.New("padi: browser not open")
	}

	var present bool
	probe := fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(b.selectors.NextPageControl))
	if err := b.run(chromedp.Evaluate(probe, &present)); err != nil {
		return false, fmt.Errorf("padi: probe next control: %w", err)
	}
	if !present {
		b.logger.Info("[padi] Next-page control not found")
		return false, nil
	}

	before, err := b.fingerprint()
	if err != nil {
		return false, fmt.Errorf("padi: read page fingerprint: %w", err)
	}

	if err := b.run(chromedp.Click(b.selectors.NextPageControl, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		b.logger.Warn("[padi] Next-page click failed: %v", err)
		return false, nil
	}

	if err := b.waitForPageChange(ctx, before); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		b.logger.Warn("[padi] Next page did not render: %v", err)
		return false, nil
	}

	if delay := b.cfg.PageSettleDelay(); delay > 0 {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(delay):
		}
	}
	return true, nil
}

// Close cancels the tab and then the allocator, which kills Chrome.
func (b *Browser) Close() {
	if b.cancelTab != nil {
		b.cancelTab()
		b.cancelTab = nil
	}
	if b.cancelAlloc != nil {
		b.cancelAlloc()
		b.cancelAlloc = nil
	}
	b.tabCtx = nil
}

// run executes actions on the tab, bounded by the page ready timeout.
func (b *Browser) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(b.tabCtx, b.cfg.PageReadyTimeout())
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// fingerprint is the text of the first listing entry, or "" when the page
// has none.
func (b *Browser) fingerprint() (string, error) {
	script := fmt.Sprintf(`(function() {
		var el = document.querySelector(%s);
		return el ? el.innerText : "";
	})()`, jsString(b.selectors.EntrySelector))

	var text string
	err := b.run(chromedp.Evaluate(script, &text))
	return text, err
}

func (b *Browser) waitForPageChange(ctx context.Context, before string) error {
	timeout := b.cfg.PageReadyTimeout()
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(b.cfg.PagePollInterval())
	defer ticker.Stop()

	for {
		current, err := b.fingerprint()
		if err == nil && current != "" && current != before {
			return nil
		}
		if time.Now().After(deadline) {
			if err != nil {
				return fmt.Errorf("no new listings within %v: %w", timeout, err)
			}
			return fmt.Errorf("no new listings within %v", timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted)
}

// findChromeBinary locates Chrome/Chromium, preferring an explicit path.
func findChromeBinary(explicit string) string {
	if explicit != "" {
		return explicit
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
