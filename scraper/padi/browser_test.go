package padi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"padi-scraper/scraper"
	"padi-scraper/utils"
)

const nextControl = `<i class="icon-arrow-right ng-tns-c3-0 ng-star-inserted" ` +
	`style="display:inline-block;width:24px;height:24px"%s>&gt;</i>`

// locatorPage serves one results page. With a non-empty onclick the next
// control runs that script when clicked.
func locatorPage(withControl bool, onclick string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="results">`)
	b.WriteString(renderEntry(fullEntry("First Shop")))
	b.WriteString(`</div>`)
	if withControl {
		attr := ""
		if onclick != "" {
			attr = fmt.Sprintf(` onclick="%s"`, onclick)
		}
		fmt.Fprintf(&b, nextControl, attr)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func newLocatorServer(t *testing.T) *httptest.Server {
	t.Helper()
	swap := `document.querySelector('.listing').textContent = 'Second Shop'`

	mux := http.NewServeMux()
	mux.HandleFunc("/last", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, locatorPage(false, ""))
	})
	mux.HandleFunc("/stuck", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, locatorPage(true, ""))
	})
	mux.HandleFunc("/paged", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, locatorPage(true, swap))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func openTestBrowser(t *testing.T, url string) *Browser {
	t.Helper()
	if findChromeBinary("") == "" {
		t.Skip("no Chrome or Chromium binary available")
	}

	cfg := testConfig(5)
	cfg.StartURL = url
	cfg.Headless = true
	cfg.PageReadyTimeoutS = 3
	cfg.PagePollIntervalMs = 100
	cfg.PageSettleMs = 0

	b := NewBrowser(cfg, scraper.DefaultSelectors(), utils.NewLogger())
	t.Cleanup(b.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	if err := b.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return b
}

func TestBrowserNextWithoutControl(t *testing.T) {
	srv := newLocatorServer(t)
	b := openTestBrowser(t, srv.URL+"/last")

	advanced, err := b.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advanced {
		t.Error("a page without a next control should end pagination")
	}
}

func TestBrowserNextPageNeverChanges(t *testing.T) {
	srv := newLocatorServer(t)
	b := openTestBrowser(t, srv.URL+"/stuck")

	start := time.Now()
	advanced, err := b.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advanced {
		t.Error("an unchanged page should end pagination")
	}
	if elapsed := time.Since(start); elapsed > 15*time.Second {
		t.Errorf("wait was not bounded by the ready timeout: %v", elapsed)
	}
}

func TestBrowserNextRendersNewListings(t *testing.T) {
	srv := newLocatorServer(t)
	b := openTestBrowser(t, srv.URL+"/paged")

	advanced, err := b.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !advanced {
		t.Fatal("a changed first listing should count as a new page")
	}

	html, err := b.PageHTML(context.Background())
	if err != nil {
		t.Fatalf("PageHTML: %v", err)
	}
	listings, err := newTestExtractor(0).Extract(html, 2)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(listings) != 1 || listings[0].Name.Value != "Second Shop" {
		t.Errorf("unexpected listings after advance: %+v", listings)
	}
}
