package scraper

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Selectors describes where each listing field lives in the rendered
// locator page. Location fields are picked by position among the spans
// matched by LocationSpan, so CountryIndex and CityIndex depend on the
// locator's current markup.
type Selectors struct {
	EntrySelector          string `yaml:"entry_selector"`
	NameSelector           string `yaml:"name_selector"`
	CategorySelector       string `yaml:"category_selector"`
	CenterCategorySelector string `yaml:"center_category_selector"`
	LocationSpan           string `yaml:"location_span_selector"`
	CountryIndex           int    `yaml:"country_index"`
	CityIndex              int    `yaml:"city_index"`
	NextPageControl        string `yaml:"next_page_control"`
}

// DefaultSelectors matches the PADI locator markup.
func DefaultSelectors() *Selectors {
	return &Selectors{
		EntrySelector:          "ul#padi-store-url-link",
		NameSelector:           ".listing",
		CategorySelector:       ".featureCategory",
		CenterCategorySelector: ".centerTypeCategory",
		LocationSpan:           "span.ng-star-inserted",
		CountryIndex:           5,
		CityIndex:              3,
		NextPageControl:        "i.icon-arrow-right.ng-tns-c3-0.ng-star-inserted",
	}
}

// LoadSelectors returns DefaultSelectors overlaid with the YAML file at
// filePath. An empty path yields the defaults.
func LoadSelectors(filePath string) (*Selectors, error) {
	selectors := DefaultSelectors()
	if filePath == "" {
		return selectors, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("selectors: read %s: %w", filePath, err)
	}
	if err := yaml.Unmarshal(data, selectors); err != nil {
		return nil, fmt.Errorf("selectors: parse %s: %w", filePath, err)
	}
	if err := selectors.Validate(); err != nil {
		return nil, fmt.Errorf("selectors: %s: %w", filePath, err)
	}
	return selectors, nil
}

// Validate checks that every lookup has something to match on.
func (s *Selectors) Validate() error {
	required := []struct{ key, value string }{
		{"entry_selector", s.EntrySelector},
		{"name_selector", s.NameSelector},
		{"category_selector", s.CategorySelector},
		{"center_category_selector", s.CenterCategorySelector},
		{"location_span_selector", s.LocationSpan},
		{"next_page_control", s.NextPageControl},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	if s.CountryIndex < 0 {
		return fmt.Errorf("country_index must be >= 0")
	}
	if s.CityIndex < 0 {
		return fmt.Errorf("city_index must be >= 0")
	}
	return nil
}
