package core

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/arnavsurve/popform/pkg/browser"
)

// ValidateConfigStructure checks every page and step before any browser work begins.
func ValidateConfigStructure(cfg *Config) error {
	if cfg == nil || len(cfg.Pages) == 0 {
		return fmt.Errorf("config defines no pages")
	}

	for i, page := range cfg.Pages {
		if err := validatePage(page); err != nil {
			return fmt.Errorf("page %d (%q): %w", i, page.Name, err)
		}
	}
	return nil
}

// DuplicatePageNames lists names used by more than one page, in first-seen
// order. Duplicates are legal; pages are told apart by position.
func DuplicatePageNames(cfg *Config) []string {
	if cfg == nil {
		return nil
	}
	seen := make(map[string]int, len(cfg.Pages))
	var dups []string
	for _, page := range cfg.Pages {
		seen[page.Name]++
		if seen[page.Name] == 2 {
			dups = append(dups, page.Name)
		}
	}
	return dups
}

func validatePage(page PageDefinition) error {
	if page.URL == "" {
		return fmt.Errorf("missing 'url'")
	}
	u, err := url.Parse(page.URL)
	if err != nil {
		return fmt.Errorf("invalid 'url' %q: %w", page.URL, err)
	}
	if u.Scheme == "" || (u.Host == "" && u.Scheme != "file" && u.Scheme != "about" && u.Scheme != "data") {
		return fmt.Errorf("'url' %q must be absolute", page.URL)
	}

	if page.HasExplicitSteps() {
		if page.Step.HasContent() {
			return fmt.Errorf("'steps' cannot be combined with top-level step keys")
		}
		if len(page.Steps) == 0 {
			return fmt.Errorf("'steps' must not be empty")
		}
	}

	for i, step := range page.NormalizedSteps() {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %q: %w", page.StepLabel(i), err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	if step.Delay < 0 {
		return fmt.Errorf("'delay' must not be negative, got %d", step.Delay)
	}
	for i, field := range step.Fields {
		if field.Name == "" {
			return fmt.Errorf("field %d has an empty name", i)
		}
	}
	for i, el := range step.Elements {
		if strings.TrimSpace(el.Query) == "" {
			return fmt.Errorf("element %d is missing 'query'", i)
		}
	}
	for i, selector := range step.Click {
		if strings.TrimSpace(selector) == "" {
			return fmt.Errorf("click selector %d is empty", i)
		}
	}
	for _, key := range step.Keys {
		if _, err := browser.LookupKey(key); err != nil {
			return fmt.Errorf("invalid key: %w", err)
		}
	}
	return nil
}
