// Package taxonomy loads and validates the weighted factor taxonomy.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/ppiankov/impactlens/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// weightTolerance absorbs float rounding in decimal weights such as 0.3+0.3+0.15+0.15+0.1
const weightTolerance = 1e-9

// Taxonomy is the loaded, validated factor configuration
type Taxonomy struct {
	Attributes model.AttributePatterns `yaml:"attributes"`
	Categories []model.Category        `yaml:"categories"`

	matcher *AttributeMatcher
}

// AttributeMatcher derives entity attributes from a lowercase corpus
type AttributeMatcher struct {
	locale           *regexp.Regexp
	partnerName      *regexp.Regexp
	partnerIndicator *regexp.Regexp
	alliance         *regexp.Regexp
}

// Default returns the built-in taxonomy
func Default() (*Taxonomy, error) {
	t, err := Parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in taxonomy: %w", err)
	}
	return t, nil
}

// Load reads a taxonomy from path, or the built-in one when path is empty
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates taxonomy YAML
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the weight-sum and binding invariants and compiles attribute patterns
func (t *Taxonomy) Validate() error {
	var errs []error

	seenCategory := make(map[model.CategoryKey]bool)
	seenFactor := make(map[string]bool)
	categorySum := 0.0

	for _, cat := range t.Categories {
		if !isKnownCategory(cat.Key) {
			errs = append(errs, fmt.Errorf("unknown category %q", cat.Key))
			continue
		}
		if seenCategory[cat.Key] {
			errs = append(errs, fmt.Errorf("duplicate category %q", cat.Key))
			continue
		}
		seenCategory[cat.Key] = true
		categorySum += cat.Weight

		if len(cat.Factors) == 0 {
			errs = append(errs, fmt.Errorf("category %q has no factors", cat.Key))
			continue
		}

		factorSum := 0.0
		for _, f := range cat.Factors {
			factorSum += f.Weight
			errs = append(errs, validateFactor(cat.Key, f, seenFactor)...)
		}
		if math.Abs(factorSum-1) > weightTolerance {
			errs = append(errs, fmt.Errorf("category %q factor weights sum to %.6f, want 1", cat.Key, factorSum))
		}
	}

	for _, key := range model.CategoryKeys {
		if !seenCategory[key] {
			errs = append(errs, fmt.Errorf("missing category %q", key))
		}
	}
	if math.Abs(categorySum-1) > weightTolerance {
		errs = append(errs, fmt.Errorf("category weights sum to %.6f, want 1", categorySum))
	}

	matcher, err := compileAttributes(t.Attributes)
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid taxonomy: %w", errors.Join(errs...))
	}
	t.matcher = matcher
	return nil
}

func validateFactor(key model.CategoryKey, f model.Factor, seen map[string]bool) []error {
	var errs []error
	if f.ID == "" {
		return append(errs, fmt.Errorf("category %q has a factor without id", key))
	}
	if seen[f.ID] {
		errs = append(errs, fmt.Errorf("duplicate factor id %q", f.ID))
	}
	seen[f.ID] = true

	if f.Weight < 0 || f.Weight > 1 {
		errs = append(errs, fmt.Errorf("factor %q weight %.3f outside [0,1]", f.ID, f.Weight))
	}
	if len(f.Keywords) == 0 {
		errs = append(errs, fmt.Errorf("factor %q has no keywords", f.ID))
	}
	for _, kw := range f.Keywords {
		if strings.TrimSpace(kw) == "" {
			errs = append(errs, fmt.Errorf("factor %q has an empty keyword", f.ID))
		}
	}

	if f.Override != "" {
		if key != model.CategoryKeystone {
			errs = append(errs, fmt.Errorf("factor %q: override_attribute is only allowed in keystone", f.ID))
		}
		switch f.Override {
		case model.AttributeLocale, model.AttributePartnership, model.AttributeAlliance:
		default:
			errs = append(errs, fmt.Errorf("factor %q: unknown override_attribute %q", f.ID, f.Override))
		}
	}
	if f.NameFloor != nil {
		if key != model.CategoryBuild {
			errs = append(errs, fmt.Errorf("factor %q: name_floor is only allowed in build", f.ID))
		}
		if f.NameFloor.Value < 0 || f.NameFloor.Value > 100 {
			errs = append(errs, fmt.Errorf("factor %q: name_floor value %d outside [0,100]", f.ID, f.NameFloor.Value))
		}
		if len(f.NameFloor.Patterns) == 0 {
			errs = append(errs, fmt.Errorf("factor %q: name_floor has no patterns", f.ID))
		}
	}
	return errs
}

func isKnownCategory(key model.CategoryKey) bool {
	for _, k := range model.CategoryKeys {
		if k == key {
			return true
		}
	}
	return false
}

func compileAttributes(p model.AttributePatterns) (*AttributeMatcher, error) {
	var m AttributeMatcher
	var errs []error
	for _, c := range []struct {
		name    string
		pattern string
		dst     **regexp.Regexp
	}{
		{"locale", p.Locale, &m.locale},
		{"partner_name", p.PartnerName, &m.partnerName},
		{"partner_indicator", p.PartnerIndicator, &m.partnerIndicator},
		{"alliance", p.Alliance, &m.alliance},
	} {
		if c.pattern == "" {
			errs = append(errs, fmt.Errorf("attributes.%s is empty", c.name))
			continue
		}
		re, err := regexp.Compile(c.pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("attributes.%s: %w", c.name, err))
			continue
		}
		*c.dst = re
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &m, nil
}

// Match derives attributes from a lowercase corpus
func (m *AttributeMatcher) Match(corpus string) model.Attributes {
	return model.Attributes{
		HeadquartersLocalMatch: m.locale.MatchString(corpus),
		NamedPartnerMatch:      m.partnerName.MatchString(corpus) && m.partnerIndicator.MatchString(corpus),
		AllianceMatch:          m.alliance.MatchString(corpus),
	}
}

// Matcher returns the compiled attribute matcher
func (t *Taxonomy) Matcher() *AttributeMatcher {
	return t.matcher
}

// Category returns the category with the given key
func (t *Taxonomy) Category(key model.CategoryKey) (model.Category, bool) {
	for _, c := range t.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return model.Category{}, false
}

// FactorCount returns the number of factors across all categories
func (t *Taxonomy) FactorCount() int {
	n := 0
	for _, c := range t.Categories {
		n += len(c.Factors)
	}
	return n
}
