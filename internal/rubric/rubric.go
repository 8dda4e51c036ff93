// Package rubric holds the reference "what good looks like" rubric: the nine
// assessment categories, the evidence scale and the pass/fail rules. It is
// shown on the criteria page and used as the default evaluation criteria.
package rubric

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rubric.yaml
var rubricYAML []byte

type Category struct {
	Key         string `yaml:"key"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type EvidenceLevel struct {
	Label   string `yaml:"label"`
	Meaning string `yaml:"meaning"`
}

type ConfidenceBand struct {
	Range   string `yaml:"range"`
	Meaning string `yaml:"meaning"`
}

type Rubric struct {
	Role            string           `yaml:"role"`
	Categories      []Category       `yaml:"categories"`
	EvidenceLevels  []EvidenceLevel  `yaml:"evidence_levels"`
	PassRules       []string         `yaml:"pass_rules"`
	ConfidenceBands []ConfidenceBand `yaml:"confidence_bands"`
	Template        string           `yaml:"template"`
	WritingTips     []string         `yaml:"writing_tips"`
}

var (
	defaultOnce   sync.Once
	defaultRubric *Rubric
	defaultErr    error
)

// Parse decodes a rubric document.
func Parse(data []byte) (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse rubric: %w", err)
	}
	if len(r.Categories) == 0 {
		return nil, fmt.Errorf("rubric has no categories")
	}
	return &r, nil
}

// Default returns the embedded rubric.
func Default() (*Rubric, error) {
	defaultOnce.Do(func() {
		defaultRubric, defaultErr = Parse(rubricYAML)
	})
	return defaultRubric, defaultErr
}

// MustDefault is Default for program start-up.
func MustDefault() *Rubric {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Category looks up a category by key.
func (r *Rubric) Category(key string) (Category, bool) {
	for _, c := range r.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// CriteriaText renders the rubric as evaluation criteria, one paragraph per
// category tagged with its upper-case title.
func (r *Rubric) CriteriaText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "What good looks like in a %s:\n", r.Role)
	for _, c := range r.Categories {
		fmt.Fprintf(&sb, "\n%s [%s]\n", strings.TrimSpace(c.Description), strings.ToUpper(c.Title))
	}
	return sb.String()
}
