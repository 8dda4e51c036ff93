// Package presenter turns analysis results into display values shared by the
// web views and the terminal client.
package presenter

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"qahiring/cv-analyzer/internal/models"
)

type Color string

const (
	ColorSuccess Color = "success"
	ColorInfo    Color = "info"
	ColorWarning Color = "warning"
	ColorError   Color = "error"
)

// ConfidenceTier uses strict comparisons: 75 is a warning and 50 an error.
func ConfidenceTier(confidence int) Color {
	switch {
	case confidence > 75:
		return ColorSuccess
	case confidence > 50:
		return ColorWarning
	default:
		return ColorError
	}
}

// RatingColor classifies a free-text rating label by substring, in order of
// precedence Strong, Moderate, Weak.
func RatingColor(rating string) Color {
	switch {
	case strings.Contains(rating, "Strong"):
		return ColorSuccess
	case strings.Contains(rating, "Moderate"):
		return ColorInfo
	case strings.Contains(rating, "Weak"):
		return ColorWarning
	default:
		return ColorError
	}
}

func DecisionColor(d models.Decision) Color {
	if d == models.DecisionPass {
		return ColorSuccess
	}
	return ColorError
}

// DecisionLabel renders anything that is not a pass as FAIL.
func DecisionLabel(d models.Decision) string {
	if d == models.DecisionPass {
		return string(models.DecisionPass)
	}
	return string(models.DecisionFail)
}

// CategoryLabel turns QUALITY_FOCUSED into "Quality Focused".
func CategoryLabel(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

type CategoryCard struct {
	Key        string
	Label      string
	Rating     string
	Assessment string
	Color      Color
}

// OrderedCategories returns the fixed category keys present in assessments,
// followed by any unexpected keys alphabetically.
func OrderedCategories(assessments map[string]models.CategoryAssessment) []string {
	if len(assessments) == 0 {
		return nil
	}

	keys := make([]string, 0, len(assessments))
	seen := make(map[string]bool, len(models.CategoryKeys))
	for _, key := range models.CategoryKeys {
		seen[key] = true
		if _, ok := assessments[key]; ok {
			keys = append(keys, key)
		}
	}

	var extra []string
	for key := range assessments {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)

	return append(keys, extra...)
}

func CategoryCards(assessments map[string]models.CategoryAssessment) []CategoryCard {
	keys := OrderedCategories(assessments)
	if keys == nil {
		return nil
	}

	cards := make([]CategoryCard, 0, len(keys))
	for _, key := range keys {
		cards = append(cards, newCard(key, assessments[key]))
	}
	return cards
}

func newCard(key string, a models.CategoryAssessment) CategoryCard {
	return CategoryCard{
		Key:        key,
		Label:      CategoryLabel(key),
		Rating:     a.Rating,
		Assessment: a.Assessment,
		Color:      RatingColor(a.Rating),
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// FormatTimestamp renders an ISO-8601 timestamp for display. Values that do
// not parse are returned unchanged.
func FormatTimestamp(ts string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("2 Jan 2006, 15:04:05")
		}
	}
	return ts
}
