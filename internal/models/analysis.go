package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Decision string

const (
	DecisionPass  Decision = "PASS"
	DecisionFail  Decision = "FAIL"
	DecisionError Decision = "ERROR"
)

// Category keys, in display order.
const (
	CategoryQualityFocused    = "QUALITY_FOCUSED"
	CategoryTestingKnowledge  = "TESTING_KNOWLEDGE"
	CategoryCollaborative     = "COLLABORATIVE"
	CategoryTestArchitecture  = "TEST_ARCHITECTURE"
	CategoryDevelopmentSkills = "DEVELOPMENT_SKILLS"
	CategoryAdaptable         = "ADAPTABLE"
	CategoryClientFocused     = "CLIENT_FOCUSED"
	CategoryAnalytical        = "ANALYTICAL"
	CategoryCommunity         = "COMMUNITY"
)

var CategoryKeys = []string{
	CategoryQualityFocused,
	CategoryTestingKnowledge,
	CategoryCollaborative,
	CategoryTestArchitecture,
	CategoryDevelopmentSkills,
	CategoryAdaptable,
	CategoryClientFocused,
	CategoryAnalytical,
	CategoryCommunity,
}

type CategoryAssessment struct {
	Rating     string `json:"rating"`
	Assessment string `json:"assessment"`
}

// AnalysisReport is the evaluation payload produced for a single CV.
type AnalysisReport struct {
	Decision            Decision                      `json:"decision"`
	Confidence          Confidence                    `json:"confidence"`
	Justification       Justification                 `json:"justification"`
	Strengths           []string                      `json:"strengths"`
	ImprovementAreas    []string                      `json:"improvement_areas"`
	CategoryAssessments map[string]CategoryAssessment `json:"category_assessments,omitempty"`
}

func (r AnalysisReport) Passed() bool {
	return r.Decision == DecisionPass
}

// HasCategoryAssessments reports whether the category section should be shown.
func (r AnalysisReport) HasCategoryAssessments() bool {
	return len(r.CategoryAssessments) > 0
}

// AnalysisResult is the envelope returned by GET /api/results/:id.
type AnalysisResult struct {
	ID               string         `json:"id"`
	OriginalFilename string         `json:"original_filename"`
	Timestamp        string         `json:"timestamp"`
	Result           AnalysisReport `json:"result"`
}

// Justification holds either an ordered list of points or a single block of
// text. Both shapes are accepted on the wire.
type Justification struct {
	Points []string
	Text   string
	isList bool
}

func JustificationPoints(points ...string) Justification {
	if points == nil {
		points = []string{}
	}
	return Justification{Points: points, isList: true}
}

func JustificationText(text string) Justification {
	return Justification{Text: text}
}

func (j Justification) IsList() bool {
	return j.isList
}

// Append adds a note, keeping the existing shape.
func (j Justification) Append(note string) Justification {
	if j.isList {
		points := append(append([]string{}, j.Points...), note)
		return JustificationPoints(points...)
	}
	return JustificationText(j.Text + "\n\n" + note)
}

func (j Justification) MarshalJSON() ([]byte, error) {
	if j.isList {
		points := j.Points
		if points == nil {
			points = []string{}
		}
		return json.Marshal(points)
	}
	return json.Marshal(j.Text)
}

func (j *Justification) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*j = Justification{}
		return nil
	}

	switch data[0] {
	case '[':
		var points []string
		if err := json.Unmarshal(data, &points); err != nil {
			return fmt.Errorf("invalid justification list: %w", err)
		}
		*j = JustificationPoints(points...)
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("invalid justification text: %w", err)
		}
		*j = JustificationText(text)
	default:
		return fmt.Errorf("justification must be a list of strings or a string")
	}
	return nil
}

// Confidence is a percentage in [0, 100]. Fractional values are rounded.
type Confidence int

// UnmarshalJSON accepts a number or a numeric string such as "85" or "85%".
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if json.Unmarshal(data, &s) != nil {
			return fmt.Errorf("confidence must be a number: %w", err)
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		parsed, parseErr := strconv.ParseFloat(s, 64)
		if parseErr != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return fmt.Errorf("confidence must be a number, got %q", s)
		}
		f = parsed
	}
	v := int(math.Round(f))
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	*c = Confidence(v)
	return nil
}

// Analysis is the stored record behind an AnalysisResult.
type Analysis struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OriginalFilename string         `gorm:"type:text" json:"original_filename"`
	StoredFilename   string         `gorm:"type:text" json:"stored_filename"`
	StorageLocation  string         `gorm:"type:text" json:"storage_location"`
	Result           AnalysisReport `gorm:"type:jsonb;serializer:json" json:"result"`
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}

func (a *Analysis) ToResult() AnalysisResult {
	return AnalysisResult{
		ID:               a.ID.String(),
		OriginalFilename: a.OriginalFilename,
		Timestamp:        a.CreatedAt.Format(time.RFC3339),
		Result:           a.Result,
	}
}
