package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qahiring/cv-analyzer/internal/models"
	"qahiring/cv-analyzer/internal/rubric"
)

type fakeProvider struct {
	responses []string
	errs      []error
	prompts   []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	i := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	var (
		resp string
		err  error
	)
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return resp, err
}

type fakeCriteriaStore struct {
	text string
	err  error
}

func (f fakeCriteriaStore) Get() (string, error) { return f.text, f.err }

type fakeRetriever struct {
	context string
	err     error
}

func (f fakeRetriever) Retrieve(ctx context.Context, cvText string) (string, error) {
	return f.context, f.err
}

// ratings builds assessments for all nine categories, every one rated
// "Moderate evidence" unless overridden.
func ratings(overrides map[string]string) map[string]models.CategoryAssessment {
	out := make(map[string]models.CategoryAssessment, len(models.CategoryKeys))
	for _, key := range models.CategoryKeys {
		out[key] = models.CategoryAssessment{Rating: "Moderate evidence", Assessment: "ok"}
	}
	for key, rating := range overrides {
		out[key] = models.CategoryAssessment{Rating: rating, Assessment: "ok"}
	}
	return out
}

func passingRatings() map[string]models.CategoryAssessment {
	return ratings(map[string]string{
		models.CategoryTestingKnowledge: "Strong evidence",
		models.CategoryQualityFocused:   "Strong evidence",
		models.CategoryAnalytical:       "Strong evidence",
		models.CategoryCollaborative:    "Strong evidence",
	})
}

func TestMeetsPassRules(t *testing.T) {
	tests := []struct {
		name        string
		assessments map[string]models.CategoryAssessment
		want        bool
	}{
		{"four strong including required", passingRatings(), true},
		{"all strong", ratings(map[string]string{
			models.CategoryQualityFocused:    "Strong evidence",
			models.CategoryTestingKnowledge:  "Strong evidence",
			models.CategoryCollaborative:     "Strong evidence",
			models.CategoryTestArchitecture:  "Strong evidence",
			models.CategoryDevelopmentSkills: "Strong evidence",
			models.CategoryAdaptable:         "Strong evidence",
			models.CategoryClientFocused:     "Strong evidence",
			models.CategoryAnalytical:        "Strong evidence",
			models.CategoryCommunity:         "Strong evidence",
		}), true},
		{"only three strong", ratings(map[string]string{
			models.CategoryTestingKnowledge: "Strong evidence",
			models.CategoryQualityFocused:   "Strong evidence",
			models.CategoryAnalytical:       "Strong evidence",
		}), false},
		{"one weak", func() map[string]models.CategoryAssessment {
			a := passingRatings()
			a[models.CategoryCommunity] = models.CategoryAssessment{Rating: "Weak evidence"}
			return a
		}(), false},
		{"one no evidence", func() map[string]models.CategoryAssessment {
			a := passingRatings()
			a[models.CategoryClientFocused] = models.CategoryAssessment{Rating: "No Evidence"}
			return a
		}(), false},
		{"testing knowledge only moderate", ratings(map[string]string{
			models.CategoryQualityFocused:   "Strong evidence",
			models.CategoryAnalytical:       "Strong evidence",
			models.CategoryCollaborative:    "Strong evidence",
			models.CategoryCommunity:        "Strong evidence",
			models.CategoryTestArchitecture: "Strong evidence",
		}), false},
		{"missing category", func() map[string]models.CategoryAssessment {
			a := passingRatings()
			delete(a, models.CategoryAdaptable)
			return a
		}(), false},
		{"unrecognised rating", func() map[string]models.CategoryAssessment {
			a := passingRatings()
			a[models.CategoryAdaptable] = models.CategoryAssessment{Rating: "Unclear"}
			return a
		}(), false},
		{"weak extra category", func() map[string]models.CategoryAssessment {
			a := passingRatings()
			a["LEADERSHIP"] = models.CategoryAssessment{Rating: "Weak evidence"}
			return a
		}(), false},
		{"no assessments", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeetsPassRules(tt.assessments))
		})
	}
}

func TestRatingClassifiers(t *testing.T) {
	assert.True(t, IsWeakRating("Weak evidence"))
	assert.True(t, IsWeakRating("No evidence"))
	assert.True(t, IsWeakRating("none"))
	assert.False(t, IsWeakRating("Strong evidence"))
	assert.False(t, IsWeakRating("Moderate evidence, nothing notable"))

	assert.True(t, IsStrongRating("strong"))
	assert.False(t, IsStrongRating("Strong/Weak/No Evidence"))
	assert.True(t, IsModerateRating("Moderate evidence"))
}

func TestApplyPassRules(t *testing.T) {
	t.Run("pass with weak category becomes fail", func(t *testing.T) {
		categories := passingRatings()
		categories[models.CategoryCommunity] = models.CategoryAssessment{Rating: "Weak evidence"}
		report := models.AnalysisReport{
			Decision:            models.DecisionPass,
			Confidence:          85,
			Justification:       models.JustificationPoints("Solid tester"),
			CategoryAssessments: categories,
		}

		got, corrected := ApplyPassRules(report)

		assert.True(t, corrected)
		assert.Equal(t, models.DecisionFail, got.Decision)
		assert.Equal(t, models.Confidence(69), got.Confidence)
		require.True(t, got.Justification.IsList())
		assert.Equal(t, []string{"Solid tester", failCorrectionNote}, got.Justification.Points)
		assert.Equal(t, []string{"Solid tester"}, report.Justification.Points)
	})

	t.Run("text justification gets a paragraph", func(t *testing.T) {
		report := models.AnalysisReport{
			Decision:      models.DecisionPass,
			Confidence:    90,
			Justification: models.JustificationText("Strong candidate."),
		}

		got, corrected := ApplyPassRules(report)

		assert.True(t, corrected)
		assert.Equal(t, models.DecisionFail, got.Decision)
		assert.False(t, got.Justification.IsList())
		assert.Equal(t, "Strong candidate.\n\n"+failCorrectionNote, got.Justification.Text)
	})

	t.Run("low confidence is kept", func(t *testing.T) {
		report := models.AnalysisReport{Decision: models.DecisionPass, Confidence: 40}

		got, _ := ApplyPassRules(report)

		assert.Equal(t, models.Confidence(40), got.Confidence)
	})

	t.Run("fail that meets the rules becomes pass", func(t *testing.T) {
		report := models.AnalysisReport{
			Decision:            models.DecisionFail,
			Confidence:          60,
			Justification:       models.JustificationPoints("Cautious"),
			CategoryAssessments: passingRatings(),
		}

		got, corrected := ApplyPassRules(report)

		assert.True(t, corrected)
		assert.Equal(t, models.DecisionPass, got.Decision)
		assert.Equal(t, models.Confidence(60), got.Confidence)
		assert.Equal(t, []string{"Cautious", passCorrectionNote}, got.Justification.Points)
	})

	t.Run("consistent decision is untouched", func(t *testing.T) {
		report := models.AnalysisReport{
			Decision:            models.DecisionPass,
			Confidence:          88,
			Justification:       models.JustificationPoints("Great"),
			CategoryAssessments: passingRatings(),
		}

		got, corrected := ApplyPassRules(report)

		assert.False(t, corrected)
		assert.Equal(t, report, got)
	})

	t.Run("unknown decision is replaced", func(t *testing.T) {
		report := models.AnalysisReport{Decision: "MAYBE", Confidence: 75}

		got, corrected := ApplyPassRules(report)

		assert.True(t, corrected)
		assert.Equal(t, models.DecisionFail, got.Decision)
		assert.Equal(t, models.Confidence(69), got.Confidence)
	})
}

func TestParseReport(t *testing.T) {
	t.Run("fenced json", func(t *testing.T) {
		response := "Here you go:\n```json\n{\"decision\": \"pass\", \"confidence\": 82.6, \"justification\": [\"A\"], \"strengths\": [\"S\"]}\n```"

		report, err := ParseReport(response)

		require.NoError(t, err)
		assert.Equal(t, models.DecisionPass, report.Decision)
		assert.Equal(t, models.Confidence(83), report.Confidence)
		assert.Equal(t, []string{"A"}, report.Justification.Points)
		assert.Equal(t, []string{"S"}, report.Strengths)
		assert.Equal(t, []string{}, report.ImprovementAreas)
	})

	t.Run("missing justification becomes empty list", func(t *testing.T) {
		report, err := ParseReport(`{"decision":"FAIL","confidence":10}`)

		require.NoError(t, err)
		assert.True(t, report.Justification.IsList())
		assert.Empty(t, report.Justification.Points)
	})

	t.Run("quoted percentage confidence", func(t *testing.T) {
		report, err := ParseReport(`{"decision":"PASS","confidence":"85%","justification":"ok"}`)

		require.NoError(t, err)
		assert.Equal(t, models.Confidence(85), report.Confidence)
		assert.Equal(t, "ok", report.Justification.Text)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseReport("I cannot help with that")

		assert.Error(t, err)
	})
}

func TestFallbackReport(t *testing.T) {
	report := FallbackReport("boom")

	assert.Equal(t, models.DecisionError, report.Decision)
	assert.Equal(t, models.Confidence(0), report.Confidence)
	assert.Equal(t, []string{"Error analyzing CV: boom"}, report.Justification.Points)
	assert.Empty(t, report.Strengths)
	assert.Equal(t, []string{"Could not analyze CV properly"}, report.ImprovementAreas)
	assert.False(t, report.HasCategoryAssessments())
}

const modelPassResponse = `{
  "decision": "PASS",
  "confidence": 92,
  "justification": ["Extensive automation experience"],
  "strengths": ["Automation"],
  "improvement_areas": ["Community"],
  "category_assessments": {
    "QUALITY_FOCUSED": {"rating": "Strong evidence", "assessment": "Shift-left advocate"},
    "TESTING_KNOWLEDGE": {"rating": "Strong evidence", "assessment": "Performance and security"},
    "COLLABORATIVE": {"rating": "Strong evidence", "assessment": "Pairs with devs"},
    "TEST_ARCHITECTURE": {"rating": "Strong evidence", "assessment": "Built CI pipelines"},
    "DEVELOPMENT_SKILLS": {"rating": "Moderate evidence", "assessment": "Java and Python"},
    "ADAPTABLE": {"rating": "Moderate evidence", "assessment": "Startup and enterprise"},
    "CLIENT_FOCUSED": {"rating": "Moderate evidence", "assessment": "Consulting"},
    "ANALYTICAL": {"rating": "Moderate evidence", "assessment": "Root cause analysis"},
    "COMMUNITY": {"rating": "Weak evidence", "assessment": "One meetup talk"}
  }
}`

func TestAnalyzeCV(t *testing.T) {
	rb := rubric.MustDefault()
	ctx := context.Background()

	t.Run("no provider", func(t *testing.T) {
		a := NewAnalyzerService(nil, nil, nil, rb)

		report := a.AnalyzeCV(ctx, "cv", "")

		assert.Equal(t, models.DecisionError, report.Decision)
		assert.Equal(t, []string{"Error analyzing CV: " + ErrMissingAPIKey.Error()}, report.Justification.Points)
	})

	t.Run("provider failure falls back", func(t *testing.T) {
		provider := &fakeProvider{errs: []error{errors.New("quota exceeded")}}
		a := NewAnalyzerService(provider, nil, nil, rb)

		report := a.AnalyzeCV(ctx, "cv", "")

		assert.Equal(t, models.DecisionError, report.Decision)
		assert.Equal(t, []string{"Error analyzing CV: quota exceeded"}, report.Justification.Points)
	})

	t.Run("unparseable answer falls back", func(t *testing.T) {
		provider := &fakeProvider{responses: []string{"no json here"}}
		a := NewAnalyzerService(provider, nil, nil, rb)

		report := a.AnalyzeCV(ctx, "cv", "")

		assert.Equal(t, models.DecisionError, report.Decision)
		assert.Equal(t, []string{"Could not analyze CV properly"}, report.ImprovementAreas)
	})

	t.Run("model pass with weak category is corrected", func(t *testing.T) {
		provider := &fakeProvider{responses: []string{modelPassResponse}}
		a := NewAnalyzerService(provider, nil, nil, rb)

		report := a.AnalyzeCV(ctx, "Jane Doe, QA Engineer", "")

		assert.Equal(t, models.DecisionFail, report.Decision)
		assert.Equal(t, models.Confidence(69), report.Confidence)
		assert.Len(t, report.CategoryAssessments, 9)
		assert.Equal(t, failCorrectionNote, report.Justification.Points[len(report.Justification.Points)-1])
	})

	t.Run("criteria override wins", func(t *testing.T) {
		provider := &fakeProvider{responses: []string{modelPassResponse}}
		a := NewAnalyzerService(provider, fakeCriteriaStore{text: "stored criteria"}, nil, rb)

		a.AnalyzeCV(ctx, "cv", "override criteria")

		require.Len(t, provider.prompts, 1)
		assert.Contains(t, provider.prompts[0], "override criteria")
		assert.NotContains(t, provider.prompts[0], "stored criteria")
	})

	t.Run("stored criteria when no override", func(t *testing.T) {
		provider := &fakeProvider{responses: []string{modelPassResponse}}
		a := NewAnalyzerService(provider, fakeCriteriaStore{text: "stored criteria"}, nil, rb)

		a.AnalyzeCV(ctx, "cv", "   ")

		assert.Contains(t, provider.prompts[0], "stored criteria")
	})

	t.Run("default rubric when nothing stored", func(t *testing.T) {
		provider := &fakeProvider{responses: []string{modelPassResponse}}
		a := NewAnalyzerService(provider, fakeCriteriaStore{err: errors.New("db down")}, nil, rb)

		a.AnalyzeCV(ctx, "cv", "")

		assert.Contains(t, provider.prompts[0], rb.CriteriaText())
	})

	t.Run("retrieved rubric context is included", func(t *testing.T) {
		provider := &fakeProvider{responses: []string{modelPassResponse}}
		a := NewAnalyzerService(provider, nil, fakeRetriever{context: "[1] rubric excerpt"}, rb)

		a.AnalyzeCV(ctx, "cv", "")

		assert.Contains(t, provider.prompts[0], "REFERENCE MATERIAL")
		assert.Contains(t, provider.prompts[0], "[1] rubric excerpt")
	})

	t.Run("retrieval failure is not fatal", func(t *testing.T) {
		provider := &fakeProvider{responses: []string{modelPassResponse}}
		a := NewAnalyzerService(provider, nil, fakeRetriever{err: errors.New("qdrant down")}, rb)

		report := a.AnalyzeCV(ctx, "cv", "")

		assert.NotContains(t, provider.prompts[0], "REFERENCE MATERIAL")
		assert.Equal(t, models.DecisionFail, report.Decision)
	})
}

func TestBuildCVAnalysisPrompt(t *testing.T) {
	rb := rubric.MustDefault()
	pb := NewPromptBuilder(rb)

	prompt := pb.BuildCVAnalysisPrompt("Jane\x00 Doe", "criteria text", "")

	assert.Contains(t, prompt, "Jane Doe")
	assert.Contains(t, prompt, "criteria text")
	for _, key := range models.CategoryKeys {
		assert.Contains(t, prompt, `"`+key+`"`)
	}
	for _, rule := range rb.PassRules {
		assert.Contains(t, prompt, rule)
	}
	assert.NotContains(t, prompt, "REFERENCE MATERIAL")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))

	got := TruncateText(strings.Repeat("é", 20), 5)
	assert.True(t, strings.HasPrefix(got, "ééééé\n"))
	assert.Contains(t, got, "[...truncated]")
}

func TestFormatRAGContext(t *testing.T) {
	assert.Empty(t, FormatRAGContext(nil))

	got := FormatRAGContext([]SearchResult{{Score: 0.91, Text: " Quality Focused "}})
	assert.Equal(t, "[1] (relevance 0.91) Quality Focused\n", got)
}
