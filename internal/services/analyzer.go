package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"qahiring/cv-analyzer/internal/models"
	"qahiring/cv-analyzer/internal/rubric"
)

const (
	// failCap is the highest confidence a corrected FAIL may keep.
	failCap = 69

	requiredStrongCount = 4

	failCorrectionNote = "[NOTE: This assessment was automatically corrected to follow the strict evaluation criteria. Any category with 'Weak evidence' or 'No evidence' results in an automatic fail.]"
	passCorrectionNote = "[NOTE: This assessment was automatically corrected to PASS because every category shows at least moderate evidence, including strong evidence in Testing Knowledge and Quality Focused.]"
)

// CriteriaStore is the stored, user-edited criteria document.
type CriteriaStore interface {
	Get() (string, error)
}

type AnalyzerService interface {
	// AnalyzeCV always returns a report; failures produce an ERROR report.
	AnalyzeCV(ctx context.Context, cvText, criteriaOverride string) models.AnalysisReport
}

type analyzerService struct {
	provider      LLMProvider
	criteria      CriteriaStore
	retriever     RubricRetriever
	rubric        *rubric.Rubric
	promptBuilder *PromptBuilder
}

// NewAnalyzerService wires the evaluation pipeline. provider may be nil when no
// API key is configured, and retriever may be nil when retrieval is off.
func NewAnalyzerService(
	provider LLMProvider,
	criteria CriteriaStore,
	retriever RubricRetriever,
	rb *rubric.Rubric,
) AnalyzerService {
	return &analyzerService{
		provider:      provider,
		criteria:      criteria,
		retriever:     retriever,
		rubric:        rb,
		promptBuilder: NewPromptBuilder(rb),
	}
}

func (a *analyzerService) AnalyzeCV(ctx context.Context, cvText, criteriaOverride string) models.AnalysisReport {
	if a.provider == nil {
		return FallbackReport(ErrMissingAPIKey.Error())
	}

	if strings.TrimSpace(cvText) == "" {
		log.Println("⚠️  CV text is empty, analyzing anyway")
	}

	criteria := a.resolveCriteria(criteriaOverride)

	var rubricContext string
	if a.retriever != nil {
		var err error
		rubricContext, err = a.retriever.Retrieve(ctx, cvText)
		if err != nil {
			log.Printf("⚠️  Warning: Failed to retrieve rubric context: %v\n", err)
			rubricContext = ""
		}
	}

	prompt := a.promptBuilder.BuildCVAnalysisPrompt(cvText, criteria, rubricContext)
	log.Printf("📝 CV analysis prompt length: %d characters\n", len(prompt))

	response, err := a.provider.Generate(ctx, prompt)
	if err != nil {
		log.Printf("❌ CV analysis failed: %v\n", err)
		return FallbackReport(err.Error())
	}

	report, err := ParseReport(response)
	if err != nil {
		log.Printf("❌ Failed to parse CV analysis response: %v\n", err)
		return FallbackReport(err.Error())
	}

	report, corrected := ApplyPassRules(report)
	if corrected {
		log.Printf("⚠️  Corrected model decision to %s\n", report.Decision)
	}

	return report
}

// resolveCriteria prefers the per-upload override, then the stored document,
// then the built-in rubric.
func (a *analyzerService) resolveCriteria(override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}

	if a.criteria != nil {
		stored, err := a.criteria.Get()
		if err != nil {
			log.Printf("⚠️  Failed to load stored criteria, using default: %v\n", err)
		} else if strings.TrimSpace(stored) != "" {
			return stored
		}
	}

	return a.rubric.CriteriaText()
}

// ParseReport decodes the model's JSON answer, tolerating markdown fences and
// surrounding prose.
func ParseReport(response string) (models.AnalysisReport, error) {
	var report models.AnalysisReport
	if err := json.Unmarshal([]byte(extractJSON(response)), &report); err != nil {
		return report, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	report.Decision = models.Decision(strings.ToUpper(strings.TrimSpace(string(report.Decision))))
	if report.Strengths == nil {
		report.Strengths = []string{}
	}
	if report.ImprovementAreas == nil {
		report.ImprovementAreas = []string{}
	}
	if !report.Justification.IsList() && report.Justification.Text == "" {
		report.Justification = models.JustificationPoints()
	}

	return report, nil
}

// extractJSON strips markdown fences and returns the outermost JSON object.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// FallbackReport is returned whenever no real analysis could be produced.
func FallbackReport(reason string) models.AnalysisReport {
	return models.AnalysisReport{
		Decision:         models.DecisionError,
		Confidence:       0,
		Justification:    models.JustificationPoints("Error analyzing CV: " + reason),
		Strengths:        []string{},
		ImprovementAreas: []string{"Could not analyze CV properly"},
	}
}

// ApplyPassRules recomputes the decision from the category ratings and
// overrides the model when they disagree. The bool reports a correction.
func ApplyPassRules(report models.AnalysisReport) (models.AnalysisReport, bool) {
	shouldPass := MeetsPassRules(report.CategoryAssessments)

	decided := report.Decision == models.DecisionPass || report.Decision == models.DecisionFail
	if decided && report.Passed() == shouldPass {
		return report, false
	}

	if shouldPass {
		report.Decision = models.DecisionPass
		report.Justification = report.Justification.Append(passCorrectionNote)
		return report, true
	}

	report.Decision = models.DecisionFail
	if report.Confidence > failCap {
		report.Confidence = failCap
	}
	report.Justification = report.Justification.Append(failCorrectionNote)
	return report, true
}

// MeetsPassRules reports whether the ratings satisfy every pass rule. A
// category with no assessment counts as lacking evidence.
func MeetsPassRules(assessments map[string]models.CategoryAssessment) bool {
	for _, a := range assessments {
		if IsWeakRating(a.Rating) {
			return false
		}
	}

	strong := 0
	for _, key := range models.CategoryKeys {
		a, ok := assessments[key]
		if !ok {
			return false
		}
		switch {
		case IsStrongRating(a.Rating):
			strong++
		case IsModerateRating(a.Rating):
		default:
			return false
		}
	}

	if strong < requiredStrongCount {
		return false
	}

	return IsStrongRating(assessments[models.CategoryTestingKnowledge].Rating) &&
		IsStrongRating(assessments[models.CategoryQualityFocused].Rating)
}

func IsWeakRating(rating string) bool {
	r := strings.ToLower(strings.TrimSpace(rating))
	return strings.Contains(r, "weak") ||
		strings.Contains(r, "no evidence") ||
		r == "no" || r == "none" ||
		strings.HasPrefix(r, "no ")
}

func IsStrongRating(rating string) bool {
	return !IsWeakRating(rating) && strings.Contains(strings.ToLower(rating), "strong")
}

func IsModerateRating(rating string) bool {
	return !IsWeakRating(rating) && strings.Contains(strings.ToLower(rating), "moderate")
}
