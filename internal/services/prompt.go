package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"qahiring/cv-analyzer/internal/rubric"
)

// maxCVChars bounds the CV text sent to the model.
const maxCVChars = 30000

type PromptBuilder struct {
	rubric *rubric.Rubric
}

func NewPromptBuilder(rb *rubric.Rubric) *PromptBuilder {
	return &PromptBuilder{rubric: rb}
}

// BuildCVAnalysisPrompt asks for a strict, rule-based PASS/FAIL verdict with
// one assessment per rubric category.
func (pb *PromptBuilder) BuildCVAnalysisPrompt(cvText, criteria, rubricContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a thorough and fair technical recruiter specialising in %s roles. You have high standards but also recognise that CVs often do not capture every detail of a candidate's experience.

Below is the text extracted from a candidate's CV:

%s

And here are the criteria for what makes a good candidate:

%s
`, pb.rubric.Role, SanitizeText(TruncateText(cvText, maxCVChars)), criteria)

	if strings.TrimSpace(rubricContext) != "" {
		fmt.Fprintf(&b, "\nREFERENCE MATERIAL (most relevant rubric excerpts):\n%s\n", rubricContext)
	}

	b.WriteString("\nEVALUATION RULES - FOLLOW THESE EXACTLY:\nFor a candidate to PASS, they must meet ALL of the following WITHOUT EXCEPTION:\n")
	for i, rule := range pb.rubric.PassRules {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, rule)
	}

	b.WriteString("\nRate every category with one of these evidence levels:\n")
	for _, level := range pb.rubric.EvidenceLevels {
		fmt.Fprintf(&b, "- %s: %s\n", level.Label, level.Meaning)
	}

	b.WriteString("\nAssign confidence as follows:\n")
	for _, band := range pb.rubric.ConfidenceBands {
		fmt.Fprintf(&b, "- %s: %s\n", band.Range, band.Meaning)
	}

	b.WriteString(`
Look for explicit evidence and reasonable inferences from related experience. Double-check the rules before finalising: the candidate MUST FAIL if any rule is not met.

Provide:
1. A decision, PASS or FAIL
2. A confidence score from 0 to 100
3. A justification (maximum 5 bullet points)
4. Key strengths (maximum 3)
5. Key areas for improvement (maximum 3)
6. An assessment for each of the categories below

Return ONLY a JSON object with this structure:
{
  "decision": "PASS" or "FAIL",
  "confidence": 85,
  "justification": ["point 1", "point 2"],
  "strengths": ["strength 1"],
  "improvement_areas": ["area 1"],
  "category_assessments": {
`)

	for i, category := range pb.rubric.Categories {
		sep := ","
		if i == len(pb.rubric.Categories)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    %q: {\"rating\": \"Strong evidence|Moderate evidence|Weak evidence|No evidence\", \"assessment\": \"evidence for %s\"}%s\n",
			category.Key, category.Title, sep)
	}

	b.WriteString("  }\n}\n")

	return b.String()
}

// SanitizeText drops invalid UTF-8 and control characters other than
// newlines and tabs.
func SanitizeText(text string) string {
	text = strings.ToValidUTF8(text, "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}

// TruncateText cuts text to at most maxChars runes.
func TruncateText(text string, maxChars int) string {
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxChars]) + "\n[...truncated]"
}

// FormatRAGContext renders retrieved rubric chunks for the prompt.
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	for i, result := range results {
		fmt.Fprintf(&b, "[%d] (relevance %.2f) %s\n", i+1, result.Score, strings.TrimSpace(result.Text))
	}
	return b.String()
}
