package web

import (
	"qahiring/cv-analyzer/internal/models"
	"qahiring/cv-analyzer/internal/presenter"
)

type resultsView struct {
	ID                  string
	Filename            string
	AnalyzedOn          string
	Passed              bool
	DecisionLabel       string
	DecisionColor       presenter.Color
	Confidence          int
	ConfidenceColor     presenter.Color
	JustificationIsList bool
	JustificationPoints []string
	JustificationText   string
	Strengths           []string
	ImprovementAreas    []string
	Categories          []presenter.CategoryCard
}

func newResultsView(r *models.AnalysisResult) resultsView {
	report := r.Result
	confidence := int(report.Confidence)

	return resultsView{
		ID:                  r.ID,
		Filename:            r.OriginalFilename,
		AnalyzedOn:          presenter.FormatTimestamp(r.Timestamp),
		Passed:              report.Passed(),
		DecisionLabel:       presenter.DecisionLabel(report.Decision),
		DecisionColor:       presenter.DecisionColor(report.Decision),
		Confidence:          confidence,
		ConfidenceColor:     presenter.ConfidenceTier(confidence),
		JustificationIsList: report.Justification.IsList(),
		JustificationPoints: report.Justification.Points,
		JustificationText:   report.Justification.Text,
		Strengths:           report.Strengths,
		ImprovementAreas:    report.ImprovementAreas,
		Categories:          presenter.CategoryCards(report.CategoryAssessments),
	}
}

type criteriaView struct {
	Criteria    string
	LoadWarning string
	SaveError   string
	Saved       string
}
