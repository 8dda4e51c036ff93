package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"qahiring/cv-analyzer/internal/models"
	"qahiring/cv-analyzer/internal/presenter"
)

func tierColor(c presenter.Color) *color.Color {
	switch c {
	case presenter.ColorSuccess:
		return color.New(color.FgGreen)
	case presenter.ColorInfo:
		return color.New(color.FgCyan)
	case presenter.ColorWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func printReport(w io.Writer, r *models.AnalysisResult) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)
	report := r.Result

	_, _ = bold.Fprintln(w, "CV ANALYSIS RESULTS")
	fmt.Fprintf(w, "  File:        %s\n", r.OriginalFilename)
	fmt.Fprintf(w, "  Analyzed on: %s\n", presenter.FormatTimestamp(r.Timestamp))
	fmt.Fprintf(w, "  ID:          %s\n", r.ID)
	_, _ = dim.Fprintln(w, "  "+strings.Repeat("━", 50))

	decision := tierColor(presenter.DecisionColor(report.Decision)).Add(color.Bold)
	fmt.Fprint(w, "  Decision:    ")
	_, _ = decision.Fprintln(w, presenter.DecisionLabel(report.Decision))

	confidence := int(report.Confidence)
	fmt.Fprint(w, "  Confidence:  ")
	_, _ = tierColor(presenter.ConfidenceTier(confidence)).Fprintf(w, "%d%%\n", confidence)

	printList(w, "STRENGTHS", report.Strengths)
	printList(w, "AREAS FOR IMPROVEMENT", report.ImprovementAreas)

	fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "JUSTIFICATION")
	if report.Justification.IsList() {
		for _, p := range report.Justification.Points {
			fmt.Fprintf(w, "  • %s\n", p)
		}
	} else {
		for _, line := range strings.Split(report.Justification.Text, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	cards := presenter.CategoryCards(report.CategoryAssessments)
	if len(cards) == 0 {
		return
	}
	fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "CATEGORY ASSESSMENTS")
	for _, card := range cards {
		fmt.Fprintf(w, "  %s  ", card.Label)
		_, _ = tierColor(card.Color).Fprintf(w, "[%s]\n", card.Rating)
		if card.Assessment != "" {
			_, _ = dim.Fprintf(w, "    %s\n", card.Assessment)
		}
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w)
	_, _ = color.New(color.Bold).Fprintln(w, title)
	for _, item := range items {
		fmt.Fprintf(w, "  • %s\n", item)
	}
}
