package models

import (
	"fmt"
	"strings"
)

// ComparisonMinWords is the word count a previous essay must exceed to be compared against.
const ComparisonMinWords = 10

// ValidityResult reports whether an essay answers its prompt.
type ValidityResult struct {
	Valid    bool   `json:"valid"`
	Feedback string `json:"feedback"`
}

// QAVerdict is the reviewer's judgement of a candidate score report.
type QAVerdict struct {
	Valid    bool   `json:"valid"`
	Feedback string `json:"feedback,omitempty"`
}

// ScoreReport is an accepted, rubric-based grading of one essay.
type ScoreReport struct {
	Table      string `json:"table"`
	Total      int    `json:"total"`
	Summary    string `json:"summary"`
	Comparison string `json:"comparison"`
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// QualifiesForComparison reports whether a previous essay is long enough to compare with.
func QualifiesForComparison(previous string) bool {
	return WordCount(previous) > ComparisonMinWords
}

// ValidateScoreReport checks a decoded report against the rubric it was graded with.
func ValidateScoreReport(report ScoreReport, rubric Rubric) error {
	max := rubric.MaxScore()
	if report.Total < 0 || report.Total > max {
		return fmt.Errorf("total %d outside 0..%d", report.Total, max)
	}
	if rows := TableRowCount(report.Table); rows != len(rubric.Sections) {
		return fmt.Errorf("score table has %d rows, rubric has %d sections", rows, len(rubric.Sections))
	}
	if strings.TrimSpace(report.Summary) == "" {
		return fmt.Errorf("score summary is empty")
	}
	return nil
}

// TableRowCount counts data rows of a markdown table, skipping separator and header rows.
func TableRowCount(table string) int {
	count := 0
	for _, line := range strings.Split(table, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		if isSeparatorRow(line) || isHeaderRow(line) {
			continue
		}
		count++
	}
	return count
}

func isSeparatorRow(line string) bool {
	return strings.Trim(line, "|-: ") == ""
}

func isHeaderRow(line string) bool {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	if len(cells) < 2 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(cells[0]), "criteria") &&
		strings.EqualFold(strings.TrimSpace(cells[1]), "score")
}
