package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CriteriaPerSection is the number of achievement levels every rubric section describes.
const CriteriaPerSection = 4

// PointsPerSection is the score of the highest achievement level.
const PointsPerSection = 3

// CriterionLevel is one achievement level inside a rubric section.
type CriterionLevel struct {
	Description string `json:"description"`
	Score       int    `json:"score"`
}

// Section is a named area of the rubric with its four achievement levels.
type Section struct {
	Name     string           `json:"section"`
	Criteria []CriterionLevel `json:"criteria"`
}

// Rubric is an ordered list of sections. It is only stored after Validate succeeds.
type Rubric struct {
	Sections []Section `json:"sections"`
}

// MaxScore is the best total an essay can reach with this rubric.
func (r Rubric) MaxScore() int {
	return PointsPerSection * len(r.Sections)
}

// JSON renders the sections the way the generation templates expect them.
func (r Rubric) JSON() string {
	payload, err := json.MarshalIndent(r.Sections, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(payload)
}

// DisplayTable renders the rubric as a markdown table with one bold row per section.
func (r Rubric) DisplayTable() string {
	var b strings.Builder
	b.WriteString("| Criteria | Score |\n| --- | --- |\n")
	for _, section := range r.Sections {
		b.WriteString("| **" + section.Name + "** |\n")
		for _, level := range section.Criteria {
			b.WriteString("| " + level.Description + " | " + strconv.Itoa(level.Score) + " |\n")
		}
	}
	return b.String()
}

// ViolationKind names the structural rule a generated rubric broke.
type ViolationKind string

const (
	ViolationNoSections       ViolationKind = "no_sections"
	ViolationCriteriaCount    ViolationKind = "criteria_count"
	ViolationEmptyDescription ViolationKind = "empty_description"
	ViolationScoreSet         ViolationKind = "score_set"
)

// RubricViolation describes why a rubric was rejected.
type RubricViolation struct {
	Kind    ViolationKind
	Section string
	Detail  string
}

func (v *RubricViolation) Error() string {
	if v.Section == "" {
		return fmt.Sprintf("rubric %s: %s", v.Kind, v.Detail)
	}
	return fmt.Sprintf("rubric %s in section %q: %s", v.Kind, v.Section, v.Detail)
}

// Validate checks the structural invariants: at least one section, four levels per
// section, no empty description, and scores exactly {0,1,2,3} within each section.
func (r Rubric) Validate() error {
	if len(r.Sections) == 0 {
		return &RubricViolation{Kind: ViolationNoSections, Detail: "rubric contains no sections"}
	}

	for _, section := range r.Sections {
		if len(section.Criteria) != CriteriaPerSection {
			return &RubricViolation{
				Kind:    ViolationCriteriaCount,
				Section: section.Name,
				Detail:  fmt.Sprintf("expected %d criteria, got %d", CriteriaPerSection, len(section.Criteria)),
			}
		}

		var seen [PointsPerSection + 1]bool
		sum := 0
		for _, level := range section.Criteria {
			if strings.TrimSpace(level.Description) == "" {
				return &RubricViolation{Kind: ViolationEmptyDescription, Section: section.Name, Detail: "criteria description is empty"}
			}
			if level.Score < 0 || level.Score > PointsPerSection || seen[level.Score] {
				return &RubricViolation{Kind: ViolationScoreSet, Section: section.Name, Detail: fmt.Sprintf("score %d is out of range or repeated", level.Score)}
			}
			seen[level.Score] = true
			sum += level.Score
		}
		if sum != 6 {
			return &RubricViolation{Kind: ViolationScoreSet, Section: section.Name, Detail: fmt.Sprintf("scores sum to %d, expected 6", sum)}
		}
	}

	return nil
}
