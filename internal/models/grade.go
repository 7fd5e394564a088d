package models

import (
	"errors"
	"strings"
)

// GradeLevel is the school grade an assessment session targets.
type GradeLevel string

const (
	GradeFirst    GradeLevel = "First"
	GradeSecond   GradeLevel = "Second"
	GradeThird    GradeLevel = "Third"
	GradeFourth   GradeLevel = "Fourth"
	GradeFifth    GradeLevel = "Fifth"
	GradeSixth    GradeLevel = "Sixth"
	GradeSeventh  GradeLevel = "Seventh"
	GradeEighth   GradeLevel = "Eighth"
	GradeNinth    GradeLevel = "Ninth"
	GradeTenth    GradeLevel = "Tenth"
	GradeEleventh GradeLevel = "Eleventh"
	GradeTwelfth  GradeLevel = "Twelfth"
)

// DefaultGradeLevel is preselected when a client does not choose one.
const DefaultGradeLevel = GradeFourth

// GradeLevels lists the supported grades in order.
var GradeLevels = []GradeLevel{
	GradeFirst, GradeSecond, GradeThird, GradeFourth, GradeFifth, GradeSixth,
	GradeSeventh, GradeEighth, GradeNinth, GradeTenth, GradeEleventh, GradeTwelfth,
}

// ErrUnknownGradeLevel indicates the grade label is not one of GradeLevels.
var ErrUnknownGradeLevel = errors.New("unknown grade level")

// ParseGradeLevel matches a grade label case-insensitively.
func ParseGradeLevel(value string) (GradeLevel, error) {
	value = strings.TrimSpace(value)
	for _, grade := range GradeLevels {
		if strings.EqualFold(string(grade), value) {
			return grade, nil
		}
	}
	return "", ErrUnknownGradeLevel
}

// QualityLevel is the requested skill level of a synthetic or sample essay.
type QualityLevel string

const (
	QualityLow    QualityLevel = "Low"
	QualityMedium QualityLevel = "Medium"
	QualityHigh   QualityLevel = "High"
)

// ErrUnknownQualityLevel indicates the quality label is not Low, Medium or High.
var ErrUnknownQualityLevel = errors.New("unknown quality level")

// ParseQualityLevel matches a quality label case-insensitively.
func ParseQualityLevel(value string) (QualityLevel, error) {
	value = strings.TrimSpace(value)
	for _, quality := range []QualityLevel{QualityLow, QualityMedium, QualityHigh} {
		if strings.EqualFold(string(quality), value) {
			return quality, nil
		}
	}
	return "", ErrUnknownQualityLevel
}
