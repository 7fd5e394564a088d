package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionGradeChangeInvalidatesDownstreamState(t *testing.T) {
	session := Session{ID: "s1"}
	require.True(t, session.SelectGrade(GradeFourth))
	session.StoreRubric(Rubric{Sections: []Section{validSection("Organization")}})
	session.StorePrompt("golf", "#### Introduction golf")
	session.RecordScored("previous essay")

	require.False(t, session.SelectGrade(GradeFourth))
	require.NotNil(t, session.Rubric)
	_, ok := session.CachedPrompt("golf")
	require.True(t, ok)

	require.True(t, session.SelectGrade(GradeFifth))
	require.Nil(t, session.Rubric)
	require.Nil(t, session.PromptCache)
	require.Empty(t, session.PreviousEssay)
}

func TestSessionSameGradeWithoutRubricRegenerates(t *testing.T) {
	session := Session{ID: "s1", Grade: GradeFourth}
	require.True(t, session.SelectGrade(GradeFourth))
}

func TestSessionPromptCacheKeyedByGradeAndTopic(t *testing.T) {
	session := Session{ID: "s1", Grade: GradeFourth}
	session.StorePrompt("golf", "prompt")

	_, ok := session.CachedPrompt("tennis")
	require.False(t, ok)

	topic, prompt, ok := session.ActivePrompt()
	require.True(t, ok)
	require.Equal(t, "golf", topic)
	require.Equal(t, "prompt", prompt)

	session.RejectTopic("weapons")
	entry, ok := session.CachedPrompt("weapons")
	require.True(t, ok)
	require.True(t, entry.Rejected)
	_, _, ok = session.ActivePrompt()
	require.False(t, ok)

	session.StorePrompt("golf", "prompt")
	session.ClearPrompt()
	_, ok = session.CachedPrompt("golf")
	require.False(t, ok)
	_, _, ok = session.ActivePrompt()
	require.False(t, ok)
}

func TestParseGradeAndQuality(t *testing.T) {
	grade, err := ParseGradeLevel(" fourth ")
	require.NoError(t, err)
	require.Equal(t, GradeFourth, grade)

	_, err = ParseGradeLevel("Thirteenth")
	require.ErrorIs(t, err, ErrUnknownGradeLevel)

	quality, err := ParseQualityLevel("high")
	require.NoError(t, err)
	require.Equal(t, QualityHigh, quality)

	_, err = ParseQualityLevel("perfect")
	require.ErrorIs(t, err, ErrUnknownQualityLevel)
}
