package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

type scriptedResponse struct {
	text string
	err  error
}

// scriptedGenerator replays canned responses per template. The last response of a
// template repeats once the queue is drained.
type scriptedGenerator struct {
	responses map[ai.TemplateName][]scriptedResponse
	calls     []ai.GenerationRequest
	renderErr error
}

func newScriptedGenerator() *scriptedGenerator {
	return &scriptedGenerator{responses: map[ai.TemplateName][]scriptedResponse{}}
}

func (g *scriptedGenerator) on(template ai.TemplateName, texts ...string) *scriptedGenerator {
	for _, text := range texts {
		g.responses[template] = append(g.responses[template], scriptedResponse{text: text})
	}
	return g
}

func (g *scriptedGenerator) fail(template ai.TemplateName, err error) *scriptedGenerator {
	g.responses[template] = append(g.responses[template], scriptedResponse{err: err})
	return g
}

func (g *scriptedGenerator) Generate(_ context.Context, req ai.GenerationRequest) (string, error) {
	g.calls = append(g.calls, req)
	if _, err := ai.Render(req); err != nil && g.renderErr == nil {
		g.renderErr = err
	}

	queue := g.responses[req.Template]
	if len(queue) == 0 {
		return "", fmt.Errorf("no scripted response for %s", req.Template)
	}
	next := queue[0]
	if len(queue) > 1 {
		g.responses[req.Template] = queue[1:]
	}
	return next.text, next.err
}

func (g *scriptedGenerator) count(template ai.TemplateName) int {
	n := 0
	for _, call := range g.calls {
		if call.Template == template {
			n++
		}
	}
	return n
}

func (g *scriptedGenerator) lastCall(template ai.TemplateName) ai.GenerationRequest {
	for i := len(g.calls) - 1; i >= 0; i-- {
		if g.calls[i].Template == template {
			return g.calls[i]
		}
	}
	return ai.GenerationRequest{}
}

func (g *scriptedGenerator) requireRendered(t *testing.T) {
	t.Helper()
	require.NoError(t, g.renderErr)
}

var rubricSectionNames = []string{
	"Addressing the Topic",
	"Organization",
	"Grammar",
	"Vocabulary",
	"Supporting Evidence",
}

func testRubric() models.Rubric {
	sections := make([]models.Section, 0, len(rubricSectionNames))
	for _, name := range rubricSectionNames {
		sections = append(sections, models.Section{
			Name: name,
			Criteria: []models.CriterionLevel{
				{Description: name + " is missing.", Score: 0},
				{Description: name + " is developing.", Score: 1},
				{Description: name + " is proficient.", Score: 2},
				{Description: name + " is advanced.", Score: 3},
			},
		})
	}
	return models.Rubric{Sections: sections}
}

func rubricJSON(t *testing.T) string {
	t.Helper()
	payload, err := json.Marshal(testRubric().Sections)
	require.NoError(t, err)
	return "```json\n" + string(payload) + "\n```"
}

const badRubricJSON = `[{"section": "Grammar", "criteria": [
	{"description": "a", "score": 0},
	{"description": "b", "score": 1},
	{"description": "c", "score": 2}
]}]`

func promptText(topic string) string {
	return "#### Introduction\nYou are to write an essay on the subject of " + topic + ".\n\n" +
		"#### Context\nFacts about " + topic + ".\n\n" +
		"#### Question\nExplain what " + topic + " teaches you."
}

func scoreJSON(t *testing.T, total int, comparison string) string {
	t.Helper()
	var table strings.Builder
	for _, name := range rubricSectionNames {
		table.WriteString("| " + name + " | 2 | Good work. |\n")
	}
	payload, err := json.Marshal(map[string]any{
		"table":      table.String(),
		"total":      total,
		"summary":    "You wrote a clear essay.",
		"comparison": comparison,
	})
	require.NoError(t, err)
	return string(payload)
}

const (
	qaAccept = `{"valid": true}`
	qaReject = `{"valid": false, "feedback": "The summary conflicts with the table."}`
)
