package ai

import (
	"fmt"
	"strings"
	"text/template"
)

type promptTemplate struct {
	system *template.Template
	user   *template.Template
}

var templates = map[TemplateName]promptTemplate{
	TemplateRubric:    mustTemplate(TemplateRubric, rubricSystem, rubricUser),
	TemplateQuestion:  mustTemplate(TemplateQuestion, questionSystem, questionUser),
	TemplateValidity:  mustTemplate(TemplateValidity, validitySystem, validityUser),
	TemplateGrading:   mustTemplate(TemplateGrading, gradingSystem, gradingUser),
	TemplateGradingQA: mustTemplate(TemplateGradingQA, gradingQASystem, gradingQAUser),
	TemplateTestEssay: mustTemplate(TemplateTestEssay, testEssaySystem, testEssayUser),
}

func mustTemplate(name TemplateName, system, user string) promptTemplate {
	return promptTemplate{
		system: template.Must(template.New(string(name) + ".system").Option("missingkey=error").Parse(system)),
		user:   template.Must(template.New(string(name) + ".user").Option("missingkey=error").Parse(user)),
	}
}

// Render expands the named template into the system and user turns of a chat request.
func Render(req GenerationRequest) ([]Message, error) {
	tpl, ok := templates[req.Template]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", req.Template)
	}

	params := req.Params
	if params == nil {
		params = map[string]any{}
	}

	var system, user strings.Builder
	if err := tpl.system.Execute(&system, params); err != nil {
		return nil, fmt.Errorf("render %s system prompt: %w", req.Template, err)
	}
	if err := tpl.user.Execute(&user, params); err != nil {
		return nil, fmt.Errorf("render %s user prompt: %w", req.Template, err)
	}

	return []Message{
		{Role: RoleSystem, Content: strings.TrimSpace(system.String())},
		{Role: RoleUser, Content: strings.TrimSpace(user.String())},
	}, nil
}

const rubricSystem = `You are an expert at writing rubrics for grading essays written by school students.`

const rubricUser = `Create a rubric for grading an essay written by a {{.grade}}-grade student.
Base the rubric on these standards: {{.standard}}.
The rubric must be specific to what those standards expect in the {{.grade}} grade.

Respond with a JSON array only. Each element is an object with:
 - "section": a short title for the area being assessed.
 - "criteria": an array of exactly four objects, one per achievement level, each with
   - "description": a short description of what the essay shows at this level.
   - "score": the points for this level, one of 0, 1, 2, 3 for Beginning, Developing,
     Proficient and Advanced respectively. Every score appears exactly once per section.

Work through the standards step by step so that every relevant area is covered and each
section describes all four achievement levels.

Include at least sections covering addressing the topic, organization, grammar, vocabulary,
and the use of supporting evidence.

Output only the JSON array, without surrounding text or quotes. Example of one section:
[
  {
    "section": "Development with Support/Evidence",
    "criteria": [
      {"description": "Does not support the opinion with facts, details or reasons.", "score": 0},
      {"description": "Supports the opinion with few facts or details; explanation is thin.", "score": 1},
      {"description": "Supports the opinion with relevant facts and clearly explains them.", "score": 2},
      {"description": "Supports the opinion skillfully with substantial, relevant evidence and insightful analysis.", "score": 3}
    ]
  }
]`

const questionSystem = `You are an expert at writing essay prompts for school students.
Always use age-appropriate language and never include inappropriate details.`

const questionUser = `Write a free-response essay prompt for a {{.grade}}-grade student on the topic of {{.topic}}.
Use age-appropriate language and subject matter.

The student's essay will be graded with this rubric, a JSON array of sections whose criteria
award the matching score when satisfied:
` + "```" + `
{{.rubric}}
` + "```" + `

The prompt has three sections, in this order, each under a markdown heading with its name
and separated by a blank line: Introduction, Context, Question.

The Introduction reads:
"You are to write an essay on the subject of {{.topic}}. The following section contains important
information that you are to use in your essay, and following that is the question that you are
to address in your essay:"

The Context is several paragraphs of facts about the topic, enough for the student to write an
excellent essay from the Context alone. It presents facts clearly and does not argue a point
of view.

The Question:
- gives clear instructions suited to the student's grade;
- asks the student to build the essay from the facts in the Context;
- asks the student to explore the themes raised in the Context and give their own view,
  not just repeat the facts.

Check what you wrote against these criteria and rewrite it if any are not met.
Format the whole prompt as markdown, using "#### Introduction", "#### Context" and
"#### Question" as the headings.`

const validitySystem = `You are an expert at grading essays written by school students.
Always use age-appropriate language and never include inappropriate details or feedback.`

const validityUser = `You are grading an essay written by a {{.grade}}-grade student in response to a prompt.
Address all feedback directly to the student in the second person.

Your only task now is to decide whether the essay responds directly to the prompt and whether
its subject matches the topic "{{.topic}}". A valid essay uses information from the prompt's
Context and follows the prompt's Question.

Respond with a JSON object with a boolean "valid" field and a "feedback" string holding one
paragraph of at most six sentences explaining why the essay is or is not valid and, when it
is not, how it could be made valid.

Example:
{"valid": false, "feedback": "Your essay does not address the topic. You wrote about one player instead of the skills the game needs. Focus on teamwork, strategy and focus and how they help in other parts of your life."}

The essay:
` + "```" + `
{{.essay}}
` + "```" + `

The prompt it answers:
` + "```" + `
{{.question}}
` + "```"

const gradingSystem = `You are a highly qualified candidate for a teaching position at a school with very high
standards, and you must show excellent skill at scoring writing assignments.
Always use age-appropriate language and never include inappropriate details or feedback.`

const gradingUser = `Score an essay written by a {{.grade}}-grade student using the rubric below. The rubric is a
JSON array of sections; each section's criteria award the matching score when satisfied.
Give each section the score of the highest criteria the essay satisfies.

Work step by step. For each section pick the one criteria row that best describes the essay
and ask yourself whether a higher or lower score would fit better. Be strict: only award a
score when its criteria is really met.

Address all feedback directly to the student in the second person.

Respond with a JSON object only, with these fields:
 - "table": a markdown table without a heading row and with one row per rubric section,
   containing a Criteria column (the section name), a Score column (the score you gave),
   and a Comments column explaining the score and, when it is below 3, how to improve.
   Exactly one row per section.
 - "total": the sum of the section scores, as an integer.
 - "summary": at most four sentences on the essay's key strengths and weaknesses.
{{- if .compare}}
 - "comparison": a short comparison of this essay with the student's previous essay:
` + "```" + `
{{.previous_essay}}
` + "```" + `
{{- else}}
 - "comparison": an empty string.
{{- end}}

The rubric:
` + "```" + `
{{.rubric}}
` + "```" + `

The essay:
` + "```" + `
{{.essay}}
` + "```" + `

The prompt it answers:
` + "```" + `
{{.question}}
` + "```" + `

Do not repeat the rubric text in your output.`

const gradingQASystem = `You are an experienced educator and an expert at reviewing the grading done by other educators.`

const gradingQAUser = `Review the quality of this grading, produced by a {{.grade}}-grade teacher:
` + "```" + `
{{.score}}
` + "```" + `
The grading is a JSON object with:
 - "table": a markdown table with one row per rubric section, holding the section name,
   the score given, and comments explaining the score.
 - "total": the student's total score out of a maximum of {{.max_score}}.
 - "summary": a short summary of the essay's strengths and weaknesses.
 - "comparison": an optional comparison with the student's previous essay.

Look for problems such as:
 - comments in the table that conflict with, or are unrelated to, the criteria;
 - a summary that conflicts with, or is unrelated to, the table comments;
 - a comparison, when present, that conflicts with, or is unrelated to, the summary.

Respond with a JSON object only, with a boolean "valid" field that is true when no problems
were found. When problems were found, add a "feedback" string summarising them.

Example:
{"valid": false, "feedback": "The summary conflicts with the comments in the table."}`

const testEssaySystem = `You simulate the writing of students with different levels of skill.`

const testEssayUser = `Write an essay as a {{.grade}}-grade student with a skill level of "{{.quality}}" would.
The essay answers this prompt, although "low" and "medium" essays should not fully respond to it:
` + "```" + `
{{.question}}
` + "```" + `

Teachers will grade it with this rubric, a JSON array of sections whose criteria award the
matching score when satisfied. Let the skill level show in how the essay meets these criteria:
` + "```" + `
{{.rubric}}
` + "```" + `

A "low" essay uses simple sentences, limited vocabulary and very poor grammar, has a single
paragraph without introduction or conclusion, stays on the topic, and uses no evidence from
the context.

A "medium" essay uses simple sentences and limited vocabulary with several grammatical
errors, has at most two paragraphs, and misses some of what the question asks for, for
example using only one piece of evidence from the context.

A "high" essay uses complex sentences and a wide vocabulary at a level two or three grades
above {{.grade}} grade, and addresses every theme and fact in the prompt's context.

Output only the essay as plain text: no title, no headings, and no mention of the skill
level or the expected grade.`
