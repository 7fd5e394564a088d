package models

import "time"

// PromptCache is the prompt generated for one (grade, topic) pair, or the record that the
// topic was rejected for that grade.
type PromptCache struct {
	Grade    GradeLevel `json:"grade"`
	Topic    string     `json:"topic"`
	Prompt   string     `json:"prompt,omitempty"`
	Rejected bool       `json:"rejected,omitempty"`
}

// Matches reports whether the entry belongs to the given key.
func (p *PromptCache) Matches(grade GradeLevel, topic string) bool {
	return p != nil && p.Grade == grade && p.Topic == topic
}

// Session is the state of one assessment conversation. It is owned by a single caller.
type Session struct {
	ID            string       `json:"id"`
	Grade         GradeLevel   `json:"grade,omitempty"`
	Rubric        *Rubric      `json:"rubric,omitempty"`
	PromptCache   *PromptCache `json:"prompt_cache,omitempty"`
	PreviousEssay string       `json:"previous_essay,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// SelectGrade switches the session to grade. A different grade drops the rubric and
// everything derived from it; it reports whether a new rubric is needed.
func (s *Session) SelectGrade(grade GradeLevel) bool {
	if s.Grade == grade && s.Rubric != nil {
		return false
	}
	if s.Grade != grade {
		s.PromptCache = nil
		s.PreviousEssay = ""
	}
	s.Grade = grade
	s.Rubric = nil
	return true
}

// StoreRubric records a validated rubric for the current grade.
func (s *Session) StoreRubric(rubric Rubric) {
	s.Rubric = &rubric
}

// CachedPrompt returns the cache entry for topic under the current grade, if any.
func (s *Session) CachedPrompt(topic string) (*PromptCache, bool) {
	if s.PromptCache.Matches(s.Grade, topic) {
		return s.PromptCache, true
	}
	return nil, false
}

// StorePrompt caches an accepted prompt for topic.
func (s *Session) StorePrompt(topic, prompt string) {
	s.PromptCache = &PromptCache{Grade: s.Grade, Topic: topic, Prompt: prompt}
}

// ClearPrompt drops the cached prompt so essays are refused until a new one is accepted.
func (s *Session) ClearPrompt() {
	s.PromptCache = nil
}

// RejectTopic remembers that topic cannot be used with the current grade.
func (s *Session) RejectTopic(topic string) {
	s.PromptCache = &PromptCache{Grade: s.Grade, Topic: topic, Rejected: true}
}

// ActivePrompt returns the prompt essays are currently checked against.
func (s *Session) ActivePrompt() (topic, prompt string, ok bool) {
	if s.PromptCache == nil || s.PromptCache.Rejected || s.PromptCache.Grade != s.Grade || s.PromptCache.Prompt == "" {
		return "", "", false
	}
	return s.PromptCache.Topic, s.PromptCache.Prompt, true
}

// RecordScored keeps essay as the comparison baseline for the next scoring round.
func (s *Session) RecordScored(essay string) {
	s.PreviousEssay = essay
}
