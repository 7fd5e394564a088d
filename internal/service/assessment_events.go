package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// EssayScoredEvent is published after a score report is accepted.
type EssayScoredEvent struct {
	SessionID string    `json:"session_id"`
	Grade     string    `json:"grade"`
	Topic     string    `json:"topic"`
	Total     int       `json:"total"`
	MaxScore  int       `json:"max_score"`
	ScoredAt  time.Time `json:"scored_at"`
}

// AssessmentEvents publishes assessment lifecycle events.
type AssessmentEvents interface {
	EssayScored(ctx context.Context, event EssayScoredEvent)
}

type natsAssessmentEvents struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSAssessmentEvents publishes events on subject. A nil connection yields a no-op publisher.
func NewNATSAssessmentEvents(conn *nats.Conn, subject string, logger zerolog.Logger) AssessmentEvents {
	if conn == nil || subject == "" {
		return NoopAssessmentEvents{}
	}
	return &natsAssessmentEvents{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "assessment_events").Logger(),
	}
}

func (p *natsAssessmentEvents) EssayScored(_ context.Context, event EssayScoredEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode essay scored event")
		return
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to publish essay scored event")
	}
}

// NoopAssessmentEvents drops every event.
type NoopAssessmentEvents struct{}

// EssayScored does nothing.
func (NoopAssessmentEvents) EssayScored(context.Context, EssayScoredEvent) {}
