package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/internal/observability"
)

// DefaultMaxAttempts is the attempt cap used when a policy does not set one.
const DefaultMaxAttempts = 5

// OutcomeStatus is the terminal state of a retried step.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeExhausted OutcomeStatus = "exhausted"
	OutcomeCanceled  OutcomeStatus = "canceled"
)

// Outcome is the result of a retried step. Value is only meaningful when OK is true;
// Cause holds the failure of the last attempt otherwise.
type Outcome[T any] struct {
	Value    T
	Status   OutcomeStatus
	Attempts int
	Cause    error
}

// OK reports whether the step produced a validated value.
func (o Outcome[T]) OK() bool {
	return o.Status == OutcomeSucceeded
}

// RetryPolicy bounds how often a step is attempted and where failures are logged.
type RetryPolicy struct {
	MaxAttempts int
	Logger      zerolog.Logger
}

// Producer performs one generation attempt.
type Producer[T any] func(ctx context.Context) (T, error)

// Validator rejects a produced value by returning an error.
type Validator[T any] func(T) error

// Retry calls produce until validate accepts its result or the policy's attempt cap is
// reached. Producer errors and validation failures are logged and retried with a fresh
// call; they never escape as errors.
func Retry[T any](ctx context.Context, policy RetryPolicy, step string, produce Producer[T], validate Validator[T]) Outcome[T] {
	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var outcome Outcome[T]
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			outcome.Status = OutcomeCanceled
			outcome.Cause = err
			return outcome
		}

		outcome.Attempts = attempt
		value, err := produce(ctx)
		if err == nil && validate != nil {
			if verr := validate(value); verr != nil {
				err = fmt.Errorf("validation failed: %w", verr)
			}
		}

		if err == nil {
			observability.GenerationAttempts().WithLabelValues(step, "accepted").Inc()
			outcome.Value = value
			outcome.Status = OutcomeSucceeded
			outcome.Cause = nil
			return outcome
		}

		observability.GenerationAttempts().WithLabelValues(step, attemptResult(err)).Inc()
		policy.Logger.Warn().
			Err(err).
			Str("step", step).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Msg("generation attempt failed")
		outcome.Cause = err
	}

	var zero T
	outcome.Value = zero
	outcome.Status = OutcomeExhausted
	observability.GenerationExhaustions().WithLabelValues(step).Inc()
	policy.Logger.Error().
		Err(outcome.Cause).
		Str("step", step).
		Int("attempts", outcome.Attempts).
		Msg("generation step exhausted")
	return outcome
}

func attemptResult(err error) string {
	var rejected *rejection
	var violation *models.RubricViolation
	if errors.As(err, &rejected) || errors.As(err, &violation) {
		return "rejected"
	}
	if errors.Is(err, errMalformedOutput) {
		return "malformed"
	}
	return "error"
}

// errMalformedOutput marks model output that could not be decoded.
var errMalformedOutput = errors.New("malformed model output")

// rejection marks a well-formed candidate that a reviewer or content check turned down.
type rejection struct {
	reason string
}

func (r *rejection) Error() string {
	return r.reason
}
