package research

import "errors"

var (
	// ErrModelInvocation wraps any failure calling the language model.
	ErrModelInvocation = errors.New("model invocation failed")
	// ErrInsufficientInput is returned when an operation needs more papers.
	ErrInsufficientInput = errors.New("at least two papers are required for comparison")
	// ErrNoResults is returned when an operation needs prior analyses.
	ErrNoResults = errors.New("no analysis results; analyze papers first")
	// ErrParse marks model output that did not have the expected shape.
	ErrParse = errors.New("unexpected model output format")
	// ErrInvalidQuestion is returned for an empty question.
	ErrInvalidQuestion = errors.New("question must not be empty")
)
