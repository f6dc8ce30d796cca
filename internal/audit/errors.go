package audit

import "fmt"

// ErrorKind classifies evaluator failures so the orchestrator can decide
// between escalation, PENDING, and aborting the run.
type ErrorKind string

const (
	ErrRetrievalUnavailable ErrorKind = "retrieval_unavailable"
	ErrModelUnavailable     ErrorKind = "model_unavailable"
	ErrModelTimeout         ErrorKind = "model_timeout"
	ErrMalformedModelOutput ErrorKind = "malformed_model_output"
	ErrNormalizationFailure ErrorKind = "normalization_failure"
	ErrConfiguration        ErrorKind = "configuration"
)

// EvalError is an evaluator stage failure with a closed kind.
type EvalError struct {
	Kind ErrorKind
	Err  error
}

func (e *EvalError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

func evalErrf(kind ErrorKind, format string, args ...any) *EvalError {
	return &EvalError{Kind: kind, Err: fmt.Errorf(format, args...)}
}
