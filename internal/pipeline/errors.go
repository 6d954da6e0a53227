package pipeline

import "fmt"

// InferenceError reports that a stage's backend call could not produce a
// schema-conformant result after its retry budget. Triage and scoring treat
// it as fatal for the lead; research degrades instead.
type InferenceError struct {
	Stage string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s inference failed: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

func newInferenceError(stage string, err error) *InferenceError {
	return &InferenceError{Stage: stage, Err: err}
}
