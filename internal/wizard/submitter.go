package wizard

import (
	"context"
	"errors"
)

const (
	// DefaultFailureReason is shown when a submission fails without a
	// server-provided reason.
	DefaultFailureReason = "Submission failed"
	// DefaultSuccessMessage is shown when the form has none configured.
	DefaultSuccessMessage = "Thank you for your submission!"
	// DefaultSubmitLabel labels the last step's submit action.
	DefaultSubmitLabel = "Submit"
)

// Receipt is the outcome of an accepted submission.
type Receipt struct {
	SubmissionID int64
	Message      string
}

// Submitter performs the final aggregated submission.
type Submitter interface {
	Submit(ctx context.Context, formID string, data any) (*Receipt, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, formID string, data any) (*Receipt, error)

func (f SubmitterFunc) Submit(ctx context.Context, formID string, data any) (*Receipt, error) {
	return f(ctx, formID, data)
}

// RejectedError is a submission refused by the endpoint.
type RejectedError struct {
	Status int
	Code   string
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return DefaultFailureReason
	}
	return e.Reason
}

// FailureReason turns a submission error into user-facing text.
func FailureReason(err error) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.Reason != "" {
		return rejected.Reason
	}
	return DefaultFailureReason
}
