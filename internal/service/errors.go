package service

import "errors"

// Submission endpoint failures, in the order they are checked.
var (
	ErrMissingParameters = errors.New("missing formId or data")
	ErrInvalidFormID     = errors.New("invalid form id")
	ErrFormNotFound      = errors.New("form not found")
	ErrFormNotAvailable  = errors.New("form is not available for submissions")
)

// Admin-side failures.
var (
	ErrTitleRequired      = errors.New("form title is required")
	ErrInvalidStatus      = errors.New("form status must be draft or published")
	ErrInvalidSchema      = errors.New("form schema must be a JSON object")
	ErrInvalidPatch       = errors.New("invalid JSON patch")
	ErrSlugTaken          = errors.New("slug already exists")
	ErrSubmissionNotFound = errors.New("submission not found")
)
