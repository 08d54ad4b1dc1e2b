package models

import "encoding/json"

// FormStatus is the publication state of a form.
type FormStatus string

const (
	StatusDraft     FormStatus = "draft"
	StatusPublished FormStatus = "published"
)

// Valid reports whether s is a known status.
func (s FormStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

const (
	DefaultSubmitButtonText = "Submit"
	DefaultSuccessMessage   = "Thank you for your submission!"
)

// DefaultSchema is the empty Form.io schema new forms start with.
var DefaultSchema = json.RawMessage(`{"display":"form","components":[]}`)

// FormSettings controls how the public form behaves.
type FormSettings struct {
	SubmitButtonText         string `json:"submitButtonText"`
	SuccessMessage           string `json:"successMessage"`
	AllowMultipleSubmissions bool   `json:"allowMultipleSubmissions"`
}

// DefaultSettings returns the settings a new form gets.
func DefaultSettings() FormSettings {
	return FormSettings{
		SubmitButtonText:         DefaultSubmitButtonText,
		SuccessMessage:           DefaultSuccessMessage,
		AllowMultipleSubmissions: true,
	}
}

// Form is an administrator-authored form definition. The schema is opaque
// Form.io JSON; only the rendering widget interprets it.
type Form struct {
	ID          int64           `json:"id,omitempty"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Description string          `json:"description,omitempty"`
	Status      FormStatus      `json:"status"`
	Schema      json.RawMessage `json:"schema"`
	Settings    FormSettings    `json:"settings"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

// IsPublished reports whether the form accepts submissions.
func (f *Form) IsPublished() bool {
	return f.Status == StatusPublished
}

// SuccessMessage returns the configured message or the default one.
func (f *Form) SuccessMessage() string {
	if f.Settings.SuccessMessage != "" {
		return f.Settings.SuccessMessage
	}
	return DefaultSuccessMessage
}
