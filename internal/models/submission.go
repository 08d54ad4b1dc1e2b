package models

// SubmissionMetadata records where a submission came from.
type SubmissionMetadata struct {
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
}

// Submission is one completed form. Data is either a single object or, for
// multi-step wizards, an ordered array of per-step objects.
type Submission struct {
	ID             int64              `json:"id,omitempty"`
	FormID         int64              `json:"formId"`
	Data           any                `json:"data"`
	SubmitterEmail string             `json:"submitterEmail,omitempty"`
	Metadata       SubmissionMetadata `json:"metadata"`
	SubmittedAt    string             `json:"submittedAt"`
	CreatedAt      string             `json:"createdAt"`
	UpdatedAt      string             `json:"updatedAt"`
}
