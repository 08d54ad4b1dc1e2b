package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
	"github.com/parisxmas/OxiDB/OxiForms/internal/repository"
)

// SuccessMessage is returned for every accepted submission.
const SuccessMessage = "Form submitted successfully"

// SubmitRequest is one call to the submission endpoint. FormID and Data are
// the decoded request body fields; the rest come from request headers.
type SubmitRequest struct {
	FormID       any
	Data         any
	ForwardedFor string
	RealIP       string
	UserAgent    string
}

// SubmitResult is returned for an accepted submission.
type SubmitResult struct {
	SubmissionID int64
	Message      string
}

type SubmissionService struct {
	subs  repository.SubmissionRepository
	forms repository.FormRepository
	log   *zap.Logger
	now   func() time.Time
}

func NewSubmissionService(subs repository.SubmissionRepository, forms repository.FormRepository, log *zap.Logger) *SubmissionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubmissionService{subs: subs, forms: forms, log: log, now: time.Now}
}

// Submit validates the target form and stores one submission record.
// Validation errors are the sentinels in errors.go; anything else is a
// storage failure. Identical payloads are stored as separate records.
func (s *SubmissionService) Submit(req SubmitRequest) (*SubmitResult, error) {
	if formIDMissing(req.FormID) || !present(req.Data) {
		return nil, ErrMissingParameters
	}
	formID, ok := parseFormID(req.FormID)
	if !ok {
		return nil, ErrInvalidFormID
	}

	form, err := s.forms.FindByID(formID)
	if err != nil {
		return nil, fmt.Errorf("load form %d: %w", formID, err)
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	if !form.IsPublished() {
		return nil, ErrFormNotAvailable
	}

	now := s.now().UTC().Format(time.RFC3339)
	sub := &models.Submission{
		FormID:         formID,
		Data:           stripControlKeys(req.Data),
		SubmitterEmail: extractEmail(req.Data),
		Metadata: models.SubmissionMetadata{
			IPAddress: ClientIP(req.ForwardedFor, req.RealIP),
			UserAgent: UserAgent(req.UserAgent),
		},
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.subs.Create(sub)
	if err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}
	s.log.Info("Form submission stored",
		zap.Int64("form_id", formID),
		zap.Int64("submission_id", id),
		zap.String("ip", sub.Metadata.IPAddress))
	return &SubmitResult{SubmissionID: id, Message: SuccessMessage}, nil
}

func (s *SubmissionService) List(formID int64, skip, limit int) ([]models.Submission, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}
	return s.subs.FindByFormID(formID, skip, limit)
}

func (s *SubmissionService) Get(id int64) (*models.Submission, error) {
	sub, err := s.subs.FindByID(id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}

func (s *SubmissionService) Delete(id int64) error {
	sub, err := s.subs.FindByID(id)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrSubmissionNotFound
	}
	return s.subs.Delete(id)
}

func (s *SubmissionService) CountByForm(formID int64) (int, error) {
	return s.subs.CountByFormID(formID)
}
