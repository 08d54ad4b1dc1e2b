// Package repository persists forms and submissions. Every store comes in
// three flavours: OxiDB documents, Postgres rows and an in-memory map.
package repository

import (
	"errors"

	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
)

// ErrSlugTaken is returned when a form slug is already in use.
var ErrSlugTaken = errors.New("slug already exists")

// FormRepository stores form definitions. Lookups return (nil, nil) when
// nothing matches. An empty status filter matches every status.
type FormRepository interface {
	Create(form *models.Form) (int64, error)
	FindAll(status models.FormStatus) ([]models.Form, error)
	FindByID(id int64) (*models.Form, error)
	FindBySlug(slug string, status models.FormStatus) (*models.Form, error)
	Update(id int64, form *models.Form) error
	Delete(id int64) error
	Count() (int, error)
}

// SubmissionRepository is the append-only submission store. Delete exists
// for admin tooling only.
type SubmissionRepository interface {
	Create(sub *models.Submission) (int64, error)
	FindByID(id int64) (*models.Submission, error)
	FindByFormID(formID int64, skip, limit int) ([]models.Submission, int, error)
	CountByFormID(formID int64) (int, error)
	Delete(id int64) error
}
