package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parisxmas/OxiDB/OxiForms/internal/db"
	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
)

// PGFormRepo stores forms in Postgres.
type PGFormRepo struct {
	db *sql.DB
}

func NewPGFormRepo(conn *sql.DB) *PGFormRepo {
	return &PGFormRepo{db: conn}
}

// EnsureSchema creates the forms table.
func (r *PGFormRepo) EnsureSchema() error {
	if _, err := r.db.Exec(queryCreateFormsTable.Query); err != nil {
		return fmt.Errorf("%s: %w", queryCreateFormsTable.ID, err)
	}
	return nil
}

func (r *PGFormRepo) Create(form *models.Form) (int64, error) {
	settings, err := json.Marshal(form.Settings)
	if err != nil {
		return 0, fmt.Errorf("encode settings: %w", err)
	}
	var id int64
	err = r.db.QueryRow(queryCreateForm.Query,
		form.Title, form.Slug, form.Description, string(form.Status),
		[]byte(form.Schema), settings, form.CreatedAt, form.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrSlugTaken
		}
		return 0, fmt.Errorf("%s: %w", queryCreateForm.ID, err)
	}
	return id, nil
}

func (r *PGFormRepo) FindAll(status models.FormStatus) ([]models.Form, error) {
	rows, err := r.db.Query(queryListForms.Query, string(status))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", queryListForms.ID, err)
	}
	defer rows.Close()

	forms := make([]models.Form, 0)
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, *f)
	}
	return forms, rows.Err()
}

func (r *PGFormRepo) FindByID(id int64) (*models.Form, error) {
	f, err := scanForm(r.db.QueryRow(queryGetFormByID.Query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (r *PGFormRepo) FindBySlug(slug string, status models.FormStatus) (*models.Form, error) {
	f, err := scanForm(r.db.QueryRow(queryGetFormBySlug.Query, slug, string(status)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (r *PGFormRepo) Update(id int64, form *models.Form) error {
	settings, err := json.Marshal(form.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = r.db.Exec(queryUpdateForm.Query, id,
		form.Title, form.Slug, form.Description, string(form.Status),
		[]byte(form.Schema), settings, form.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("%s: %w", queryUpdateForm.ID, err)
	}
	return nil
}

func (r *PGFormRepo) Delete(id int64) error {
	if _, err := r.db.Exec(queryDeleteForm.Query, id); err != nil {
		return fmt.Errorf("%s: %w", queryDeleteForm.ID, err)
	}
	return nil
}

func (r *PGFormRepo) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(queryCountForms.Query).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", queryCountForms.ID, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row rowScanner) (*models.Form, error) {
	var (
		f        models.Form
		status   string
		schema   []byte
		settings []byte
	)
	if err := row.Scan(&f.ID, &f.Title, &f.Slug, &f.Description, &status,
		&schema, &settings, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Status = models.FormStatus(status)
	f.Schema = json.RawMessage(schema)
	if err := json.Unmarshal(settings, &f.Settings); err != nil {
		return nil, fmt.Errorf("decode settings of form %d: %w", f.ID, err)
	}
	return &f, nil
}
