package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
)

// PGSubmissionRepo stores submissions in Postgres.
type PGSubmissionRepo struct {
	db *sql.DB
}

func NewPGSubmissionRepo(conn *sql.DB) *PGSubmissionRepo {
	return &PGSubmissionRepo{db: conn}
}

// EnsureSchema creates the submissions table and its index. The forms table
// must exist first.
func (r *PGSubmissionRepo) EnsureSchema() error {
	for _, q := range []pgQuery{queryCreateSubmissionsTable, queryCreateSubmissionsIndex} {
		if _, err := r.db.Exec(q.Query); err != nil {
			return fmt.Errorf("%s: %w", q.ID, err)
		}
	}
	return nil
}

func (r *PGSubmissionRepo) Create(sub *models.Submission) (int64, error) {
	data, err := json.Marshal(sub.Data)
	if err != nil {
		return 0, fmt.Errorf("encode submission data: %w", err)
	}
	var id int64
	err = r.db.QueryRow(queryCreateSubmission.Query,
		sub.FormID, data, sub.SubmitterEmail, sub.Metadata.IPAddress, sub.Metadata.UserAgent,
		sub.SubmittedAt, sub.CreatedAt, sub.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", queryCreateSubmission.ID, err)
	}
	return id, nil
}

func (r *PGSubmissionRepo) FindByID(id int64) (*models.Submission, error) {
	s, err := scanSubmission(r.db.QueryRow(queryGetSubmissionByID.Query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *PGSubmissionRepo) FindByFormID(formID int64, skip, limit int) ([]models.Submission, int, error) {
	total, err := r.CountByFormID(formID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(queryListSubmissionsByForm.Query, formID, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", queryListSubmissionsByForm.ID, err)
	}
	defer rows.Close()

	subs := make([]models.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *s)
	}
	return subs, total, rows.Err()
}

func (r *PGSubmissionRepo) CountByFormID(formID int64) (int, error) {
	var n int
	if err := r.db.QueryRow(queryCountSubmissionsByForm.Query, formID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", queryCountSubmissionsByForm.ID, err)
	}
	return n, nil
}

func (r *PGSubmissionRepo) Delete(id int64) error {
	if _, err := r.db.Exec(queryDeleteSubmission.Query, id); err != nil {
		return fmt.Errorf("%s: %w", queryDeleteSubmission.ID, err)
	}
	return nil
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		s    models.Submission
		data []byte
	)
	if err := row.Scan(&s.ID, &s.FormID, &data, &s.SubmitterEmail, &s.Metadata.IPAddress,
		&s.Metadata.UserAgent, &s.SubmittedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &s.Data); err != nil {
		return nil, fmt.Errorf("decode data of submission %d: %w", s.ID, err)
	}
	return &s, nil
}
