package repository

import (
	"fmt"

	"github.com/parisxmas/OxiDB/OxiForms/internal/db"
	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
	"github.com/parisxmas/OxiDB/OxiForms/internal/oxidb"
)

const SubmissionsCollection = "_form_submissions"

// SubmissionRepo stores submissions as OxiDB documents.
type SubmissionRepo struct {
	pool db.Provider
}

func NewSubmissionRepo(pool db.Provider) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) EnsureIndexes() error {
	c := r.pool.Get()
	if err := c.CreateIndex(SubmissionsCollection, "formId"); err != nil {
		return err
	}
	return c.CreateCompositeIndex(SubmissionsCollection, []string{"formId", "createdAt"})
}

func (r *SubmissionRepo) Create(sub *models.Submission) (int64, error) {
	doc, err := toDoc(sub)
	if err != nil {
		return 0, fmt.Errorf("encode submission: %w", err)
	}
	result, err := r.pool.Get().Insert(SubmissionsCollection, doc)
	if err != nil {
		return 0, err
	}
	return extractID(result)
}

func (r *SubmissionRepo) FindByFormID(formID int64, skip, limit int) ([]models.Submission, int, error) {
	c := r.pool.Get()
	query := map[string]any{"formId": formID}

	total, err := c.Count(SubmissionsCollection, query)
	if err != nil {
		return nil, 0, err
	}

	docs, err := c.Find(SubmissionsCollection, query, &oxidb.FindOptions{
		Sort:  map[string]any{"createdAt": -1},
		Skip:  &skip,
		Limit: &limit,
	})
	if err != nil {
		return nil, 0, err
	}

	subs := make([]models.Submission, 0, len(docs))
	for _, d := range docs {
		var s models.Submission
		if err := fromDoc(d, &s); err != nil {
			continue
		}
		subs = append(subs, s)
	}
	return subs, total, nil
}

func (r *SubmissionRepo) FindByID(id int64) (*models.Submission, error) {
	doc, err := r.pool.Get().FindOne(SubmissionsCollection, map[string]any{"_id": id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var s models.Submission
	if err := fromDoc(doc, &s); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	return &s, nil
}

func (r *SubmissionRepo) Delete(id int64) error {
	_, err := r.pool.Get().DeleteOne(SubmissionsCollection, map[string]any{"_id": id})
	return err
}

func (r *SubmissionRepo) CountByFormID(formID int64) (int, error) {
	return r.pool.Get().Count(SubmissionsCollection, map[string]any{"formId": formID})
}
