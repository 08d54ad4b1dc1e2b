package repository

import (
	"fmt"

	"github.com/parisxmas/OxiDB/OxiForms/internal/db"
	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
	"github.com/parisxmas/OxiDB/OxiForms/internal/oxidb"
)

const FormsCollection = "_forms"

// FormRepo stores forms as OxiDB documents.
type FormRepo struct {
	pool db.Provider
}

func NewFormRepo(pool db.Provider) *FormRepo {
	return &FormRepo{pool: pool}
}

func (r *FormRepo) EnsureIndexes() error {
	c := r.pool.Get()
	if err := c.CreateUniqueIndex(FormsCollection, "slug"); err != nil {
		return err
	}
	return c.CreateIndex(FormsCollection, "status")
}

func (r *FormRepo) Create(form *models.Form) (int64, error) {
	doc, err := toDoc(form)
	if err != nil {
		return 0, fmt.Errorf("encode form: %w", err)
	}
	result, err := r.pool.Get().Insert(FormsCollection, doc)
	if err != nil {
		if oxidb.IsDuplicateKey(err) {
			return 0, ErrSlugTaken
		}
		return 0, err
	}
	return extractID(result)
}

func (r *FormRepo) FindAll(status models.FormStatus) ([]models.Form, error) {
	docs, err := r.pool.Get().Find(FormsCollection, statusQuery(map[string]any{}, string(status)), &oxidb.FindOptions{
		Sort: map[string]any{"createdAt": -1},
	})
	if err != nil {
		return nil, err
	}
	forms := make([]models.Form, 0, len(docs))
	for _, d := range docs {
		var f models.Form
		if err := fromDoc(d, &f); err != nil {
			continue
		}
		forms = append(forms, f)
	}
	return forms, nil
}

func (r *FormRepo) FindByID(id int64) (*models.Form, error) {
	return r.findOne(map[string]any{"_id": id})
}

func (r *FormRepo) FindBySlug(slug string, status models.FormStatus) (*models.Form, error) {
	return r.findOne(statusQuery(map[string]any{"slug": slug}, string(status)))
}

func (r *FormRepo) findOne(query map[string]any) (*models.Form, error) {
	doc, err := r.pool.Get().FindOne(FormsCollection, query)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var f models.Form
	if err := fromDoc(doc, &f); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	return &f, nil
}

func (r *FormRepo) Update(id int64, form *models.Form) error {
	doc, err := toDoc(form)
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	_, err = r.pool.Get().UpdateOne(FormsCollection, map[string]any{"_id": id}, map[string]any{"$set": doc})
	if oxidb.IsDuplicateKey(err) {
		return ErrSlugTaken
	}
	return err
}

func (r *FormRepo) Delete(id int64) error {
	_, err := r.pool.Get().DeleteOne(FormsCollection, map[string]any{"_id": id})
	return err
}

func (r *FormRepo) Count() (int, error) {
	return r.pool.Get().Count(FormsCollection, map[string]any{})
}
