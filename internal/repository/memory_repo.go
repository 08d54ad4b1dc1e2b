package repository

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
)

// MemoryFormRepo keeps forms in process memory. Values are copied on the way
// in and out so callers never share state with the store.
type MemoryFormRepo struct {
	mu     sync.RWMutex
	nextID int64
	forms  map[int64]models.Form
}

func NewMemoryFormRepo() *MemoryFormRepo {
	return &MemoryFormRepo{forms: map[int64]models.Form{}}
}

func (r *MemoryFormRepo) Create(form *models.Form) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(form.Slug, 0) {
		return 0, ErrSlugTaken
	}
	r.nextID++
	f := cloneForm(*form)
	f.ID = r.nextID
	r.forms[f.ID] = f
	return f.ID, nil
}

func (r *MemoryFormRepo) FindAll(status models.FormStatus) ([]models.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	forms := make([]models.Form, 0, len(r.forms))
	for _, f := range r.forms {
		if status != "" && f.Status != status {
			continue
		}
		forms = append(forms, cloneForm(f))
	}
	sort.Slice(forms, func(i, j int) bool {
		if forms[i].CreatedAt != forms[j].CreatedAt {
			return forms[i].CreatedAt > forms[j].CreatedAt
		}
		return forms[i].ID > forms[j].ID
	})
	return forms, nil
}

func (r *MemoryFormRepo) FindByID(id int64) (*models.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.forms[id]
	if !ok {
		return nil, nil
	}
	f = cloneForm(f)
	return &f, nil
}

func (r *MemoryFormRepo) FindBySlug(slug string, status models.FormStatus) (*models.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.forms {
		if f.Slug == slug && (status == "" || f.Status == status) {
			f = cloneForm(f)
			return &f, nil
		}
	}
	return nil, nil
}

func (r *MemoryFormRepo) Update(id int64, form *models.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.forms[id]; !ok {
		return nil
	}
	if r.slugTaken(form.Slug, id) {
		return ErrSlugTaken
	}
	f := cloneForm(*form)
	f.ID = id
	r.forms[id] = f
	return nil
}

func (r *MemoryFormRepo) Delete(id int64) error {
	r.mu.Lock()
	delete(r.forms, id)
	r.mu.Unlock()
	return nil
}

func (r *MemoryFormRepo) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms), nil
}

func (r *MemoryFormRepo) slugTaken(slug string, except int64) bool {
	for id, f := range r.forms {
		if id != except && f.Slug == slug {
			return true
		}
	}
	return false
}

func cloneForm(f models.Form) models.Form {
	if f.Schema != nil {
		f.Schema = append([]byte(nil), f.Schema...)
	}
	return f
}

// MemorySubmissionRepo keeps submissions in process memory.
type MemorySubmissionRepo struct {
	mu     sync.RWMutex
	nextID int64
	subs   map[int64]models.Submission
}

func NewMemorySubmissionRepo() *MemorySubmissionRepo {
	return &MemorySubmissionRepo{subs: map[int64]models.Submission{}}
}

func (r *MemorySubmissionRepo) Create(sub *models.Submission) (int64, error) {
	s, err := cloneSubmission(*sub)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.subs[s.ID] = s
	return s.ID, nil
}

func (r *MemorySubmissionRepo) FindByID(id int64) (*models.Submission, error) {
	r.mu.RLock()
	s, ok := r.subs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	c, err := cloneSubmission(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MemorySubmissionRepo) FindByFormID(formID int64, skip, limit int) ([]models.Submission, int, error) {
	r.mu.RLock()
	matched := make([]models.Submission, 0)
	for _, s := range r.subs {
		if s.FormID == formID {
			matched = append(matched, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt != matched[j].CreatedAt {
			return matched[i].CreatedAt > matched[j].CreatedAt
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if skip > total {
		skip = total
	}
	end := total
	if limit > 0 && skip+limit < total {
		end = skip + limit
	}
	page := make([]models.Submission, 0, end-skip)
	for _, s := range matched[skip:end] {
		c, err := cloneSubmission(s)
		if err != nil {
			return nil, 0, err
		}
		page = append(page, c)
	}
	return page, total, nil
}

func (r *MemorySubmissionRepo) CountByFormID(formID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.subs {
		if s.FormID == formID {
			n++
		}
	}
	return n, nil
}

func (r *MemorySubmissionRepo) Delete(id int64) error {
	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
	return nil
}

// cloneSubmission deep-copies the opaque data through JSON.
func cloneSubmission(s models.Submission) (models.Submission, error) {
	if s.Data == nil {
		return s, nil
	}
	raw, err := json.Marshal(s.Data)
	if err != nil {
		return s, err
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return s, err
	}
	s.Data = data
	return s, nil
}
