package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/jsonx"
	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
	"github.com/parisxmas/OxiDB/OxiForms/internal/repository"
)

// FormInput carries the admin-editable fields of a form. Zero values leave
// the stored field unchanged on Update, except Description which is always
// replaced.
type FormInput struct {
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Status      models.FormStatus `json:"status"`
	Schema      json.RawMessage   `json:"schema"`
	Settings    *SettingsInput    `json:"settings"`
}

// SettingsInput is a partial settings update.
type SettingsInput struct {
	SubmitButtonText         string `json:"submitButtonText"`
	SuccessMessage           string `json:"successMessage"`
	AllowMultipleSubmissions *bool  `json:"allowMultipleSubmissions"`
}

type FormService struct {
	forms  repository.FormRepository
	log    *zap.Logger
	policy *bluemonday.Policy
	now    func() time.Time
}

func NewFormService(forms repository.FormRepository, log *zap.Logger) *FormService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FormService{
		forms:  forms,
		log:    log,
		policy: bluemonday.UGCPolicy(),
		now:    time.Now,
	}
}

func (s *FormService) Create(in FormInput) (*models.Form, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	schema := models.DefaultSchema
	if len(in.Schema) > 0 {
		if err := checkSchema(in.Schema); err != nil {
			return nil, err
		}
		schema = in.Schema
	}
	settings := models.DefaultSettings()
	if in.Settings != nil {
		settings = s.mergeSettings(settings, *in.Settings)
	}

	explicitSlug := strings.TrimSpace(in.Slug) != ""
	slug := generateSlug(title)
	if explicitSlug {
		slug = generateSlug(in.Slug)
	}

	existing, err := s.forms.FindBySlug(slug, "")
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if explicitSlug {
			return nil, ErrSlugTaken
		}
		slug = slug + "-" + s.now().Format("20060102150405")
	}

	now := s.now().UTC().Format(time.RFC3339)
	form := &models.Form{
		Title:       title,
		Slug:        slug,
		Description: s.policy.Sanitize(in.Description),
		Status:      status,
		Schema:      schema,
		Settings:    settings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.forms.Create(form)
	if err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	form.ID = id
	s.log.Info("Form created", zap.Int64("form_id", id), zap.String("slug", slug))
	return form, nil
}

// List returns forms with the given status, or all forms for "".
func (s *FormService) List(status models.FormStatus) ([]models.Form, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.forms.FindAll(status)
}

func (s *FormService) ListPublished() ([]models.Form, error) {
	return s.forms.FindAll(models.StatusPublished)
}

func (s *FormService) Get(id int64) (*models.Form, error) {
	form, err := s.forms.FindByID(id)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// GetBySlug returns a form of any status.
func (s *FormService) GetBySlug(slug string) (*models.Form, error) {
	form, err := s.forms.FindBySlug(slug, "")
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// GetPublishedBySlug returns a published form; drafts are reported as not
// found.
func (s *FormService) GetPublishedBySlug(slug string) (*models.Form, error) {
	form, err := s.forms.FindBySlug(slug, models.StatusPublished)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	return form, nil
}

func (s *FormService) Update(id int64, in FormInput) (*models.Form, error) {
	form, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		form.Title = title
	}
	if strings.TrimSpace(in.Slug) != "" {
		slug := generateSlug(in.Slug)
		if slug != form.Slug {
			other, err := s.forms.FindBySlug(slug, "")
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != id {
				return nil, ErrSlugTaken
			}
			form.Slug = slug
		}
	}
	form.Description = s.policy.Sanitize(in.Description)
	if in.Status != "" {
		if !in.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		form.Status = in.Status
	}
	if len(in.Schema) > 0 {
		if err := checkSchema(in.Schema); err != nil {
			return nil, err
		}
		form.Schema = in.Schema
	}
	if in.Settings != nil {
		form.Settings = s.mergeSettings(form.Settings, *in.Settings)
	}
	return s.save(id, form)
}

// PatchSchema applies an RFC 6902 patch to the form's schema.
func (s *FormService) PatchSchema(id int64, patch []byte) (*models.Form, error) {
	form, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	opts := jsonpatch.NewApplyOptions()
	opts.EnsurePathExistsOnAdd = true
	opts.AllowMissingPathOnRemove = true

	schema := form.Schema
	if len(schema) == 0 {
		schema = models.DefaultSchema
	}
	patched, err := ops.ApplyWithOptions(schema, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	if err := checkSchema(patched); err != nil {
		return nil, err
	}
	form.Schema = patched
	return s.save(id, form)
}

func (s *FormService) Delete(id int64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.forms.Delete(id); err != nil {
		return err
	}
	s.log.Info("Form deleted", zap.Int64("form_id", id))
	return nil
}

func (s *FormService) Count() (int, error) {
	return s.forms.Count()
}

func (s *FormService) save(id int64, form *models.Form) (*models.Form, error) {
	form.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	if err := s.forms.Update(id, form); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return form, nil
}

func (s *FormService) mergeSettings(base models.FormSettings, in SettingsInput) models.FormSettings {
	if in.SubmitButtonText != "" {
		base.SubmitButtonText = in.SubmitButtonText
	}
	if in.SuccessMessage != "" {
		base.SuccessMessage = s.policy.Sanitize(in.SuccessMessage)
	}
	if in.AllowMultipleSubmissions != nil {
		base.AllowMultipleSubmissions = *in.AllowMultipleSubmissions
	}
	return base
}

func checkSchema(raw json.RawMessage) error {
	var obj map[string]any
	if err := jsonx.Unmarshal(raw, &obj); err != nil || obj == nil {
		return ErrInvalidSchema
	}
	return nil
}

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

func generateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonAlphaNum.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "form"
	}
	return slug
}
