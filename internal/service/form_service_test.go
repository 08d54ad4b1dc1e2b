package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
	"github.com/parisxmas/OxiDB/OxiForms/internal/repository"
)

func newFormService() *FormService {
	svc := NewFormService(repository.NewMemoryFormRepo(), nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestFormService_CreateDefaults(t *testing.T) {
	svc := newFormService()

	form, err := svc.Create(FormInput{Title: "  Employee Feedback! "})
	require.NoError(t, err)
	assert.Equal(t, "Employee Feedback!", form.Title)
	assert.Equal(t, "employee-feedback", form.Slug)
	assert.Equal(t, models.StatusDraft, form.Status)
	assert.JSONEq(t, string(models.DefaultSchema), string(form.Schema))
	assert.Equal(t, models.DefaultSettings(), form.Settings)
	assert.Equal(t, "2026-03-01T09:30:00Z", form.CreatedAt)
}

func TestFormService_CreateValidation(t *testing.T) {
	svc := newFormService()

	_, err := svc.Create(FormInput{})
	assert.ErrorIs(t, err, ErrTitleRequired)
	_, err = svc.Create(FormInput{Title: "x", Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = svc.Create(FormInput{Title: "x", Schema: json.RawMessage(`[1,2]`)})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestFormService_SlugCollisions(t *testing.T) {
	svc := newFormService()

	_, err := svc.Create(FormInput{Title: "Contact"})
	require.NoError(t, err)

	second, err := svc.Create(FormInput{Title: "Contact"})
	require.NoError(t, err)
	assert.Equal(t, "contact-20260301093000", second.Slug)

	_, err = svc.Create(FormInput{Title: "Other", Slug: "contact"})
	assert.ErrorIs(t, err, ErrSlugTaken)

	_, err = svc.Update(second.ID, FormInput{Slug: "Contact"})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestFormService_SanitizesText(t *testing.T) {
	svc := newFormService()
	allow := false

	form, err := svc.Create(FormInput{
		Title:       "Survey",
		Description: `<script>alert(1)</script><b>Hello</b>`,
		Settings:    &SettingsInput{SuccessMessage: `<img src=x onerror=alert(1)>Thanks`, AllowMultipleSubmissions: &allow},
	})
	require.NoError(t, err)
	assert.Equal(t, "<b>Hello</b>", form.Description)
	assert.NotContains(t, form.Settings.SuccessMessage, "onerror")
	assert.Contains(t, form.Settings.SuccessMessage, "Thanks")
	assert.Equal(t, models.DefaultSubmitButtonText, form.Settings.SubmitButtonText)
	assert.False(t, form.Settings.AllowMultipleSubmissions)
}

func TestFormService_PublishedLookup(t *testing.T) {
	svc := newFormService()

	draft, err := svc.Create(FormInput{Title: "Contact"})
	require.NoError(t, err)

	_, err = svc.GetPublishedBySlug("contact")
	assert.ErrorIs(t, err, ErrFormNotFound)

	_, err = svc.Update(draft.ID, FormInput{Status: models.StatusPublished})
	require.NoError(t, err)

	got, err := svc.GetPublishedBySlug("contact")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	published, err := svc.ListPublished()
	require.NoError(t, err)
	assert.Len(t, published, 1)

	_, err = svc.List("bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestFormService_PatchSchema(t *testing.T) {
	svc := newFormService()
	form, err := svc.Create(FormInput{Title: "Contact"})
	require.NoError(t, err)

	patch := []byte(`[
		{"op":"add","path":"/components/-","value":{"type":"email","key":"email","label":"Email"}},
		{"op":"replace","path":"/display","value":"wizard"}
	]`)
	got, err := svc.PatchSchema(form.ID, patch)
	require.NoError(t, err)
	assert.JSONEq(t, `{"display":"wizard","components":[{"type":"email","key":"email","label":"Email"}]}`, string(got.Schema))

	stored, err := svc.Get(form.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(got.Schema), string(stored.Schema))

	_, err = svc.PatchSchema(form.ID, []byte(`{"op":"add"}`))
	assert.ErrorIs(t, err, ErrInvalidPatch)

	_, err = svc.PatchSchema(form.ID, []byte(`[{"op":"replace","path":"","value":[1]}]`))
	assert.Error(t, err)

	_, err = svc.PatchSchema(999, []byte(`[]`))
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestFormService_Delete(t *testing.T) {
	svc := newFormService()
	form, err := svc.Create(FormInput{Title: "Contact"})
	require.NoError(t, err)

	n, _ := svc.Count()
	assert.Equal(t, 1, n)

	require.NoError(t, svc.Delete(form.ID))
	assert.ErrorIs(t, svc.Delete(form.ID), ErrFormNotFound)
	_, err = svc.Get(form.ID)
	assert.ErrorIs(t, err, ErrFormNotFound)
}
