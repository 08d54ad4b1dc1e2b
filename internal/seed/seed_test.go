package seed

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parisxmas/OxiDB/OxiForms/internal/formio"
	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
	"github.com/parisxmas/OxiDB/OxiForms/internal/repository"
	"github.com/parisxmas/OxiDB/OxiForms/internal/service"
)

func TestForms_Bundled(t *testing.T) {
	inputs, err := Forms()
	require.NoError(t, err)

	slugs := make([]string, 0, len(inputs))
	for _, in := range inputs {
		slugs = append(slugs, in.Slug)
	}
	assert.Equal(t, []string{"contact-us", "employee-feedback", "user-registration"}, slugs)
}

func TestRun_CreatesThenUpdates(t *testing.T) {
	forms := service.NewFormService(repository.NewMemoryFormRepo(), nil)
	inputs, err := Forms()
	require.NoError(t, err)

	res, err := Run(forms, inputs, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 3}, res)

	feedback, err := forms.GetPublishedBySlug("employee-feedback")
	require.NoError(t, err)
	assert.Equal(t, "Employee Feedback Form", feedback.Title)
	assert.Equal(t, "Submit Feedback", feedback.Settings.SubmitButtonText)
	assert.True(t, feedback.Settings.AllowMultipleSubmissions)

	// A second run leaves the slugs alone and rewrites content.
	inputs[1].Title = "Employee Feedback v2"
	res, err = Run(forms, inputs, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 3}, res)

	count, err := forms.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	feedback, err = forms.GetBySlug("employee-feedback")
	require.NoError(t, err)
	assert.Equal(t, "Employee Feedback v2", feedback.Title)
}

func TestBundledSchemas_Render(t *testing.T) {
	forms := service.NewFormService(repository.NewMemoryFormRepo(), nil)
	inputs, err := Forms()
	require.NoError(t, err)
	_, err = Run(forms, inputs, nil)
	require.NoError(t, err)

	contact, err := forms.GetBySlug("contact-us")
	require.NoError(t, err)
	steps, err := formio.Steps(contact)
	require.NoError(t, err)
	require.Len(t, steps, 1)

	schema, err := formio.Parse(steps[0].Schema)
	require.NoError(t, err)
	var keys []string
	for _, f := range schema.Fields() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"firstName", "lastName", "email", "phone", "inquiryType", "priority", "message"}, keys)

	reg, err := forms.GetBySlug("user-registration")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, reg.Status)
	steps, err = formio.Steps(reg)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "account", steps[0].ID)
	assert.Equal(t, "Your Profile", steps[1].Title)
}

func TestLoad_Errors(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/a.json":   {Data: []byte(`{"title":"A"}`)},
		"forms/notes.md": {Data: []byte(`ignored`)},
	}
	_, err := load(fsys, "forms")
	assert.ErrorContains(t, err, "slug is required")

	fsys = fstest.MapFS{"forms/b.json": {Data: []byte(`{`)}}
	_, err = load(fsys, "forms")
	assert.ErrorContains(t, err, "decode b.json")
}
