package formio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
)

const wizardSchema = `{
	"display": "wizard",
	"components": [
		{"type":"panel","key":"account","title":"Account","components":[
			{"type":"email","key":"email","label":"Email","input":true,"validate":{"required":true}}
		]},
		{"type":"textfield","key":"stray","label":"Ignored outside a panel"},
		{"type":"panel","key":"profile","title":"Profile","components":[
			{"type":"columns","columns":[
				{"components":[{"type":"textfield","key":"first","label":"First"}]},
				{"components":[{"type":"textfield","key":"last","label":"Last"}]}
			]}
		]}
	]
}`

func TestSteps_SinglePage(t *testing.T) {
	form := &models.Form{Title: "Contact", Description: "Say hi", Schema: json.RawMessage(`{"display":"form","components":[]}`)}

	steps, err := Steps(form)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, MainStepID, steps[0].ID)
	assert.Equal(t, "Contact", steps[0].Title)
	assert.Equal(t, "Say hi", steps[0].Description)
	assert.JSONEq(t, string(form.Schema), string(steps[0].Schema))
}

func TestSteps_EmptySchemaUsesDefault(t *testing.T) {
	steps, err := Steps(&models.Form{Title: "x"})
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.JSONEq(t, string(models.DefaultSchema), string(steps[0].Schema))
}

func TestSteps_WizardPanels(t *testing.T) {
	steps, err := Steps(&models.Form{Title: "Register", Schema: json.RawMessage(wizardSchema)})
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, "account", steps[0].ID)
	assert.Equal(t, "Account", steps[0].Title)
	assert.JSONEq(t, `{"display":"form","components":[{"type":"email","key":"email","label":"Email","input":true,"validate":{"required":true}}]}`,
		string(steps[0].Schema))
	assert.Equal(t, "profile", steps[1].ID)
}

func TestSteps_WizardWithoutPanels(t *testing.T) {
	steps, err := Steps(&models.Form{Title: "Odd", Schema: json.RawMessage(`{"display":"wizard","components":[{"type":"textfield","key":"a"}]}`)})
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, MainStepID, steps[0].ID)
}

func TestSteps_InvalidSchema(t *testing.T) {
	_, err := Steps(&models.Form{Schema: json.RawMessage(`[`)})
	assert.Error(t, err)
}

func TestFields_Flattens(t *testing.T) {
	s, err := Parse(json.RawMessage(`{
		"components": [
			{"type":"content","html":"<p>Intro</p>"},
			{"type":"panel","components":[{"type":"textfield","key":"name","label":"Name","required":true}]},
			{"type":"columns","columns":[{"components":[{"type":"select","key":"dept","data":{"values":[{"label":"HR","value":"hr"}]}}]}]},
			{"type":"radio","key":"rating","values":[{"label":"Good","value":"good"}]},
			{"type":"textfield","key":"secret","hidden":true},
			{"type":"button","key":"submit","action":"submit"}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "form", s.Display)

	fields := s.Fields()
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Type+":"+f.Key)
	}
	assert.Equal(t, []string{"content:", "textfield:name", "select:dept", "radio:rating"}, keys)
	assert.True(t, fields[1].IsRequired())
	assert.Equal(t, "HR", fields[2].Options()[0].Label)
	assert.Equal(t, "Good", fields[3].Options()[0].Label)
	assert.Equal(t, "dept", fields[2].Text())
}
