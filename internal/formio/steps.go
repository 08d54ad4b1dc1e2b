package formio

import (
	"encoding/json"
	"fmt"

	"github.com/parisxmas/OxiDB/OxiForms/internal/jsonx"
	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
	"github.com/parisxmas/OxiDB/OxiForms/internal/wizard"
)

// MainStepID names the step of a single-page form.
const MainStepID = "main"

// Steps assembles the wizard steps of a form. A schema displayed as a
// wizard yields one step per top-level panel; anything else is one step.
func Steps(form *models.Form) ([]wizard.Step, error) {
	schema := form.Schema
	if len(schema) == 0 {
		schema = models.DefaultSchema
	}

	var doc struct {
		Display    string            `json:"display"`
		Components []json.RawMessage `json:"components"`
	}
	if err := jsonx.Unmarshal(schema, &doc); err != nil {
		return nil, fmt.Errorf("formio: parse schema: %w", err)
	}

	single := []wizard.Step{{
		ID:          MainStepID,
		Title:       form.Title,
		Description: form.Description,
		Schema:      schema,
	}}
	if doc.Display != "wizard" {
		return single, nil
	}

	var steps []wizard.Step
	for i, raw := range doc.Components {
		var panel struct {
			Type       string            `json:"type"`
			Key        string            `json:"key"`
			Title      string            `json:"title"`
			Label      string            `json:"label"`
			Components []json.RawMessage `json:"components"`
		}
		if err := jsonx.Unmarshal(raw, &panel); err != nil {
			return nil, fmt.Errorf("formio: parse page %d: %w", i, err)
		}
		if panel.Type != "panel" {
			continue
		}
		if panel.Components == nil {
			panel.Components = []json.RawMessage{}
		}
		page, err := jsonx.Marshal(map[string]any{"display": "form", "components": panel.Components})
		if err != nil {
			return nil, err
		}
		id := panel.Key
		if id == "" {
			id = fmt.Sprintf("page%d", len(steps)+1)
		}
		title := panel.Title
		if title == "" {
			title = panel.Label
		}
		steps = append(steps, wizard.Step{ID: id, Title: title, Schema: page})
	}
	if len(steps) == 0 {
		return single, nil
	}
	return steps, nil
}
