// Package formio reads the parts of a Form.io schema the terminal tooling
// needs: the display mode, the input components and their options.
package formio

import (
	"encoding/json"
	"fmt"

	"github.com/parisxmas/OxiDB/OxiForms/internal/jsonx"
)

// Component is one Form.io component. Unknown keys are ignored.
type Component struct {
	Type         string      `json:"type"`
	Key          string      `json:"key"`
	Label        string      `json:"label"`
	Title        string      `json:"title"`
	Placeholder  string      `json:"placeholder"`
	Description  string      `json:"description"`
	Tooltip      string      `json:"tooltip"`
	HTML         string      `json:"html"`
	Input        bool        `json:"input"`
	Required     bool        `json:"required"`
	Hidden       bool        `json:"hidden"`
	DefaultValue any         `json:"defaultValue"`
	Validate     Validate    `json:"validate"`
	Values       []Option    `json:"values"`
	Data         OptionData  `json:"data"`
	Components   []Component `json:"components"`
	Columns      []Column    `json:"columns"`
}

// Validate holds the client-side validation rules of a component.
type Validate struct {
	Required      bool   `json:"required"`
	MinLength     int    `json:"minLength"`
	MaxLength     int    `json:"maxLength"`
	Pattern       string `json:"pattern"`
	CustomMessage string `json:"customMessage"`
}

type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

type OptionData struct {
	Values []Option `json:"values"`
}

type Column struct {
	Components []Component `json:"components"`
}

// Schema is a parsed Form.io form.
type Schema struct {
	Display    string      `json:"display"`
	Components []Component `json:"components"`
}

// Parse decodes a Form.io schema.
func Parse(raw json.RawMessage) (*Schema, error) {
	var s Schema
	if err := jsonx.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("formio: parse schema: %w", err)
	}
	if s.Display == "" {
		s.Display = "form"
	}
	return &s, nil
}

// IsRequired reports whether the component must be filled in.
func (c Component) IsRequired() bool {
	return c.Required || c.Validate.Required
}

// Options returns the choices of select, radio and selectboxes components.
func (c Component) Options() []Option {
	if len(c.Values) > 0 {
		return c.Values
	}
	return c.Data.Values
}

// Text returns the label, falling back to the key.
func (c Component) Text() string {
	if c.Label != "" {
		return c.Label
	}
	if c.Title != "" {
		return c.Title
	}
	return c.Key
}

// layoutTypes only group other components.
var layoutTypes = map[string]bool{
	"panel": true, "fieldset": true, "well": true, "columns": true,
	"table": true, "tabs": true,
}

// Fields flattens the schema into the components a user interacts with,
// in display order. Layout wrappers are descended into; buttons and hidden
// components are dropped. Content components are kept for display.
func (s *Schema) Fields() []Component {
	var out []Component
	var walk func([]Component)
	walk = func(list []Component) {
		for _, c := range list {
			switch {
			case c.Type == "button", c.Hidden:
				continue
			case c.Type == "columns":
				for _, col := range c.Columns {
					walk(col.Components)
				}
			case layoutTypes[c.Type]:
				walk(c.Components)
			case c.Type == "content" || c.Type == "htmlelement":
				out = append(out, c)
			case c.Key != "":
				out = append(out, c)
			}
		}
	}
	walk(s.Components)
	return out
}
