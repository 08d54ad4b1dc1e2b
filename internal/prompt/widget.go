// Package prompt renders Form.io steps as interactive terminal prompts.
package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/parisxmas/OxiDB/OxiForms/internal/formio"
	"github.com/parisxmas/OxiDB/OxiForms/internal/wizard"
)

const (
	actionBack   = "Back"
	actionCancel = "Cancel"
)

// Renderer mounts wizard steps on a terminal Driver.
type Renderer struct {
	ctx     context.Context
	driver  Driver
	strip   *bluemonday.Policy
	abortMu sync.Once
	aborted chan struct{}
}

// NewRenderer returns a Renderer whose widgets stop prompting when ctx ends.
func NewRenderer(ctx context.Context, driver Driver) *Renderer {
	return &Renderer{
		ctx:     ctx,
		driver:  driver,
		strip:   bluemonday.StrictPolicy(),
		aborted: make(chan struct{}),
	}
}

// Aborted is closed once the user cancels the form.
func (r *Renderer) Aborted() <-chan struct{} {
	return r.aborted
}

func (r *Renderer) abort() {
	r.abortMu.Do(func() { close(r.aborted) })
}

func (r *Renderer) Render(schema json.RawMessage, opts wizard.RenderOptions) (wizard.Instance, error) {
	s, err := formio.Parse(schema)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(r.ctx)
	return &widget{
		r:      r,
		ctx:    ctx,
		cancel: cancel,
		fields: s.Fields(),
		opts:   opts,
	}, nil
}

type widget struct {
	r      *Renderer
	ctx    context.Context
	cancel context.CancelFunc
	fields []formio.Component
	opts   wizard.RenderOptions

	mu        sync.Mutex
	onSubmit  func(map[string]any)
	onError   func(error)
	destroyed bool
}

func (w *widget) OnSubmit(fn func(map[string]any)) {
	w.mu.Lock()
	w.onSubmit = fn
	w.mu.Unlock()
}

func (w *widget) OnError(fn func(error)) {
	w.mu.Lock()
	w.onError = fn
	w.mu.Unlock()
}

func (w *widget) Destroy() {
	w.mu.Lock()
	w.destroyed = true
	w.mu.Unlock()
	w.cancel()
}

// Start runs the prompts on their own goroutine.
func (w *widget) Start() {
	go w.run()
}

func (w *widget) alive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.destroyed
}

func (w *widget) run() {
	data, action, err := w.collect()
	if !w.alive() {
		return
	}
	switch {
	case errors.Is(err, ErrAborted) || action == actionCancel:
		w.r.abort()
	case err != nil:
		w.mu.Lock()
		fn := w.onError
		w.mu.Unlock()
		if fn != nil {
			fn(err)
		}
	case action == actionBack:
		if w.opts.Back != nil {
			_ = w.opts.Back()
		}
	default:
		w.mu.Lock()
		fn := w.onSubmit
		w.mu.Unlock()
		if fn != nil {
			fn(data)
		}
	}
}

// collect asks every field, then the step action.
func (w *widget) collect() (map[string]any, string, error) {
	d := w.r.driver
	header := w.opts.Title
	if w.opts.Description != "" {
		header += "\n" + w.opts.Description
	}
	if header != "" {
		if err := d.Info(w.ctx, header); err != nil {
			return nil, "", err
		}
	}

	data := map[string]any{}
	for _, f := range w.fields {
		if !w.alive() {
			return nil, "", ErrDestroyed
		}
		if f.Type == "content" || f.Type == "htmlelement" {
			text := strings.TrimSpace(html.UnescapeString(w.r.strip.Sanitize(f.HTML)))
			if text != "" {
				if err := d.Info(w.ctx, text); err != nil {
					return nil, "", err
				}
			}
			continue
		}
		v, err := w.ask(f, w.initial(f))
		if err != nil {
			return nil, "", err
		}
		data[f.Key] = v
	}

	actions := []string{w.submitLabel()}
	if w.opts.Back != nil {
		actions = append(actions, actionBack)
	}
	actions = append(actions, actionCancel)
	idx, err := d.Select(w.ctx, SelectConfig{Message: "Continue?", Options: actions})
	if err != nil {
		return nil, "", err
	}
	if idx < 0 || idx >= len(actions) {
		return nil, "", fmt.Errorf("prompt: unknown action %d", idx)
	}
	return data, actions[idx], nil
}

func (w *widget) submitLabel() string {
	if w.opts.SubmitLabel != "" {
		return w.opts.SubmitLabel
	}
	return wizard.DefaultSubmitLabel
}

func (w *widget) initial(f formio.Component) any {
	if v, ok := w.opts.InitialData[f.Key]; ok {
		return v
	}
	return f.DefaultValue
}

func (w *widget) ask(f formio.Component, initial any) (any, error) {
	d := w.r.driver
	msg := f.Text()
	help := f.Tooltip
	if help == "" {
		help = f.Description
	}

	switch f.Type {
	case "checkbox":
		def, _ := initial.(bool)
		return d.Confirm(w.ctx, ConfirmConfig{Message: msg, Default: def, Help: help})

	case "select", "radio":
		opts := f.Options()
		labels := optionLabels(opts)
		def := optionIndex(opts, initial)
		idx, err := d.Select(w.ctx, SelectConfig{Message: msg, Options: labels, DefaultIndex: def, Help: help})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(opts) {
			return "", nil
		}
		return opts[idx].Value, nil

	case "selectboxes":
		opts := f.Options()
		var defaults []int
		if m, ok := initial.(map[string]any); ok {
			for i, o := range opts {
				if sel, _ := m[fmt.Sprint(o.Value)].(bool); sel {
					defaults = append(defaults, i)
				}
			}
		}
		picked, err := d.MultiSelect(w.ctx, SelectConfig{Message: msg, Options: optionLabels(opts), Defaults: defaults, Help: help})
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(opts))
		for _, o := range opts {
			out[fmt.Sprint(o.Value)] = false
		}
		for _, i := range picked {
			out[fmt.Sprint(opts[i].Value)] = true
		}
		return out, nil

	case "textarea":
		return d.TextArea(w.ctx, TextAreaConfig{Message: msg, Default: stringOf(initial), Help: help})

	case "password":
		return d.Password(w.ctx, InputConfig{Message: msg, Help: help, Validator: validator(f)})

	case "number", "currency":
		s, err := d.Input(w.ctx, InputConfig{Message: msg, Default: stringOf(initial), Help: help, Validator: numberValidator(f)})
		if err != nil || s == "" {
			return nil, err
		}
		return numberLiteral(s)
	}

	return d.Input(w.ctx, InputConfig{Message: msg, Default: stringOf(initial), Help: help, Validator: validator(f)})
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	return fmt.Sprint(v)
}

func optionLabels(opts []formio.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
		if out[i] == "" {
			out[i] = fmt.Sprint(o.Value)
		}
	}
	return out
}

func optionIndex(opts []formio.Option, v any) int {
	if v == nil {
		return -1
	}
	want := fmt.Sprint(v)
	for i, o := range opts {
		if fmt.Sprint(o.Value) == want {
			return i
		}
	}
	return -1
}

// validator enforces the component's required, length and pattern rules,
// and a basic shape check for email components.
func validator(f formio.Component) func(string) error {
	var pattern *regexp.Regexp
	if f.Validate.Pattern != "" {
		pattern, _ = regexp.Compile(f.Validate.Pattern)
	}
	fail := func(def string) error {
		if f.Validate.CustomMessage != "" {
			return errors.New(f.Validate.CustomMessage)
		}
		return errors.New(def)
	}
	return func(s string) error {
		if s == "" {
			if f.IsRequired() {
				return fail(f.Text() + " is required")
			}
			return nil
		}
		n := len([]rune(s))
		if f.Validate.MinLength > 0 && n < f.Validate.MinLength {
			return fail(fmt.Sprintf("%s must be at least %d characters", f.Text(), f.Validate.MinLength))
		}
		if f.Validate.MaxLength > 0 && n > f.Validate.MaxLength {
			return fail(fmt.Sprintf("%s must be at most %d characters", f.Text(), f.Validate.MaxLength))
		}
		if pattern != nil && !pattern.MatchString(s) {
			return fail(f.Text() + " has an invalid format")
		}
		if f.Type == "email" && !strings.Contains(s, "@") {
			return fail(f.Text() + " must be a valid email")
		}
		return nil
	}
}

func numberValidator(f formio.Component) func(string) error {
	base := validator(f)
	return func(s string) error {
		if err := base(s); err != nil || s == "" {
			return err
		}
		if _, err := numberLiteral(s); err != nil {
			return fmt.Errorf("%s must be a number", f.Text())
		}
		return nil
	}
}

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// numberLiteral returns s as a JSON number. Input Go can parse but JSON
// cannot carry, like ".5" or "+5", is rewritten; NaN and infinities are
// rejected.
func numberLiteral(s string) (json.Number, error) {
	s = strings.TrimSpace(s)
	if jsonNumber.MatchString(s) {
		return json.Number(s), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("prompt: %q is not a finite number", s)
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), nil
}
