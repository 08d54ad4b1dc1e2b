package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parisxmas/OxiDB/OxiForms/internal/formio"
	"github.com/parisxmas/OxiDB/OxiForms/internal/jsonx"
	"github.com/parisxmas/OxiDB/OxiForms/internal/wizard"
)

type stubDriver struct {
	mu        sync.Mutex
	inputs    []string
	selects   []int
	multi     [][]int
	confirms  []bool
	textAreas []string
	infos     []string
	inputCfgs []InputConfig
	selectErr error
}

func pop[T any](mu *sync.Mutex, q *[]T, what string) (T, error) {
	mu.Lock()
	defer mu.Unlock()
	var zero T
	if len(*q) == 0 {
		return zero, errors.New("no " + what + " scripted")
	}
	v := (*q)[0]
	*q = (*q)[1:]
	return v, nil
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.mu.Lock()
	s.inputCfgs = append(s.inputCfgs, cfg)
	s.mu.Unlock()
	return pop(&s.mu, &s.inputs, "input")
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	return pop(&s.mu, &s.inputs, "password")
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	return pop(&s.mu, &s.confirms, "confirm")
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectErr != nil {
		return 0, s.selectErr
	}
	return pop(&s.mu, &s.selects, "select")
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	return pop(&s.mu, &s.multi, "multiselect")
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	return pop(&s.mu, &s.textAreas, "textarea")
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.mu.Lock()
	s.infos = append(s.infos, msg)
	s.mu.Unlock()
	return nil
}

const stepSchema = `{"components":[
	{"type":"content","html":"<p>Tell us <b>about</b> you</p>"},
	{"type":"textfield","key":"name","label":"Name","validate":{"required":true}},
	{"type":"select","key":"dept","label":"Department","data":{"values":[{"label":"HR","value":"hr"},{"label":"Sales","value":"sales"}]}},
	{"type":"checkbox","key":"agree","label":"Agree"},
	{"type":"selectboxes","key":"topics","label":"Topics","values":[{"label":"Go","value":"go"},{"label":"Rust","value":"rust"}]},
	{"type":"textarea","key":"notes","label":"Notes"},
	{"type":"number","key":"age","label":"Age"},
	{"type":"button","key":"submit","action":"submit"}
]}`

func mount(t *testing.T, d Driver, opts wizard.RenderOptions) (*Renderer, wizard.Instance, chan map[string]any, chan error) {
	t.Helper()
	r := NewRenderer(context.Background(), d)
	inst, err := r.Render(json.RawMessage(stepSchema), opts)
	require.NoError(t, err)
	submitted := make(chan map[string]any, 1)
	failed := make(chan error, 1)
	inst.OnSubmit(func(data map[string]any) { submitted <- data })
	inst.OnError(func(err error) { failed <- err })
	return r, inst, submitted, failed
}

func TestWidget_CollectsAndSubmits(t *testing.T) {
	d := &stubDriver{
		inputs:    []string{"Ann", "42"},
		selects:   []int{1, 0},
		confirms:  []bool{true},
		multi:     [][]int{{0}},
		textAreas: []string{"hi"},
	}
	_, inst, submitted, _ := mount(t, d, wizard.RenderOptions{Title: "About you", SubmitLabel: "Next"})
	inst.(wizard.Starter).Start()

	select {
	case data := <-submitted:
		assert.Equal(t, map[string]any{
			"name":   "Ann",
			"dept":   "sales",
			"agree":  true,
			"topics": map[string]any{"go": true, "rust": false},
			"notes":  "hi",
			"age":    json.Number("42"),
		}, data)
	case <-time.After(time.Second):
		t.Fatal("no submit")
	}
	assert.Equal(t, []string{"About you", "Tell us about you"}, d.infos)
}

func TestWidget_NumberSubmittedAsJSON(t *testing.T) {
	d := &stubDriver{
		inputs:    []string{"Ann", ".5"},
		selects:   []int{0, 0},
		confirms:  []bool{false},
		multi:     [][]int{{}},
		textAreas: []string{""},
	}
	_, inst, submitted, _ := mount(t, d, wizard.RenderOptions{})
	inst.(wizard.Starter).Start()

	select {
	case data := <-submitted:
		assert.Equal(t, json.Number("0.5"), data["age"])
		raw, err := jsonx.Marshal(data)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"age":0.5`)
	case <-time.After(time.Second):
		t.Fatal("no submit")
	}
}

func TestNumberLiteral(t *testing.T) {
	for in, want := range map[string]json.Number{
		"42": "42", "-3.25": "-3.25", "1e3": "1e3",
		".5": "0.5", "5.": "5", "+5": "5", " 7 ": "7",
	} {
		got, err := numberLiteral(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		_, err = jsonx.Marshal(map[string]any{"n": got})
		assert.NoError(t, err, in)
	}
	for _, in := range []string{"NaN", "Inf", "-Infinity", "three", ""} {
		_, err := numberLiteral(in)
		assert.Error(t, err, in)
	}
}

func TestWidget_InitialDataPrefills(t *testing.T) {
	d := &stubDriver{
		inputs:    []string{"Bob", ""},
		selects:   []int{0, 0},
		confirms:  []bool{false},
		multi:     [][]int{nil},
		textAreas: []string{""},
	}
	_, inst, submitted, _ := mount(t, d, wizard.RenderOptions{InitialData: map[string]any{"name": "Ann"}})
	inst.(wizard.Starter).Start()
	<-submitted

	require.NotEmpty(t, d.inputCfgs)
	assert.Equal(t, "Ann", d.inputCfgs[0].Default)
	assert.Error(t, d.inputCfgs[0].Validator(""))
}

func TestWidget_Back(t *testing.T) {
	d := &stubDriver{
		inputs:    []string{"Ann", ""},
		selects:   []int{0, 1},
		confirms:  []bool{false},
		multi:     [][]int{nil},
		textAreas: []string{""},
	}
	backed := make(chan struct{})
	opts := wizard.RenderOptions{Back: func() error { close(backed); return nil }}
	_, inst, submitted, _ := mount(t, d, opts)
	inst.(wizard.Starter).Start()

	select {
	case <-backed:
	case <-submitted:
		t.Fatal("submitted instead of going back")
	case <-time.After(time.Second):
		t.Fatal("back not called")
	}
}

func TestWidget_CancelAborts(t *testing.T) {
	d := &stubDriver{
		inputs:    []string{"Ann", ""},
		selects:   []int{0, 1},
		confirms:  []bool{false},
		multi:     [][]int{nil},
		textAreas: []string{""},
	}
	r, inst, submitted, _ := mount(t, d, wizard.RenderOptions{})
	inst.(wizard.Starter).Start()

	select {
	case <-r.Aborted():
	case <-submitted:
		t.Fatal("submitted after cancel")
	case <-time.After(time.Second):
		t.Fatal("not aborted")
	}
}

func TestWidget_DriverErrorReported(t *testing.T) {
	d := &stubDriver{}
	_, inst, _, failed := mount(t, d, wizard.RenderOptions{})
	inst.(wizard.Starter).Start()

	select {
	case err := <-failed:
		assert.Contains(t, err.Error(), "no input scripted")
	case <-time.After(time.Second):
		t.Fatal("no error")
	}
}

func TestWidget_DestroyedWidgetStaysQuiet(t *testing.T) {
	d := &stubDriver{
		inputs:    []string{"Ann", ""},
		selects:   []int{0, 0},
		confirms:  []bool{false},
		multi:     [][]int{nil},
		textAreas: []string{""},
	}
	_, inst, submitted, failed := mount(t, d, wizard.RenderOptions{})
	inst.Destroy()
	inst.(wizard.Starter).Start()

	select {
	case <-submitted:
		t.Fatal("destroyed widget submitted")
	case <-failed:
		t.Fatal("destroyed widget reported an error")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestValidator(t *testing.T) {
	v := validator(formio.Component{
		Type: "email", Key: "email", Label: "Email",
		Validate: formio.Validate{Required: true, MinLength: 3, Pattern: `^[a-z@.]+$`},
	})
	assert.EqualError(t, v(""), "Email is required")
	assert.Error(t, v("a@"))
	assert.Error(t, v("ABC@x.io"))
	assert.Error(t, v("abcd"))
	assert.NoError(t, v("a@x.io"))

	custom := validator(formio.Component{Key: "n", Validate: formio.Validate{Required: true, CustomMessage: "Name please"}})
	assert.EqualError(t, custom(""), "Name please")

	num := numberValidator(formio.Component{Key: "age"})
	assert.NoError(t, num(""))
	assert.NoError(t, num("3.5"))
	assert.Error(t, num("three"))
	assert.Error(t, num("NaN"))
	assert.Error(t, num("Inf"))
	assert.NoError(t, num(".5"))
}

func TestRender_InvalidSchema(t *testing.T) {
	r := NewRenderer(context.Background(), &stubDriver{})
	_, err := r.Render(json.RawMessage(`[`), wizard.RenderOptions{})
	assert.Error(t, err)
}
