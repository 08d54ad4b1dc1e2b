package wizard

import "encoding/json"

// Step is one page of a wizard.
type Step struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"schema"`
}

// RenderOptions configures one widget mount.
type RenderOptions struct {
	StepID      string
	Title       string
	Description string
	// InitialData pre-fills the widget when a step is shown again.
	InitialData map[string]any
	// SubmitLabel is the text of the widget's submit action.
	SubmitLabel string
	// Back navigates to the previous step. Nil on the first step.
	Back func() error
}

// Renderer mounts a schema as an interactive widget.
type Renderer interface {
	Render(schema json.RawMessage, opts RenderOptions) (Instance, error)
}

// Instance is a mounted widget. Handlers may be invoked from any goroutine,
// at most once per user action. Destroy unmounts the widget; after Destroy
// the instance must not invoke handlers, although a session ignores stale
// events anyway.
type Instance interface {
	// OnSubmit registers the handler for a completed, validated step.
	OnSubmit(func(data map[string]any))
	// OnError registers the handler for a widget-level failure.
	OnError(func(err error))
	Destroy()
}

// Starter is implemented by widgets that need an explicit start once their
// handlers are registered.
type Starter interface {
	Start()
}
