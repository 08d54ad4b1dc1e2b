package wizard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// StepStatus is a step's progress indicator.
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepActive    StepStatus = "active"
	StepPending   StepStatus = "pending"
)

// Snapshot is a read-only view of a session for display.
type Snapshot struct {
	Phase          Phase
	Current        int
	Total          int
	StepID         string
	Title          string
	Description    string
	Progress       []StepStatus
	Error          string
	SuccessMessage string
	CanGoBack      bool
	SubmissionID   int64
}

// Config assembles a Session.
type Config struct {
	FormID         string
	Steps          []Step
	Renderer       Renderer
	Submitter      Submitter
	SuccessMessage string
	SubmitLabel    string
	Logger         *zap.Logger
}

// Session drives one wizard run. Widget events are serialised; the final
// submission runs without holding the session lock.
type Session struct {
	mu        sync.Mutex
	cfg       Config
	log       *zap.Logger
	state     State
	current   Instance
	errText   string
	receipt   *Receipt
	started   bool
	closed    bool
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	observers []func(Snapshot)
}

// NewSession validates cfg and returns an unstarted session.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Renderer == nil {
		return nil, errors.New("wizard: renderer is required")
	}
	if cfg.Submitter == nil {
		return nil, errors.New("wizard: submitter is required")
	}
	st, err := NewState(len(cfg.Steps))
	if err != nil {
		return nil, err
	}
	if cfg.SuccessMessage == "" {
		cfg.SuccessMessage = DefaultSuccessMessage
	}
	if cfg.SubmitLabel == "" {
		cfg.SubmitLabel = DefaultSubmitLabel
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		cfg:   cfg,
		log:   log.With(zap.String("form_id", cfg.FormID)),
		state: st,
		done:  make(chan struct{}),
	}, nil
}

// OnChange registers an observer called after every state change. Observers
// run outside the session lock.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Start mounts the first step. ctx bounds the final submission.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("wizard: session closed")
	}
	if s.started {
		s.mu.Unlock()
		return errors.New("wizard: session already started")
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	start, err := s.mountLocked()
	s.finishLocked(start)
	return err
}

// Back shows the previous step, keeping every collected entry.
func (s *Session) Back() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("wizard: session closed")
	}
	next, err := s.state.Back()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.errText = ""
	start, err := s.mountLocked()
	s.finishLocked(start)
	return err
}

// Close unmounts the active widget. Events and submission results arriving
// afterwards are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.destroyLocked()
	if s.cancel != nil {
		s.cancel()
	}
}

// State returns a copy of the current wizard state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Collected = append([]map[string]any(nil), s.state.Collected...)
	return st
}

// Snapshot returns the display view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Done is closed when the submission succeeds.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Receipt returns the accepted submission, or nil.
func (s *Session) Receipt() *Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipt
}

func (s *Session) snapshotLocked() Snapshot {
	st := s.state
	step := s.cfg.Steps[st.Current]
	snap := Snapshot{
		Phase:          st.Phase,
		Current:        st.Current,
		Total:          st.Total,
		StepID:         step.ID,
		Title:          step.Title,
		Description:    step.Description,
		Progress:       make([]StepStatus, st.Total),
		Error:          s.errText,
		SuccessMessage: s.cfg.SuccessMessage,
		CanGoBack:      st.CanGoBack(),
	}
	if st.Phase == PhaseFailed && snap.Error == "" {
		snap.Error = st.Reason
	}
	if s.receipt != nil {
		snap.SubmissionID = s.receipt.SubmissionID
	}
	for i := range snap.Progress {
		switch {
		case st.Phase == PhaseComplete || i < st.Current:
			snap.Progress[i] = StepCompleted
		case i == st.Current:
			snap.Progress[i] = StepActive
		default:
			snap.Progress[i] = StepPending
		}
	}
	return snap
}

// finishLocked releases the lock, notifies observers and then starts a
// freshly mounted widget, if any.
func (s *Session) finishLocked(start func()) {
	snap := s.snapshotLocked()
	observers := slices.Clone(s.observers)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(snap)
	}
	if start != nil {
		start()
	}
}

func (s *Session) destroyLocked() {
	if s.current != nil {
		s.current.Destroy()
		s.current = nil
	}
}

// mountLocked destroys the active widget and renders the current step.
// The returned func starts the new widget and must run after unlock.
func (s *Session) mountLocked() (func(), error) {
	s.destroyLocked()

	idx := s.state.Current
	step := s.cfg.Steps[idx]
	opts := RenderOptions{
		StepID:      step.ID,
		Title:       step.Title,
		Description: step.Description,
		SubmitLabel: "Next",
	}
	if s.state.IsLastStep() {
		opts.SubmitLabel = s.cfg.SubmitLabel
	}
	if idx < len(s.state.Collected) {
		opts.InitialData = s.state.Collected[idx]
	}
	if s.state.CanGoBack() {
		opts.Back = s.Back
	}

	inst, err := s.cfg.Renderer.Render(step.Schema, opts)
	if err != nil {
		s.errText = fmt.Sprintf("Failed to load step %q", step.Title)
		s.log.Error("Failed to render step", zap.String("step", step.ID), zap.Error(err))
		return nil, fmt.Errorf("wizard: render step %q: %w", step.ID, err)
	}
	inst.OnSubmit(func(data map[string]any) { s.handleSubmit(inst, data) })
	inst.OnError(func(err error) { s.handleWidgetError(inst, err) })
	s.current = inst

	if st, ok := inst.(Starter); ok {
		return st.Start, nil
	}
	return nil, nil
}

func (s *Session) handleWidgetError(inst Instance, err error) {
	s.mu.Lock()
	if s.closed || inst != s.current {
		s.mu.Unlock()
		return
	}
	s.errText = err.Error()
	s.log.Warn("Widget reported an error", zap.Int("step", s.state.Current), zap.Error(err))
	s.finishLocked(nil)
}

func (s *Session) handleSubmit(inst Instance, data map[string]any) {
	s.mu.Lock()
	if s.closed || inst != s.current {
		s.mu.Unlock()
		return
	}
	next, err := s.state.CompleteStep(data)
	if err != nil {
		s.mu.Unlock()
		return
	}
	s.state = next
	s.errText = ""

	if next.Phase != PhaseSubmitting {
		start, _ := s.mountLocked()
		s.finishLocked(start)
		return
	}

	// Final step: unmount so no further input reaches the session while
	// the submission is in flight.
	s.destroyLocked()
	payload := next.Payload()
	ctx := s.ctx
	s.finishLocked(nil)

	receipt, err := s.submit(ctx, payload)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if err != nil {
		reason := FailureReason(err)
		s.log.Warn("Submission failed", zap.String("reason", reason), zap.Error(err))
		s.state, _ = s.state.SubmitFailed(reason)
		start, _ := s.mountLocked()
		s.finishLocked(start)
		return
	}
	s.state, _ = s.state.SubmitSucceeded()
	s.receipt = receipt
	if receipt != nil {
		s.log.Info("Submission accepted", zap.Int64("submission_id", receipt.SubmissionID))
	}
	close(s.done)
	s.finishLocked(nil)
}

func (s *Session) submit(ctx context.Context, payload any) (receipt *Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("wizard: submitter panic: %v", r)
		}
	}()
	return s.cfg.Submitter.Submit(ctx, s.cfg.FormID, payload)
}
