package wizard

import "errors"

// Phase is the coarse position of a wizard run.
type Phase int

const (
	// PhaseInProgress means a step widget is awaiting input.
	PhaseInProgress Phase = iota
	// PhaseSubmitting means the final submission is in flight.
	PhaseSubmitting
	// PhaseComplete is terminal.
	PhaseComplete
	// PhaseFailed means the final submission failed; the last step is
	// shown again with the failure reason.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in_progress"
	case PhaseSubmitting:
		return "submitting"
	case PhaseComplete:
		return "complete"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

var (
	ErrNoSteps        = errors.New("wizard: at least one step is required")
	ErrBusy           = errors.New("wizard: submission in progress")
	ErrFinished       = errors.New("wizard: already complete")
	ErrNoPreviousStep = errors.New("wizard: no previous step")
	ErrNotSubmitting  = errors.New("wizard: no submission in flight")
)

// State is the per-session wizard state. Treat it as a value: the reducer
// functions never modify their input.
type State struct {
	// Current is the index of the step being shown.
	Current int
	// Total is the number of steps.
	Total int
	// Collected holds the data emitted by each completed step, in step
	// order. Entry i exists once step i has completed at least once.
	Collected []map[string]any
	Phase     Phase
	// Reason describes the last failed submission.
	Reason string
}

// NewState starts a wizard of total steps at step 0.
func NewState(total int) (State, error) {
	if total < 1 {
		return State{}, ErrNoSteps
	}
	return State{Total: total, Phase: PhaseInProgress}, nil
}

// IsLastStep reports whether the current step is the final one.
func (s State) IsLastStep() bool {
	return s.Current == s.Total-1
}

// CanGoBack reports whether Back would succeed.
func (s State) CanGoBack() bool {
	return s.Total > 1 && s.Current > 0 &&
		(s.Phase == PhaseInProgress || s.Phase == PhaseFailed)
}

// CompleteStep records the data emitted by the current step. Intermediate
// steps advance to the next step; the last step moves to PhaseSubmitting,
// after which the caller performs exactly one submission of Payload.
func (s State) CompleteStep(data map[string]any) (State, error) {
	switch s.Phase {
	case PhaseSubmitting:
		return s, ErrBusy
	case PhaseComplete:
		return s, ErrFinished
	}
	if data == nil {
		data = map[string]any{}
	}

	next := s
	next.Collected = make([]map[string]any, len(s.Collected), max(len(s.Collected), s.Current+1))
	copy(next.Collected, s.Collected)
	if s.Current < len(next.Collected) {
		next.Collected[s.Current] = data
	} else {
		next.Collected = append(next.Collected, data)
	}
	next.Reason = ""

	if s.IsLastStep() {
		next.Phase = PhaseSubmitting
		return next, nil
	}
	next.Phase = PhaseInProgress
	next.Current = s.Current + 1
	return next, nil
}

// Back moves to the previous step without discarding collected data.
func (s State) Back() (State, error) {
	switch s.Phase {
	case PhaseSubmitting:
		return s, ErrBusy
	case PhaseComplete:
		return s, ErrFinished
	}
	if !s.CanGoBack() {
		return s, ErrNoPreviousStep
	}
	next := s
	next.Current--
	next.Phase = PhaseInProgress
	next.Reason = ""
	return next, nil
}

// SubmitSucceeded completes the wizard.
func (s State) SubmitSucceeded() (State, error) {
	if s.Phase != PhaseSubmitting {
		return s, ErrNotSubmitting
	}
	next := s
	next.Phase = PhaseComplete
	return next, nil
}

// SubmitFailed returns to the last step with every collected entry intact.
func (s State) SubmitFailed(reason string) (State, error) {
	if s.Phase != PhaseSubmitting {
		return s, ErrNotSubmitting
	}
	next := s
	next.Phase = PhaseFailed
	next.Reason = reason
	return next, nil
}

// Payload builds the submission data: the single step's object for a
// one-step wizard, otherwise the ordered list of every step's object.
func (s State) Payload() any {
	if s.Total == 1 && len(s.Collected) > 0 {
		return s.Collected[0]
	}
	out := make([]map[string]any, len(s.Collected))
	copy(out, s.Collected)
	return out
}
