package wizard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	_, err := NewState(0)
	assert.ErrorIs(t, err, ErrNoSteps)

	st, err := NewState(3)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, PhaseInProgress, st.Phase)
	assert.Empty(t, st.Collected)
	assert.False(t, st.CanGoBack())
}

func TestCompleteStep_SingleStepFlattensPayload(t *testing.T) {
	st, _ := NewState(1)
	st, err := st.CompleteStep(map[string]any{"name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, PhaseSubmitting, st.Phase)

	if diff := cmp.Diff(map[string]any{"name": "Ann"}, st.Payload()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteStep_MultiStepAggregates(t *testing.T) {
	st, _ := NewState(3)
	var err error
	for i, data := range []map[string]any{{"a": 1}, {"b": 2}} {
		st, err = st.CompleteStep(data)
		require.NoError(t, err)
		assert.Equal(t, i+1, st.Current)
		assert.Equal(t, PhaseInProgress, st.Phase)
	}
	st, err = st.CompleteStep(map[string]any{"c": 3})
	require.NoError(t, err)
	assert.Equal(t, PhaseSubmitting, st.Phase)
	assert.Equal(t, 2, st.Current)

	want := []map[string]any{{"a": 1}, {"b": 2}, {"c": 3}}
	if diff := cmp.Diff(want, st.Payload()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteStep_RejectedWhileSubmittingOrComplete(t *testing.T) {
	st, _ := NewState(1)
	st, _ = st.CompleteStep(map[string]any{"x": 1})

	same, err := st.CompleteStep(map[string]any{"x": 2})
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, st, same)

	done, err := st.SubmitSucceeded()
	require.NoError(t, err)
	assert.Equal(t, PhaseComplete, done.Phase)

	_, err = done.CompleteStep(map[string]any{})
	assert.ErrorIs(t, err, ErrFinished)
	_, err = done.Back()
	assert.ErrorIs(t, err, ErrFinished)
}

func TestCompleteStep_DoesNotMutateInput(t *testing.T) {
	st, _ := NewState(2)
	first, _ := st.CompleteStep(map[string]any{"a": 1})
	back, _ := first.Back()
	_, _ = back.CompleteStep(map[string]any{"a": 9})

	assert.Equal(t, map[string]any{"a": 1}, first.Collected[0])
	assert.Equal(t, map[string]any{"a": 1}, back.Collected[0])
}

func TestBack_PreservesCollected(t *testing.T) {
	st, _ := NewState(3)
	st, _ = st.CompleteStep(map[string]any{"a": 1})
	st, _ = st.CompleteStep(map[string]any{"b": 2})

	st, err := st.Back()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Current)
	assert.Len(t, st.Collected, 2)

	st, err = st.Back()
	require.NoError(t, err)
	assert.Equal(t, 0, st.Current)

	_, err = st.Back()
	assert.ErrorIs(t, err, ErrNoPreviousStep)

	// Re-completing step 0 overwrites only entry 0.
	st, _ = st.CompleteStep(map[string]any{"a": 10})
	assert.Equal(t, []map[string]any{{"a": 10}, {"b": 2}}, st.Collected)
	assert.Equal(t, 1, st.Current)
}

func TestBack_NotAllowedWhileSubmitting(t *testing.T) {
	st, _ := NewState(2)
	st, _ = st.CompleteStep(map[string]any{})
	st, _ = st.CompleteStep(map[string]any{})
	_, err := st.Back()
	assert.ErrorIs(t, err, ErrBusy)
}

func TestSubmitFailed_KeepsDataAndAllowsRetry(t *testing.T) {
	st, _ := NewState(2)
	st, _ = st.CompleteStep(map[string]any{"a": 1})
	st, _ = st.CompleteStep(map[string]any{"b": 2})

	failed, err := st.SubmitFailed("Form not found")
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, failed.Phase)
	assert.Equal(t, "Form not found", failed.Reason)
	assert.Equal(t, 1, failed.Current)
	assert.Len(t, failed.Collected, 2)

	retry, err := failed.CompleteStep(map[string]any{"b": 3})
	require.NoError(t, err)
	assert.Equal(t, PhaseSubmitting, retry.Phase)
	assert.Empty(t, retry.Reason)
	assert.Equal(t, []map[string]any{{"a": 1}, {"b": 3}}, retry.Payload())

	back, err := failed.Back()
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, back.Phase)
	assert.Equal(t, 0, back.Current)
}

func TestSubmitOutcome_RequiresSubmitting(t *testing.T) {
	st, _ := NewState(1)
	_, err := st.SubmitSucceeded()
	assert.ErrorIs(t, err, ErrNotSubmitting)
	_, err = st.SubmitFailed("x")
	assert.ErrorIs(t, err, ErrNotSubmitting)
}

func TestCompleteStep_NilDataBecomesEmptyObject(t *testing.T) {
	st, _ := NewState(1)
	st, _ = st.CompleteStep(nil)
	assert.Equal(t, map[string]any{}, st.Payload())
}
