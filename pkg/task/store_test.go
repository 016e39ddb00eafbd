package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospilot/ospilot/pkg/action"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	tk := New("open the calculator", 30)
	tk.PostMessage("assistant", "Starting task 'open the calculator'")
	tk.RecordStep(Step{
		Action:  action.New(action.Click, map[string]interface{}{"x": 1, "y": 2, "button": "left"}),
		Thought: "clicking the icon",
		Usage:   TokenUsage{In: 120, Out: 40},
	})
	require.NoError(t, store.Save(tk))

	loaded, err := store.Load(tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tk.Description, loaded.Description)
	assert.Equal(t, StatusPending, loaded.Status)
	require.Len(t, loaded.Steps, 1)
	assert.Equal(t, action.Click, loaded.Steps[0].Action.Name)
	assert.Equal(t, 120, loaded.Steps[0].Usage.In)
	require.Len(t, loaded.Messages, 1)
}

func TestStoreLoadMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load("nope")
	assert.Error(t, err)
}

func TestStoreCancelAndRefresh(t *testing.T) {
	store := newTestStore(t)

	tk := New("rename a file", 10)
	tk.Status = StatusRunning
	require.NoError(t, store.Save(tk))

	require.NoError(t, store.Cancel(tk.ID))

	// The running loop holds its own copy; Refresh folds the external
	// cancellation in.
	assert.Equal(t, StatusRunning, tk.Status)
	require.NoError(t, store.Refresh(tk))
	assert.Equal(t, StatusCanceling, tk.Status)
}

func TestStoreCancelTerminalTask(t *testing.T) {
	store := newTestStore(t)

	tk := New("done already", 10)
	tk.Status = StatusFinished
	require.NoError(t, store.Save(tk))

	err := store.Cancel(tk.ID)
	assert.Error(t, err)
}

func TestStoreRefreshKeepsLoopState(t *testing.T) {
	store := newTestStore(t)

	tk := New("keep going", 10)
	tk.Status = StatusRunning
	require.NoError(t, store.Save(tk))

	// No cancellation on disk: refresh must not clobber the loop's state.
	tk.RecordStep(Step{Action: action.New(action.Wait, map[string]interface{}{"seconds": 1})})
	require.NoError(t, store.Refresh(tk))
	assert.Equal(t, StatusRunning, tk.Status)
	assert.Len(t, tk.Steps, 1)
}

func TestStoreList(t *testing.T) {
	store := newTestStore(t)

	first := New("first", 5)
	second := New("second", 5)
	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	tasks, err := store.List()
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestEnsureThreadIsIdempotent(t *testing.T) {
	tk := New("threads", 5)
	tk.EnsureThread("debug")
	tk.EnsureThread("debug")
	assert.Equal(t, []string{DefaultThread, "debug"}, tk.Threads)
}

func TestThreadMessages(t *testing.T) {
	tk := New("threads", 5)
	tk.PostMessage("assistant", "hello")
	tk.PostMessageThread("assistant", "noisy detail", "debug")

	assert.Len(t, tk.ThreadMessages(DefaultThread), 1)
	assert.Len(t, tk.ThreadMessages("debug"), 1)
	assert.Empty(t, tk.ThreadMessages("missing"))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusFinished.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCanceled.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.False(t, StatusCanceling.Terminal())
}
