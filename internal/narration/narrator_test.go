package narration

import (
	"errors"
	"testing"

	"github.com/abhisek/lumen/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSections() []generation.NoteSection {
	return []generation.NoteSection{
		{Heading: "Light", Content: "Plants capture light."},
		{Heading: "Water", Content: "Roots draw up water."},
		{Heading: "Sugar", Content: "Leaves make glucose."},
	}
}

func newTestNarrator(t *testing.T) (*Narrator, *MockEngine) {
	t.Helper()
	engine := NewMockEngine(Voice{Name: "English_(America)", Lang: "en-us", LocalService: true, Default: true})
	n := NewNarrator(DefaultConfig())
	require.NoError(t, n.Acquire(engine))
	t.Cleanup(n.Release)
	n.SetSections(testSections())
	return n, engine
}

// next delivers the next engine event through Listen, the way the UI does.
func next(t *testing.T, n *Narrator) EventMsg {
	t.Helper()
	cmd := n.Listen()
	require.NotNil(t, cmd)
	msg, ok := cmd().(EventMsg)
	require.True(t, ok, "expected EventMsg")
	return msg
}

func TestPlay_QueuesOneUtterancePerSectionInOrder(t *testing.T) {
	n, engine := newTestNarrator(t)

	require.NoError(t, n.Play())
	assert.Equal(t, Playing, n.State())

	queue := engine.Queue()
	require.Len(t, queue, 3)
	assert.Equal(t, "Light.\n\nPlants capture light.", queue[0].Text)
	assert.Equal(t, "Water.\n\nRoots draw up water.", queue[1].Text)
	assert.Equal(t, "Sugar.\n\nLeaves make glucose.", queue[2].Text)
	assert.Equal(t, "en-us", queue[0].Voice.Lang)
	assert.NotEqual(t, queue[0].ID, queue[1].ID)
}

func TestPlay_TracksSpeakingSectionUntilFinalEnd(t *testing.T) {
	n, engine := newTestNarrator(t)
	require.NoError(t, n.Play())

	engine.Start(0)
	assert.True(t, n.Handle(next(t, n)))
	assert.Equal(t, 0, n.Speaking())

	engine.End(0)
	n.Handle(next(t, n))
	engine.Start(1)
	n.Handle(next(t, n))
	assert.Equal(t, 1, n.Speaking())
	assert.Equal(t, Playing, n.State())

	engine.End(1)
	n.Handle(next(t, n))
	engine.Start(2)
	n.Handle(next(t, n))
	engine.End(2)
	n.Handle(next(t, n))

	assert.Equal(t, Stopped, n.State())
	assert.Equal(t, -1, n.Speaking())
}

func TestPauseResume(t *testing.T) {
	n, engine := newTestNarrator(t)
	require.NoError(t, n.Play())

	require.NoError(t, n.Toggle())
	assert.Equal(t, Paused, n.State())
	assert.True(t, engine.Paused())
	assert.Len(t, engine.Queue(), 3, "pause keeps the queue")

	require.NoError(t, n.Toggle())
	assert.Equal(t, Playing, n.State())
	assert.False(t, engine.Paused())
	assert.Len(t, engine.Spoken(), 3, "resume does not re-queue")
}

func TestPause_Unsupported(t *testing.T) {
	n, engine := newTestNarrator(t)
	engine.PauseErr = ErrPauseUnsupported
	require.NoError(t, n.Play())

	assert.ErrorIs(t, n.Pause(), ErrPauseUnsupported)
	assert.Equal(t, Playing, n.State())
}

func TestStop_ClearsSpeakingIndicator(t *testing.T) {
	n, engine := newTestNarrator(t)
	require.NoError(t, n.Play())
	engine.Start(0)
	n.Handle(next(t, n))
	require.Equal(t, 0, n.Speaking())

	cancels := engine.Cancels()
	n.Stop()

	assert.Equal(t, Stopped, n.State())
	assert.Equal(t, -1, n.Speaking())
	assert.Equal(t, cancels+1, engine.Cancels())
	assert.Empty(t, engine.Queue())
}

func TestStop_FromPaused(t *testing.T) {
	n, _ := newTestNarrator(t)
	require.NoError(t, n.Play())
	require.NoError(t, n.Pause())

	n.Stop()
	assert.Equal(t, Stopped, n.State())
}

func TestUtteranceError_ResetsToStopped(t *testing.T) {
	n, engine := newTestNarrator(t)
	require.NoError(t, n.Play())
	engine.Start(0)
	n.Handle(next(t, n))

	engine.Fail(0, errors.New("audio device busy"))
	n.Handle(next(t, n))

	assert.Equal(t, Stopped, n.State())
	assert.Equal(t, -1, n.Speaking())
	assert.EqualError(t, n.Err(), "audio device busy")
	assert.True(t, n.Available(), "a playback error does not disable narration")
}

func TestSetSections_WhilePlayingCancelsFirst(t *testing.T) {
	n, engine := newTestNarrator(t)
	require.NoError(t, n.Play())
	engine.Start(0)
	stale := next(t, n)

	cancels := engine.Cancels()
	n.SetSections([]generation.NoteSection{{Heading: "New", Content: "Fresh notes."}})

	assert.Equal(t, cancels+1, engine.Cancels())
	assert.Empty(t, engine.Queue())
	assert.Equal(t, Stopped, n.State())

	// Events from the old queue are ignored.
	assert.False(t, n.Handle(stale))
	assert.Equal(t, -1, n.Speaking())

	require.NoError(t, n.Play())
	queue := engine.Queue()
	require.Len(t, queue, 1)
	assert.Equal(t, "New.\n\nFresh notes.", queue[0].Text)
}

func TestPlay_CancelsBeforeQueueing(t *testing.T) {
	n, engine := newTestNarrator(t)
	before := engine.Cancels()

	require.NoError(t, n.Play())
	assert.Equal(t, before+1, engine.Cancels())
}

func TestRelease(t *testing.T) {
	engine := NewMockEngine(Voice{Name: "v"})
	n := NewNarrator(DefaultConfig())
	require.NoError(t, n.Acquire(engine))
	n.SetSections(testSections())
	require.NoError(t, n.Play())
	first := engine.Queue()[0]

	listen := n.Listen()
	n.Release()

	assert.Nil(t, listen(), "pending listen returns once released")
	assert.Nil(t, n.Listen())
	assert.False(t, n.Available())
	assert.Equal(t, Stopped, n.State())
	assert.Empty(t, engine.Queue())

	// Late callbacks from the released engine do not block.
	first.OnStart()
	first.OnEnd()
}

func TestAcquire_UnavailableEngine(t *testing.T) {
	n := NewNarrator(DefaultConfig())
	err := n.Acquire(NoopEngine{})

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, n.Available())
	n.SetSections(testSections())
	assert.ErrorIs(t, n.Play(), ErrUnavailable)
	assert.NoError(t, n.Pause())
	n.Stop()
	assert.Equal(t, Stopped, n.State())
}

func TestPlay_NoSectionsIsNoop(t *testing.T) {
	engine := NewMockEngine()
	n := NewNarrator(DefaultConfig())
	require.NoError(t, n.Acquire(engine))
	defer n.Release()

	require.NoError(t, n.Play())
	assert.Equal(t, Stopped, n.State())
	assert.Empty(t, engine.Spoken())
}

func TestPlay_SpeakErrorLeavesStopped(t *testing.T) {
	n, engine := newTestNarrator(t)
	engine.SpeakErr = errors.New("queue full")

	assert.Error(t, n.Play())
	assert.Equal(t, Stopped, n.State())
}
