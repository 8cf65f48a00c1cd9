//go:build unix

package narration

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lumen/internal/generation"
)

// fakeSpeaker behaves like espeak: it lists one voice, appends the text it
// reads on stdin to $FAKE_TTS_LOG and "speaks" by sleeping $FAKE_TTS_DELAY
// seconds. exec keeps sleep as the spoken process so SIGSTOP reaches it.
const fakeSpeaker = `#!/bin/sh
if [ "$1" = "--voices" ]; then
  echo "Pty Language       Age/Gender VoiceName          File          Other Languages"
  echo " 5  en-us           --/M      English_(America)  gmw/en-US     (en 2)"
  exit 0
fi
cat >> "$FAKE_TTS_LOG"
echo "|" >> "$FAKE_TTS_LOG"
exec sleep "${FAKE_TTS_DELAY:-0.05}"
`

// newFakeEngine installs the fake speaker and returns an engine over it
// plus the path of the spoken-text log.
func newFakeEngine(t *testing.T, delay string) (*CommandEngine, string) {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "espeak")
	require.NoError(t, os.WriteFile(bin, []byte(fakeSpeaker), 0o755))

	spoken := filepath.Join(dir, "spoken.log")
	t.Setenv("FAKE_TTS_LOG", spoken)
	t.Setenv("FAKE_TTS_DELAY", delay)

	e := NewCommandEngine(bin)
	t.Cleanup(e.Close)
	return e, spoken
}

// recorder collects utterance callbacks as "start 0", "end 0", "error 0".
type recorder chan string

func (r recorder) utterance(i int, text string) Utterance {
	return Utterance{
		ID:      fmt.Sprint(i),
		Text:    text,
		OnStart: func() { r <- fmt.Sprintf("start %d", i) },
		OnEnd:   func() { r <- fmt.Sprintf("end %d", i) },
		OnError: func(error) { r <- fmt.Sprintf("error %d", i) },
	}
}

func (r recorder) next(t *testing.T) string {
	t.Helper()
	select {
	case ev := <-r:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a speech callback")
		return ""
	}
}

func (r recorder) quiet(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case ev := <-r:
		t.Fatalf("unexpected callback %q", ev)
	case <-time.After(d):
	}
}

func TestCommandEngine_Voices(t *testing.T) {
	e, _ := newFakeEngine(t, "0")

	voices, err := e.Voices()
	require.NoError(t, err)
	require.Len(t, voices, 1)
	assert.Equal(t, "English_(America)", voices[0].Name)
	assert.Equal(t, "en-us", voices[0].Lang)
}

func TestCommandEngine_SpeaksInQueueOrder(t *testing.T) {
	e, spoken := newFakeEngine(t, "0.05")
	rec := make(recorder, 16)

	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, e.Speak(rec.utterance(i, text)))
	}

	var got []string
	for range 6 {
		got = append(got, rec.next(t))
	}
	assert.Equal(t, []string{"start 0", "end 0", "start 1", "end 1", "start 2", "end 2"}, got)

	data, err := os.ReadFile(spoken)
	require.NoError(t, err)
	assert.Equal(t, "first|\nsecond|\nthird|\n", string(data))
}

func TestCommandEngine_CancelSilencesCurrentAndQueued(t *testing.T) {
	e, _ := newFakeEngine(t, "0.5")
	rec := make(recorder, 16)

	require.NoError(t, e.Speak(rec.utterance(0, "long")))
	require.NoError(t, e.Speak(rec.utterance(1, "queued")))
	require.Equal(t, "start 0", rec.next(t))

	e.Cancel()
	rec.quiet(t, 800*time.Millisecond)

	// The engine keeps working after a cancel.
	require.NoError(t, e.Speak(rec.utterance(2, "again")))
	assert.Equal(t, "start 2", rec.next(t))
	assert.Equal(t, "end 2", rec.next(t))
}

func TestCommandEngine_PauseHoldsUntilResume(t *testing.T) {
	e, _ := newFakeEngine(t, "0.3")
	rec := make(recorder, 16)

	require.NoError(t, e.Speak(rec.utterance(0, "held")))
	require.Equal(t, "start 0", rec.next(t))

	require.NoError(t, e.Pause())
	rec.quiet(t, 600*time.Millisecond)

	require.NoError(t, e.Resume())
	assert.Equal(t, "end 0", rec.next(t))
}

func TestCommandEngine_StartFailureReportsError(t *testing.T) {
	e := NewCommandEngine(filepath.Join(t.TempDir(), "missing-espeak"))
	t.Cleanup(e.Close)
	rec := make(recorder, 4)

	require.NoError(t, e.Speak(rec.utterance(0, "nothing")))
	assert.Equal(t, "error 0", rec.next(t))
	rec.quiet(t, 100*time.Millisecond)
}

func TestCommandEngine_CancelInvalidatesEpoch(t *testing.T) {
	e, _ := newFakeEngine(t, "0")

	e.mu.Lock()
	epoch := e.epoch
	e.mu.Unlock()
	assert.True(t, e.live(epoch))

	e.Cancel()
	assert.False(t, e.live(epoch), "callbacks taken before a cancel must not fire")

	e.Close()
	e.mu.Lock()
	epoch = e.epoch
	e.mu.Unlock()
	assert.False(t, e.live(epoch), "a closed engine fires nothing")
}

func TestCommandEngine_CloseRejectsSpeech(t *testing.T) {
	e, _ := newFakeEngine(t, "0")
	e.Close()

	assert.ErrorIs(t, e.Speak(Utterance{Text: "late"}), ErrUnavailable)
}

func TestNarrator_ReadsThroughCommandEngine(t *testing.T) {
	e, spoken := newFakeEngine(t, "0.2")

	n := NewNarrator(DefaultConfig())
	require.NoError(t, n.Acquire(e))
	t.Cleanup(n.Release)
	n.SetSections([]generation.NoteSection{
		{Heading: "Light", Content: "Plants capture light."},
		{Heading: "Sugar", Content: "They make sugar."},
	})

	await := func() EventMsg {
		t.Helper()
		msgs := make(chan EventMsg, 1)
		go func() {
			if ev, ok := n.Listen()().(EventMsg); ok {
				msgs <- ev
			}
		}()
		select {
		case ev := <-msgs:
			return ev
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for narration")
			return EventMsg{}
		}
	}

	require.NoError(t, n.Play())
	ev := await()
	require.True(t, n.Handle(ev))
	assert.Equal(t, EventStart, ev.Kind)
	assert.Equal(t, 0, n.Speaking())

	require.NoError(t, n.Pause())
	assert.Equal(t, Paused, n.State())
	require.NoError(t, n.Play())
	assert.Equal(t, Playing, n.State())

	var kinds []EventKind
	var indexes []int
	for n.State() != Stopped {
		ev := await()
		if n.Handle(ev) {
			kinds = append(kinds, ev.Kind)
			indexes = append(indexes, ev.Index)
		}
	}
	assert.Equal(t, []EventKind{EventEnd, EventStart, EventEnd}, kinds)
	assert.Equal(t, []int{0, 1, 1}, indexes)
	assert.Equal(t, -1, n.Speaking())

	data, err := os.ReadFile(spoken)
	require.NoError(t, err)
	assert.Equal(t, "Light.\n\nPlants capture light.|\nSugar.\n\nThey make sugar.|\n", string(data))
}
