package narration

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// NewEngine returns a CommandEngine for cfg.Command, or NoopEngine when the
// binary is not configured or not installed.
func NewEngine(cfg Config) Engine {
	if cfg.Command == "" {
		return NoopEngine{}
	}
	path, err := exec.LookPath(cfg.Command)
	if err != nil {
		return NoopEngine{}
	}
	return NewCommandEngine(path)
}

// CommandEngine speaks through an espeak-compatible binary, one process per
// utterance. Pause and resume suspend the running process.
type CommandEngine struct {
	bin string

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Utterance
	current *exec.Cmd
	paused  bool
	epoch   uint64
	started bool
	closed  bool
}

// NewCommandEngine creates an engine around the binary at path.
func NewCommandEngine(path string) *CommandEngine {
	e := &CommandEngine{bin: path}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Voices lists installed voices by parsing `<bin> --voices`.
func (e *CommandEngine) Voices() ([]Voice, error) {
	out, err := exec.Command(e.bin, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	return parseVoices(out), nil
}

func (e *CommandEngine) Speak(u Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrUnavailable
	}
	if !e.started {
		e.started = true
		go e.run()
	}
	e.queue = append(e.queue, u)
	e.cond.Broadcast()
	return nil
}

func (e *CommandEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil && e.current.Process != nil {
		if err := suspend(e.current.Process); err != nil {
			return err
		}
	}
	e.paused = true
	return nil
}

func (e *CommandEngine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil && e.current.Process != nil {
		if err := resume(e.current.Process); err != nil {
			return err
		}
	}
	e.paused = false
	e.cond.Broadcast()
	return nil
}

func (e *CommandEngine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

func (e *CommandEngine) cancelLocked() {
	e.queue = nil
	e.epoch++
	if e.current != nil && e.current.Process != nil {
		_ = e.current.Process.Kill()
	}
	e.paused = false
	e.cond.Broadcast()
}

// Close cancels speech and stops the worker goroutine.
func (e *CommandEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.cancelLocked()
}

func (e *CommandEngine) run() {
	for {
		e.mu.Lock()
		for (len(e.queue) == 0 || e.paused) && !e.closed {
			e.cond.Wait()
		}
		if e.closed {
			e.mu.Unlock()
			return
		}

		u := e.queue[0]
		e.queue = e.queue[1:]
		epoch := e.epoch

		cmd := exec.Command(e.bin, speakArgs(u)...)
		cmd.Stdin = strings.NewReader(u.Text)
		if err := cmd.Start(); err != nil {
			e.mu.Unlock()
			if e.live(epoch) {
				u.failed(fmt.Errorf("start %s: %w", e.bin, err))
			}
			continue
		}
		e.current = cmd
		e.mu.Unlock()

		if e.live(epoch) {
			u.started()
		}
		err := cmd.Wait()

		e.mu.Lock()
		e.current = nil
		e.mu.Unlock()

		switch {
		case !e.live(epoch):
		case err != nil:
			u.failed(fmt.Errorf("%s: %w", e.bin, err))
		default:
			u.ended()
		}
	}
}

// live reports whether no Cancel happened since epoch was taken.
func (e *CommandEngine) live(epoch uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.epoch == epoch && !e.closed
}

// speakArgs maps an utterance to espeak flags: -s words per minute around
// a 175 baseline and -p pitch on a 0-99 scale around 50. Text comes from
// stdin.
func speakArgs(u Utterance) []string {
	var args []string
	if u.Voice.Lang != "" {
		args = append(args, "-v", u.Voice.Lang)
	}
	if u.Rate > 0 {
		args = append(args, "-s", strconv.Itoa(int(175*u.Rate)))
	}
	if u.Pitch > 0 {
		p := int(50 * u.Pitch)
		p = max(0, min(p, 99))
		args = append(args, "-p", strconv.Itoa(p))
	}
	return args
}

// parseVoices reads the espeak voice table:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  en-us           --/M      English_(America)  gmw/en-US     (en 2)
func parseVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		f := strings.Fields(sc.Text())
		if len(f) < 4 {
			continue
		}
		voices = append(voices, Voice{
			Name:         f[3],
			Lang:         f[1],
			LocalService: true,
		})
	}
	for i := range voices {
		if voices[i].Lang == "en" || voices[i].Lang == "en-us" {
			voices[i].Default = true
			break
		}
	}
	return voices
}
