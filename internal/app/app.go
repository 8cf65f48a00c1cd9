package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lumen/internal/generation"
	"github.com/abhisek/lumen/internal/logger"
	"github.com/abhisek/lumen/internal/narration"
	"github.com/abhisek/lumen/internal/router"
	"github.com/abhisek/lumen/internal/screen"
	"github.com/abhisek/lumen/internal/screens/topic"
	"github.com/abhisek/lumen/internal/shell"
	"github.com/abhisek/lumen/internal/ui/layout"
)

// Options holds dependencies for the app.
type Options struct {
	Client    *generation.Client
	Engine    narration.Engine
	Narration narration.Config
	Logger    *logger.Logger

	// ImageDir receives illustrations saved from the notes screen.
	ImageDir string
}

// AppModel is the root Bubble Tea model. It owns the view state, runs
// generation and keeps the screen stack in step with the state:
// topic, then notes, then quiz on top of notes.
type AppModel struct {
	router *router.Router
	state  shell.State
	opts   Options
	log    *logger.Logger

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

// newAppModel creates a new AppModel on the topic screen.
func newAppModel(ctx context.Context, opts Options) AppModel {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	if opts.Engine == nil {
		opts.Engine = narration.NoopEngine{}
	}
	state := shell.New()
	genCtx, cancel := context.WithCancel(ctx)
	return AppModel{
		router: router.New(topic.New(state)),
		state:  state,
		opts:   opts,
		log:    log.With("component", "app"),
		parent: ctx,
		ctx:    genCtx,
		cancel: cancel,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.router.Reset(topic.New(shell.New()))
			return m, tea.Quit
		}

	case shell.SubmitTopicMsg:
		return m.submit(msg.Topic)

	case notesGeneratedMsg:
		return m.handleNotesGenerated(msg)

	case imageProgressMsg:
		return m.handleImageProgress(msg)

	case notesIllustratedMsg:
		return m.handleNotesIllustrated(msg)

	case notesFailedMsg:
		return m.handleNotesFailed(msg)

	case shell.StartQuizMsg:
		return m.startQuiz()

	case quizReadyMsg:
		return m.handleQuizReady(msg)

	case quizFailedMsg:
		return m.handleQuizFailed(msg)

	case shell.BackToNotesMsg:
		return m.backToNotes()

	case shell.NewTopicMsg:
		return m.newTopic()

	case narration.EventMsg:
		// The notes screen keeps listening while a quiz covers it.
		return m, m.router.Broadcast(msg)
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// State returns the current view state.
func (m AppModel) State() shell.State { return m.state }

// Active returns the screen on top of the stack.
func (m AppModel) Active() screen.Screen { return m.router.Active() }

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.frame())
	return v
}

// frame renders header, active screen and footer.
func (m AppModel) frame() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	var hints []layout.KeyHint
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if hp, ok := active.(screen.KeyHintProvider); ok {
			hints = hp.KeyHints()
		}
	}
	if hints == nil {
		hints = []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(hints, m.width)
	content := m.router.View(m.width, layout.ContentHeight(header, footer, m.height))

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, opts Options) error {
	if opts.Client == nil {
		return fmt.Errorf("app: generation client is required")
	}
	p := tea.NewProgram(newAppModel(ctx, opts), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
