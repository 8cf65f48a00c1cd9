package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lumen/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status in the
// header's right corner.
type StatusProvider interface {
	Status() string
}

// Releaser is implemented by screens holding resources that must be freed
// when the screen leaves the stack.
type Releaser interface {
	Release()
}
