package generation

import (
	"errors"

	"github.com/abhisek/lumen/internal/logger"
)

var (
	// ErrNotesFailed is returned for any notes transport or parse failure.
	ErrNotesFailed = errors.New("failed to generate notes")
	// ErrQuizFailed is returned for any quiz failure other than malformed data.
	ErrQuizFailed = errors.New("failed to generate quiz")
	// ErrInvalidQuizData is returned when the quiz response parses but has
	// the wrong shape.
	ErrInvalidQuizData = errors.New("invalid quiz data")
)

// Policy decides what a failed operation hands back to its caller.
type Policy int

const (
	// PolicySurface logs the cause and returns a generic sentinel error.
	PolicySurface Policy = iota
	// PolicyDegrade logs the cause and returns a fallback value with no error.
	PolicyDegrade
)

func (p Policy) String() string {
	switch p {
	case PolicySurface:
		return "surface"
	case PolicyDegrade:
		return "degrade"
	default:
		return "unknown"
	}
}

// Operation names a generation call and the single policy bound to it.
type Operation struct {
	Name   string
	Policy Policy
}

var (
	OpNotes = Operation{Name: "notes", Policy: PolicySurface}
	OpImage = Operation{Name: "image", Policy: PolicyDegrade}
	OpQuiz  = Operation{Name: "quiz", Policy: PolicySurface}
)

// fail applies op's policy to cause. Under PolicySurface it returns the zero
// value and sentinel; under PolicyDegrade it returns fallback and nil. The
// cause only ever reaches the log.
func fail[T any](log *logger.Logger, op Operation, cause, sentinel error, fallback T) (T, error) {
	switch op.Policy {
	case PolicyDegrade:
		log.Warn("generation degraded", "operation", op.Name, "error", cause)
		return fallback, nil
	default:
		log.Error("generation failed", "operation", op.Name, "error", cause, "surfaced", sentinel)
		var zero T
		return zero, sentinel
	}
}
