package narration

import (
	"os"
	"strings"
)

// Config holds narration settings.
type Config struct {
	// Command is the speech binary. Empty disables narration.
	Command string

	// PreferredVoices are tried in order by SelectVoice.
	PreferredVoices []string

	Rate  float64
	Pitch float64
}

// DefaultConfig returns sensible defaults for narration.
func DefaultConfig() Config {
	return Config{
		Command:         "espeak-ng",
		PreferredVoices: []string{"English_(America)", "English_(Great_Britain)", "en-us"},
		Rate:            1.0,
		Pitch:           1.0,
	}
}

// ConfigFromEnv applies LUMEN_TTS_COMMAND and LUMEN_VOICE (a comma-separated
// preference list) over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if c, ok := os.LookupEnv("LUMEN_TTS_COMMAND"); ok {
		cfg.Command = strings.TrimSpace(c)
	}
	if v := os.Getenv("LUMEN_VOICE"); v != "" {
		var names []string
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		cfg.PreferredVoices = append(names, cfg.PreferredVoices...)
	}
	return cfg
}
