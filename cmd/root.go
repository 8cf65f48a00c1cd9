package cmd

import (
	"context"
	"errors"
	"io/fs"

	"github.com/abhisek/lumen/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "AI study notes, narration and quizzes in your terminal",
	Long: "Lumen turns any topic into illustrated learning notes, reads them aloud, " +
		"and quizzes you on them.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadDotEnv(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite request log (overrides LUMEN_DB env var)")
	pf.Bool("keep-log", false, "Record model requests in the default database file instead of memory")
	pf.String("log-file", "", "Write logs to this file (overrides LUMEN_LOG_FILE env var)")
	pf.String("log-mode", "dev", "Log encoding: dev or prod")
	pf.String("env-file", ".env", "Load environment variables from this file if it exists")
	pf.String("tts", "", "Speech command for narration (overrides LUMEN_TTS_COMMAND)")
	pf.Bool("demo", false, "Use built-in offline content instead of Gemini")

	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(voicesCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadDotEnv loads the --env-file into the process environment. Variables
// already set win over the file.
func loadDotEnv(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// resolveDBPath returns the request log location: --db flag (highest
// priority), then LUMEN_DB. Without either the log lives in memory, unless
// fallback asks for the default file location.
func resolveDBPath(cmd *cobra.Command, fallback bool) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	keep, _ := cmd.Flags().GetBool("keep-log")
	if fallback || keep || hasEnv("LUMEN_DB") {
		return store.DefaultDBPath()
	}
	return "", nil
}
