package cmd

import (
	"fmt"

	"github.com/abhisek/lumen/internal/narration"
	"github.com/spf13/cobra"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List installed narration voices and show which one is used",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := narrationConfig(cmd)
		engine := narration.NewEngine(cfg)
		if ce, ok := engine.(*narration.CommandEngine); ok {
			defer ce.Close()
		}

		voices, err := engine.Voices()
		if err != nil {
			return fmt.Errorf("narration unavailable (speech command %q): %w", cfg.Command, err)
		}
		out := cmd.OutOrStdout()
		if len(voices) == 0 {
			fmt.Fprintln(out, "No voices installed.")
			return nil
		}

		selected, _ := narration.SelectVoice(voices, cfg.PreferredVoices)
		fmt.Fprintf(out, "   %-32s  %-10s  %s\n", "Name", "Language", "Source")
		for _, v := range voices {
			mark := " "
			if v == selected {
				mark = "*"
			}
			source := "network"
			if v.LocalService {
				source = "local"
			}
			fmt.Fprintf(out, " %s %-32s  %-10s  %s\n", mark, truncate(v.Name, 32), v.Lang, source)
		}
		return nil
	},
}
