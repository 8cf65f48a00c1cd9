package cmd

import (
	"github.com/abhisek/lumen/internal/app"
	"github.com/abhisek/lumen/internal/narration"
	"github.com/spf13/cobra"
)

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	engine := narration.NewEngine(rt.narration)
	if ce, ok := engine.(*narration.CommandEngine); ok {
		defer ce.Close()
	}

	imageDir, _ := cmd.Flags().GetString("image-dir")
	return app.Run(cmd.Context(), app.Options{
		Client:    rt.client,
		Engine:    engine,
		Narration: rt.narration,
		Logger:    rt.log,
		ImageDir:  imageDir,
	})
}

func init() {
	rootCmd.Flags().String("image-dir", "", "Directory for illustrations saved with O (default: system temp dir)")
}
