package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/abhisek/lumen/internal/generation"
	"github.com/abhisek/lumen/internal/narration"
	"github.com/abhisek/lumen/internal/shell"
	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes <topic>",
	Short: "Generate learning notes for a topic and print them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.TrimSpace(strings.Join(args, " "))
		if topic == "" {
			return fmt.Errorf("topic must not be empty")
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Crafting your learning notes...")
		notes, err := rt.client.GenerateNotes(ctx, topic)
		if err != nil {
			return err
		}

		if withImages, _ := cmd.Flags().GetBool("images"); withImages {
			notes = rt.client.IllustrateNotes(ctx, topic, notes, progressPrinter(out))
		}

		dir, _ := cmd.Flags().GetString("save-images")
		printNotes(out, topic, notes, dir)

		if speak, _ := cmd.Flags().GetBool("speak"); speak {
			return speakNotes(out, notes, narration.NewEngine(rt.narration), rt.narration)
		}
		return nil
	},
}

// progressPrinter reports image progress to out. IllustrateNotes calls it
// from its workers, so lines are serialized and counts never go backwards.
func progressPrinter(out io.Writer) generation.ProgressFunc {
	var mu sync.Mutex
	last := 0
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if done <= last {
			return
		}
		last = done
		fmt.Fprintf(out, "%s\n", shell.ImagesMessage(done, total))
	}
}

func printNotes(out io.Writer, topic string, notes generation.LearningNotes, saveDir string) {
	fmt.Fprintf(out, "\n# %s\n", topic)
	for i, s := range notes {
		fmt.Fprintf(out, "\n## %s\n\n", s.Heading)
		for _, p := range s.Paragraphs() {
			fmt.Fprintf(out, "%s\n\n", p)
		}
		switch {
		case s.ImageURL == "":
		case generation.IsDataURI(s.ImageURL) && saveDir != "":
			path, err := generation.SaveImage(saveDir, fmt.Sprintf("section-%d", i+1), s.ImageURL)
			if err != nil {
				fmt.Fprintf(out, "[illustration not saved: %v]\n", err)
				continue
			}
			fmt.Fprintf(out, "[illustration: %s]\n", path)
		case generation.IsDataURI(s.ImageURL):
			if w, h, format, err := generation.ImageInfo(s.ImageURL); err == nil {
				fmt.Fprintf(out, "[illustration: %dx%d %s]\n", w, h, format)
			}
		default:
			fmt.Fprintf(out, "[illustration unavailable: %s]\n", s.ImageURL)
		}
	}
}

// speakNotes reads every section aloud and blocks until the last one ends.
func speakNotes(out io.Writer, notes generation.LearningNotes, engine narration.Engine, cfg narration.Config) error {
	if ce, ok := engine.(*narration.CommandEngine); ok {
		defer ce.Close()
	}

	n := narration.NewNarrator(cfg)
	if err := n.Acquire(engine); err != nil {
		return fmt.Errorf("narration unavailable: %w", err)
	}
	defer n.Release()

	n.SetSections(notes)
	if err := n.Play(); err != nil {
		return err
	}
	for n.State() != narration.Stopped {
		ev, ok := n.Listen()().(narration.EventMsg)
		if !ok {
			break
		}
		if n.Handle(ev) && ev.Kind == narration.EventStart {
			fmt.Fprintf(out, "♪ %s\n", notes[ev.Index].Heading)
		}
	}
	return n.Err()
}

func init() {
	notesCmd.Flags().Bool("images", false, "Generate an illustration for every section")
	notesCmd.Flags().String("save-images", "", "Write illustrations into this directory")
	notesCmd.Flags().Bool("speak", false, "Read the notes aloud after printing them")
}
