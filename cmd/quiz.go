package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/lumen/internal/quiz"
	"github.com/abhisek/lumen/internal/ui/components"
	"github.com/spf13/cobra"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <topic>",
	Short: "Take a quiz on a topic in the console",
	Long:  "Generates notes for the topic, then asks the quiz questions one at a time on stdin.",
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
		fmt.Fprintln(out, "Generating your quiz...")
		q, err := rt.client.GenerateQuiz(ctx, topic, notes)
		if err != nil {
			return err
		}

		a := quiz.NewAttempt(q)
		if err := askAll(cmd.InOrStdin(), out, a); err != nil {
			return err
		}
		rt.log.Info("quiz submitted", "topic", topic, "score", a.Score(), "total", a.Len())
		printResults(out, a)
		return nil
	},
}

// askAll prompts for every question until each has a valid answer.
func askAll(in io.Reader, out io.Writer, a *quiz.Attempt) error {
	sc := bufio.NewScanner(in)
	for i := 0; i < a.Len(); i++ {
		q := a.Current()
		fmt.Fprintf(out, "\nQuestion %d/%d\n%s\n", i+1, a.Len(), q.Question)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "  %s) %s\n", components.OptionLabels[j], opt)
		}
		for {
			fmt.Fprint(out, "Your answer: ")
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return err
				}
				return io.ErrUnexpectedEOF
			}
			if idx, ok := optionIndex(sc.Text()); ok && a.SelectIndex(idx) {
				break
			}
			fmt.Fprintf(out, "Enter one of %s.\n", strings.Join(components.OptionLabels[:len(q.Options)], ", "))
		}
		a.Next()
	}
	return a.Submit()
}

func optionIndex(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, l := range components.OptionLabels {
		if s == l {
			return i, true
		}
	}
	return 0, false
}

func printResults(out io.Writer, a *quiz.Attempt) {
	tier := quiz.TierFor(a.Score(), a.Len())
	fmt.Fprintf(out, "\n%s You scored %d/%d\n%s\n", tier.Title(), a.Score(), a.Len(), tier.Message())
	for _, item := range a.Review() {
		mark := "✓"
		if !item.IsCorrect {
			mark = "✗"
		}
		fmt.Fprintf(out, "\n%d. %s\n   %s Your answer: %s\n", item.Number, item.Question, mark, item.Chosen)
		if !item.IsCorrect {
			fmt.Fprintf(out, "   Correct answer: %s\n", item.Correct)
		}
		if item.Explanation != "" {
			fmt.Fprintf(out, "   %s\n", item.Explanation)
		}
	}
}
