package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/lumen/internal/llm"
	"github.com/abhisek/lumen/internal/store"
	"github.com/abhisek/lumen/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the model requests made while studying",
	Long: "Reads the request log. Lumen keeps that log in memory unless a run " +
		"used --keep-log, --db or LUMEN_DB, so these commands only see such runs.",
}

var llmTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Show what each studied topic cost: notes, illustrations, quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRequestLog(cmd, func(repo store.EventRepo, out io.Writer) error {
			usage, err := repo.LLMUsageByTopic(cmd.Context())
			if err != nil {
				return err
			}
			if len(usage) == 0 {
				return errEmptyLog
			}
			renderTopics(out, summarizeTopics(usage))
			return nil
		})
	},
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Topic, _ = cmd.Flags().GetString("topic")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.Failed, _ = cmd.Flags().GetBool("failed")

		return withRequestLog(cmd, func(repo store.EventRepo, out io.Writer) error {
			events, err := repo.QueryLLMEvents(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				if opts.Topic != "" || opts.Purpose != "" || opts.Failed {
					fmt.Fprintln(out, "No requests match the filters.")
					return nil
				}
				return errEmptyLog
			}
			renderRequests(out, events)
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one request with its prompt and response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("request id must be a number, got %q", args[0])
		}
		return withRequestLog(cmd, func(repo store.EventRepo, out io.Writer) error {
			e, err := repo.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return err
			}
			if e == nil {
				return fmt.Errorf("no request with id %d", id)
			}
			renderRequest(out, *e)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show failure rates per purpose and spend per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRequestLog(cmd, func(repo store.EventRepo, out io.Writer) error {
			byPurpose, err := repo.LLMUsageByPurpose(cmd.Context())
			if err != nil {
				return err
			}
			if len(byPurpose) == 0 {
				return errEmptyLog
			}
			byModel, err := repo.LLMUsageByModel(cmd.Context())
			if err != nil {
				return err
			}
			renderPurposes(out, byPurpose)
			fmt.Fprintln(out)
			renderSpend(out, byModel)
			return nil
		})
	},
}

var errEmptyLog = errors.New("request log is empty")

// withRequestLog opens the file-backed request log and runs fn on it. An
// empty log is reported with a hint instead of an error.
func withRequestLog(cmd *cobra.Command, fn func(store.EventRepo, io.Writer) error) error {
	path, err := resolveDBPath(cmd, true)
	if err != nil {
		return fmt.Errorf("resolve request log path: %w", err)
	}
	s, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open request log: %w", err)
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	if err := fn(s.EventRepo(), out); !errors.Is(err, errEmptyLog) {
		return err
	}
	fmt.Fprintf(out, "No requests recorded in %s.\n", path)
	fmt.Fprintln(out, "Lumen keeps its request log in memory by default. Run it with --keep-log "+
		"(or --db PATH / LUMEN_DB) to record requests for these commands.")
	return nil
}

// topicSummary is one studied topic folded across purposes and models.
type topicSummary struct {
	Topic        string
	LastAt       time.Time
	Notes        int
	Quizzes      int
	Images       int
	Placeholders int
	Failures     int
	Cost         float64
	Unpriced     bool
}

func summarizeTopics(usage []store.TopicUsage) []topicSummary {
	var out []topicSummary
	index := make(map[string]int)
	for _, u := range usage {
		i, ok := index[u.Topic]
		if !ok {
			i = len(out)
			index[u.Topic] = i
			out = append(out, topicSummary{Topic: u.Topic})
		}
		s := &out[i]
		if u.LastAt.After(s.LastAt) {
			s.LastAt = u.LastAt
		}
		succeeded := u.Calls - u.Failures
		switch u.Purpose {
		case llm.PurposeNotes:
			s.Notes += succeeded
			s.Failures += u.Failures
		case llm.PurposeQuiz:
			s.Quizzes += succeeded
			s.Failures += u.Failures
		case llm.PurposeImage:
			s.Images += u.Images
			// Every failed illustration was shown as a placeholder.
			s.Placeholders += u.Failures
		default:
			s.Failures += u.Failures
		}
		if price := llm.LookupCost(u.Model); price != nil {
			s.Cost += price.Cost(u.InputTokens, u.OutputTokens, u.Images)
		} else if u.Calls > u.Failures {
			s.Unpriced = true
		}
	}
	return out
}

func renderTopics(w io.Writer, topics []topicSummary) {
	t := newTable("Topic", "Last studied", "Notes", "Illustrations", "Quizzes", "Failed", "Spend")
	var total float64
	for _, s := range topics {
		topic := s.Topic
		if topic == "" {
			topic = "(no topic)"
		}
		t.Row(
			truncate(topic, 32),
			s.LastAt.Local().Format("Jan 2 15:04"),
			strconv.Itoa(s.Notes),
			illustrationCell(s.Images, s.Placeholders),
			strconv.Itoa(s.Quizzes),
			strconv.Itoa(s.Failures),
			costCell(s.Cost, s.Unpriced),
		)
		total += s.Cost
	}
	lipgloss.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d topics, %s estimated\n", len(topics), formatCost(total))
}

func illustrationCell(images, placeholders int) string {
	if placeholders == 0 {
		return strconv.Itoa(images)
	}
	return fmt.Sprintf("%d (+%d placeholder)", images, placeholders)
}

func renderRequests(w io.Writer, events []store.LLMEvent) {
	t := newTable("ID", "When", "Topic", "Purpose", "Model", "Tokens", "Latency", "")
	for _, e := range events {
		status := theme.Correct.Render("ok")
		if !e.Success {
			status = theme.Incorrect.Render(truncate(e.ErrorMessage, 30))
		}
		usage := fmt.Sprintf("%d→%d", e.InputTokens, e.OutputTokens)
		if e.Purpose == llm.PurposeImage {
			usage = fmt.Sprintf("%d image", e.Images)
		}
		t.Row(
			strconv.Itoa(e.ID),
			e.Timestamp.Local().Format("15:04:05"),
			truncate(e.Topic, 24),
			e.Purpose,
			truncate(e.Model, 24),
			usage,
			(time.Duration(e.LatencyMs) * time.Millisecond).String(),
			status,
		)
	}
	lipgloss.Fprintln(w, t.Render())
}

func renderRequest(w io.Writer, e store.LLMEvent) {
	title := fmt.Sprintf("Request #%d · %s", e.ID, e.Purpose)
	if e.Topic != "" {
		title += " · " + e.Topic
	}
	lipgloss.Fprintln(w, theme.Heading.Render(title))

	fields := [][2]string{
		{"Time", e.Timestamp.Local().Format(time.DateTime)},
		{"Model", e.Model + " (" + e.Provider + ")"},
		{"Latency", (time.Duration(e.LatencyMs) * time.Millisecond).String()},
		{"Tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens)},
		{"Request", e.RequestID},
	}
	if e.Images > 0 {
		fields = append(fields, [2]string{"Images", strconv.Itoa(e.Images)})
	}
	if !e.Success {
		fields = append(fields, [2]string{"Error", theme.Incorrect.Render(e.ErrorMessage)})
	}
	for _, f := range fields {
		lipgloss.Fprintln(w, theme.Hint.Render(fmt.Sprintf("%-8s", f[0])), f[1])
	}

	for _, body := range []struct{ name, text string }{
		{"Prompt", e.RequestBody},
		{"Response", e.ResponseBody},
	} {
		lipgloss.Fprintln(w, "\n"+theme.Heading.Render(body.name))
		if strings.TrimSpace(body.text) == "" {
			lipgloss.Fprintln(w, theme.Hint.Render("(not captured)"))
			continue
		}
		fmt.Fprintln(w, strings.TrimRight(body.text, "\n"))
	}
}

func renderPurposes(w io.Writer, usage []store.PurposeUsage) {
	t := newTable("Purpose", "Requests", "Failed", "Failure rate", "Input", "Output", "Images", "Avg latency")
	for _, u := range usage {
		t.Row(
			u.Purpose,
			strconv.Itoa(u.Calls),
			strconv.Itoa(u.Failures),
			percent(u.Failures, u.Calls),
			strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens),
			strconv.Itoa(u.Images),
			(time.Duration(u.AvgLatencyMs) * time.Millisecond).String(),
		)
	}
	lipgloss.Fprintln(w, t.Render())

	for _, u := range usage {
		if u.Purpose == llm.PurposeImage && u.Failures > 0 {
			fmt.Fprintf(w, "%s of illustrations fell back to a placeholder.\n", percent(u.Failures, u.Calls))
		}
	}
}

func renderSpend(w io.Writer, usage []store.ModelUsage) {
	sorted := append([]store.ModelUsage(nil), usage...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Images < sorted[j].Images })

	t := newTable("Model", "Requests", "Text spend", "Image spend", "Total")
	var text, images float64
	var unpriced []string
	for _, u := range sorted {
		price := llm.LookupCost(u.Model)
		if price == nil {
			unpriced = append(unpriced, u.Model)
			t.Row(truncate(u.Model, 32), strconv.Itoa(u.Calls), "?", "?", "?")
			continue
		}
		tc := price.Cost(u.InputTokens, u.OutputTokens, 0)
		ic := price.Cost(0, 0, u.Images)
		text += tc
		images += ic
		t.Row(truncate(u.Model, 32), strconv.Itoa(u.Calls), formatCost(tc), formatCost(ic), formatCost(tc+ic))
	}
	label := "Total"
	if len(unpriced) > 0 {
		label = "Total (priced models)"
	}
	t.Row(label, "", formatCost(text), formatCost(images), formatCost(text+images))
	lipgloss.Fprintln(w, t.Render())

	if len(unpriced) > 0 {
		fmt.Fprintf(w, "No price known for %s.\n", strings.Join(unpriced, ", "))
	}
}

func newTable(headers ...string) *table.Table {
	cell := lipgloss.NewStyle().Padding(0, 1)
	header := cell.Foreground(theme.Primary).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

func percent(part, whole int) string {
	if whole == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(part)/float64(whole))
}

func costCell(usd float64, unpriced bool) string {
	if unpriced && usd == 0 {
		return "?"
	}
	s := formatCost(usd)
	if unpriced {
		s += "+"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatCost(usd float64) string {
	if usd > 0 && usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("topic", "t", "", "Only requests for this topic")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only requests with this purpose (notes, image, quiz)")
	llmListCmd.Flags().Bool("failed", false, "Only failed requests")

	llmCmd.AddCommand(llmTopicsCmd)
	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
