package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const tableLLMEvents = "llm_request_events"

// eventRepo implements EventRepo with the ent SQL builder and the global
// sequence counter.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

// llmEventRow mirrors one row of llm_request_events for scanning.
type llmEventRow struct {
	ID           int    `sql:"id"`
	Sequence     int64  `sql:"sequence"`
	RequestID    string `sql:"request_id"`
	Timestamp    int64  `sql:"timestamp"`
	Provider     string `sql:"provider"`
	Model        string `sql:"model"`
	Purpose      string `sql:"purpose"`
	Topic        string `sql:"topic"`
	InputTokens  int    `sql:"input_tokens"`
	OutputTokens int    `sql:"output_tokens"`
	Images       int    `sql:"images"`
	LatencyMs    int64  `sql:"latency_ms"`
	Success      bool   `sql:"success"`
	ErrorMessage string `sql:"error_message"`
	RequestBody  string `sql:"request_body"`
	ResponseBody string `sql:"response_body"`
}

func (r llmEventRow) event() LLMEvent {
	return LLMEvent{
		ID:        r.ID,
		Sequence:  r.Sequence,
		Timestamp: time.UnixMilli(r.Timestamp).UTC(),
		LLMRequestEventData: LLMRequestEventData{
			RequestID:    r.RequestID,
			Provider:     r.Provider,
			Model:        r.Model,
			Purpose:      r.Purpose,
			Topic:        r.Topic,
			InputTokens:  r.InputTokens,
			OutputTokens: r.OutputTokens,
			Images:       r.Images,
			LatencyMs:    r.LatencyMs,
			Success:      r.Success,
			ErrorMessage: r.ErrorMessage,
			RequestBody:  r.RequestBody,
			ResponseBody: r.ResponseBody,
		},
	}
}

var llmEventColumns = []string{
	"id", "sequence", "request_id", "timestamp", "provider", "model", "purpose", "topic",
	"input_tokens", "output_tokens", "images", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().
		Insert(tableLLMEvents).
		Columns(
			"sequence", "request_id", "timestamp", "provider", "model", "purpose", "topic",
			"input_tokens", "output_tokens", "images", "latency_ms", "success",
			"error_message", "request_body", "response_body",
		).
		Values(
			seqNum, data.RequestID, time.Now().UnixMilli(), data.Provider, data.Model, data.Purpose, data.Topic,
			data.InputTokens, data.OutputTokens, data.Images, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody,
		).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	t := entsql.Table(tableLLMEvents)
	sel := builder().Select(columnsOf(t, llmEventColumns)...).From(t)

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT(t.C("sequence"), opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT(t.C("sequence"), opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE(t.C("timestamp"), opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE(t.C("timestamp"), opts.To.UnixMilli()))
	}
	if opts.Purpose != "" {
		preds = append(preds, entsql.EQ(t.C("purpose"), opts.Purpose))
	}
	if opts.Topic != "" {
		preds = append(preds, entsql.EQ(t.C("topic"), opts.Topic))
	}
	if opts.Failed {
		preds = append(preds, entsql.EQ(t.C("success"), false))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc(t.C("sequence")))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	rows, err := r.scanEvents(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return rows, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	t := entsql.Table(tableLLMEvents)
	sel := builder().Select(columnsOf(t, llmEventColumns)...).
		From(t).
		Where(entsql.EQ(t.C("id"), id)).
		Limit(1)

	events, err := r.scanEvents(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	t := entsql.Table(tableLLMEvents)
	sel := builder().Select(
		t.C("purpose"),
		entsql.As(entsql.Count("*"), "calls"),
		failuresColumn(t),
		entsql.As(entsql.Sum(t.C("input_tokens")), "input_tokens"),
		entsql.As(entsql.Sum(t.C("output_tokens")), "output_tokens"),
		entsql.As(entsql.Sum(t.C("images")), "images"),
		"CAST(AVG("+t.C("latency_ms")+") AS INTEGER) AS `avg_latency_ms`",
	).
		From(t).
		GroupBy(t.C("purpose")).
		OrderBy(t.C("purpose"))

	var out []struct {
		Purpose      string `sql:"purpose"`
		Calls        int    `sql:"calls"`
		Failures     int    `sql:"failures"`
		InputTokens  int    `sql:"input_tokens"`
		OutputTokens int    `sql:"output_tokens"`
		Images       int    `sql:"images"`
		AvgLatencyMs int64  `sql:"avg_latency_ms"`
	}
	if err := r.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("usage by purpose: %w", err)
	}

	usage := make([]PurposeUsage, len(out))
	for i, o := range out {
		usage[i] = PurposeUsage(o)
	}
	return usage, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	t := entsql.Table(tableLLMEvents)
	sel := builder().Select(
		t.C("model"),
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum(t.C("input_tokens")), "input_tokens"),
		entsql.As(entsql.Sum(t.C("output_tokens")), "output_tokens"),
		entsql.As(entsql.Sum(t.C("images")), "images"),
	).
		From(t).
		Where(entsql.EQ(t.C("success"), true)).
		GroupBy(t.C("model")).
		OrderBy(t.C("model"))

	var out []struct {
		Model        string `sql:"model"`
		Calls        int    `sql:"calls"`
		InputTokens  int    `sql:"input_tokens"`
		OutputTokens int    `sql:"output_tokens"`
		Images       int    `sql:"images"`
	}
	if err := r.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("usage by model: %w", err)
	}

	usage := make([]ModelUsage, len(out))
	for i, o := range out {
		usage[i] = ModelUsage(o)
	}
	return usage, nil
}

func (r *eventRepo) LLMUsageByTopic(ctx context.Context) ([]TopicUsage, error) {
	t := entsql.Table(tableLLMEvents)
	sel := builder().Select(
		t.C("topic"),
		t.C("purpose"),
		t.C("model"),
		entsql.As(entsql.Count("*"), "calls"),
		failuresColumn(t),
		entsql.As(entsql.Sum(t.C("input_tokens")), "input_tokens"),
		entsql.As(entsql.Sum(t.C("output_tokens")), "output_tokens"),
		entsql.As(entsql.Sum(t.C("images")), "images"),
		entsql.As(entsql.Max(t.C("timestamp")), "last_at"),
	).
		From(t).
		GroupBy(t.C("topic"), t.C("purpose"), t.C("model"))

	var out []struct {
		Topic        string `sql:"topic"`
		Purpose      string `sql:"purpose"`
		Model        string `sql:"model"`
		Calls        int    `sql:"calls"`
		Failures     int    `sql:"failures"`
		InputTokens  int    `sql:"input_tokens"`
		OutputTokens int    `sql:"output_tokens"`
		Images       int    `sql:"images"`
		LastAt       int64  `sql:"last_at"`
	}
	if err := r.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("usage by topic: %w", err)
	}

	// Most recent topic first; rows of one topic stay together.
	latest := make(map[string]int64)
	for _, o := range out {
		latest[o.Topic] = max(latest[o.Topic], o.LastAt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if latest[a.Topic] != latest[b.Topic] {
			return latest[a.Topic] > latest[b.Topic]
		}
		if a.Topic != b.Topic {
			return a.Topic < b.Topic
		}
		if a.Purpose != b.Purpose {
			return a.Purpose < b.Purpose
		}
		return a.Model < b.Model
	})

	usage := make([]TopicUsage, len(out))
	for i, o := range out {
		usage[i] = TopicUsage{
			Topic:        o.Topic,
			Purpose:      o.Purpose,
			Model:        o.Model,
			Calls:        o.Calls,
			Failures:     o.Failures,
			InputTokens:  o.InputTokens,
			OutputTokens: o.OutputTokens,
			Images:       o.Images,
			LastAt:       time.UnixMilli(o.LastAt).UTC(),
		}
	}
	return usage, nil
}

// failuresColumn counts unsuccessful rows of a group.
func failuresColumn(t *entsql.SelectTable) string {
	return "SUM(CASE WHEN " + t.C("success") + " THEN 0 ELSE 1 END) AS `failures`"
}

func (r *eventRepo) scanEvents(ctx context.Context, sel *entsql.Selector) ([]LLMEvent, error) {
	var rows []llmEventRow
	if err := r.scan(ctx, sel, &rows); err != nil {
		return nil, err
	}
	events := make([]LLMEvent, len(rows))
	for i, row := range rows {
		events[i] = row.event()
	}
	return events, nil
}

func (r *eventRepo) scan(ctx context.Context, sel *entsql.Selector, v any) error {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, v)
}

func columnsOf(t *entsql.SelectTable, names []string) []string {
	cols := make([]string, len(names))
	for i, n := range names {
		cols[i] = t.C(n)
	}
	return cols
}
