package generation

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/lumen/internal/llm"
)

// ProgressFunc is called after each illustration completes, from the
// goroutine that produced it.
type ProgressFunc func(done, total int)

// IllustrateNotes generates an image for every section as one concurrent
// batch, launching requests ImageStagger apart, and returns a copy of the
// notes with ImageURL filled in. Failed images become placeholders.
// Requests are logged under topic.
func (c *Client) IllustrateNotes(ctx context.Context, topic string, notes LearningNotes, onProgress ProgressFunc) LearningNotes {
	ctx = llm.WithTopic(ctx, topic)
	total := len(notes)
	urls := make([]string, total)

	var g errgroup.Group
	if c.cfg.ImageConcurrency > 0 {
		g.SetLimit(c.cfg.ImageConcurrency)
	}

	var done atomic.Int32
	for i, section := range notes {
		if i > 0 && c.cfg.ImageStagger > 0 {
			stagger(ctx, c.cfg.ImageStagger)
		}
		g.Go(func() error {
			urls[i] = c.GenerateImage(ctx, section.ImagePrompt)
			n := int(done.Add(1))
			if onProgress != nil {
				onProgress(n, total)
			}
			return nil
		})
	}

	// GenerateImage never fails, so Wait only joins the batch.
	_ = g.Wait()

	c.log.Info("notes illustrated", "topic", topic, "sections", total, "placeholders", countPlaceholders(urls))
	return notes.WithImages(urls)
}

func stagger(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func countPlaceholders(urls []string) int {
	n := 0
	for _, u := range urls {
		if u == PlaceholderImageURL {
			n++
		}
	}
	return n
}
