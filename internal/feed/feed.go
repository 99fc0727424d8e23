// Package feed fetches the primary RSS source for a newsletter section.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/newsletter/internal/config"
	"github.com/deusflow/newsletter/internal/timeutil"
)

// Item is one normalized entry from the primary feed. PublishedAt is nil
// when the feed entry carries no parseable timestamp.
type Item struct {
	Section     string
	Title       string
	Link        string
	PublishedAt *time.Time
}

// Fetch downloads and parses the section's RSS endpoint.
func Fetch(ctx context.Context, section config.Section) ([]Item, error) {
	if section.Feed == "" {
		return nil, fmt.Errorf("section %q has no feed endpoint", section.ID)
	}

	parser := gofeed.NewParser()
	parser.UserAgent = "Mozilla/5.0"

	parsed, err := parser.ParseURLWithContext(section.Feed, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", section.Feed, err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		items = append(items, Item{
			Section:     section.ID,
			Title:       strings.TrimSpace(it.Title),
			Link:        strings.TrimSpace(it.Link),
			PublishedAt: toKST(it.PublishedParsed),
		})
	}
	return items, nil
}

func toKST(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	kst := t.In(timeutil.KST)
	return &kst
}
