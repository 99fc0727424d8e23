// Package digest holds the cross-source reconciliation core: acceptance
// window selection, the sim→date fallback search, fuzzy title matching
// between the feed and search sources, and section assembly.
package digest

import (
	"context"
	"sort"

	"github.com/deusflow/newsletter/internal/feed"
	"github.com/deusflow/newsletter/internal/logger"
	"github.com/deusflow/newsletter/internal/naver"
	"github.com/deusflow/newsletter/internal/timeutil"
)

// RenderItem is one render-ready newsletter entry. Immutable once built.
type RenderItem struct {
	Section          string
	Title            string
	SourceLine       string
	BodyHTML         string
	MainLinksHTML    string
	RelatedLinksHTML string
	IsExtra          bool
}

// SelectLatest filters feed items to the acceptance window, sorts them
// newest first and returns at most n. Items without a timestamp never pass
// the window. Pure function.
func SelectLatest(items []feed.Item, window timeutil.Window, n int) []feed.Item {
	selected := make([]feed.Item, 0, len(items))
	for _, it := range items {
		if window.Contains(it.PublishedAt) {
			selected = append(selected, it)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].PublishedAt.After(*selected[j].PublishedAt)
	})
	if len(selected) > n {
		selected = selected[:n]
	}
	return selected
}

// Searcher is the slice of the naver client the fallback strategy needs.
type Searcher interface {
	Search(ctx context.Context, query string, display int, sort naver.Sort) ([]naver.Item, error)
}

// searchDisplay is the API page size used for both modes; the window filter
// discards most of it, so we always ask for the documented maximum.
const searchDisplay = 100

// SearchWithFallback runs the relevance-mode search and, when fewer than n
// in-window on-platform hits survive, re-runs the identical query in
// recency mode. The query text is never altered; only the sort mode widens
// recall. Returns the final top-n (newest first) and the sort mode used.
func SearchWithFallback(ctx context.Context, s Searcher, query string, window timeutil.Window, n int) ([]naver.Item, naver.Sort, error) {
	items, err := s.Search(ctx, query, searchDisplay, naver.SortSim)
	if err != nil {
		return nil, naver.SortSim, err
	}
	filtered := filterSearchItems(items, window)
	usedSort := naver.SortSim

	if len(filtered) < n {
		logger.Info("search fallback to date sort", "query", query, "filtered", len(filtered), "need", n)
		items, err = s.Search(ctx, query, searchDisplay, naver.SortDate)
		if err != nil {
			return nil, usedSort, err
		}
		filtered = filterSearchItems(items, window)
		usedSort = naver.SortDate
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PublishedAt.After(*filtered[j].PublishedAt)
	})
	if len(filtered) > n {
		filtered = filtered[:n]
	}
	return filtered, usedSort, nil
}

func filterSearchItems(items []naver.Item, window timeutil.Window) []naver.Item {
	out := make([]naver.Item, 0, len(items))
	for _, it := range items {
		if !naver.IsNewsLink(it) {
			continue
		}
		if !window.Contains(it.PublishedAt) {
			continue
		}
		out = append(out, it)
	}
	return out
}
