// Package app wires the sources, the reconciliation core, rendering and
// delivery into the per-day run.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deusflow/newsletter/internal/config"
	"github.com/deusflow/newsletter/internal/digest"
	"github.com/deusflow/newsletter/internal/feed"
	"github.com/deusflow/newsletter/internal/logger"
	"github.com/deusflow/newsletter/internal/mailer"
	"github.com/deusflow/newsletter/internal/metrics"
	"github.com/deusflow/newsletter/internal/naver"
	"github.com/deusflow/newsletter/internal/render"
	"github.com/deusflow/newsletter/internal/rewrite"
	"github.com/deusflow/newsletter/internal/scraper"
	"github.com/deusflow/newsletter/internal/state"
	"github.com/deusflow/newsletter/internal/timeutil"
)

// Rewriter is the text-generation boundary; it degrades internally and
// never fails the run.
type Rewriter interface {
	Rewrite(ctx context.Context, req rewrite.Request) string
}

type App struct {
	cfg      *config.Config
	store    *state.Store
	searcher digest.Searcher // nil in feed-only mode
	rewriter Rewriter
	mail     mailer.Mailer

	// Boundaries injectable in tests
	fetchFeed func(ctx context.Context, s config.Section) ([]feed.Item, error)
	fetchText func(ctx context.Context, url string) (string, error)
	now       func() time.Time
}

func New(cfg *config.Config, store *state.Store, searcher digest.Searcher, rw Rewriter, mail mailer.Mailer) *App {
	return &App{
		cfg:       cfg,
		store:     store,
		searcher:  searcher,
		rewriter:  rw,
		mail:      mail,
		fetchFeed: feed.Fetch,
		fetchText: scraper.FetchArticleText,
		now:       timeutil.Now,
	}
}

// Run executes the daily pipeline with idempotent-success gating and the
// bounded attempt loop. Returns nil when the day is (or already was)
// delivered, an error after the attempt budget is exhausted.
func (a *App) Run(ctx context.Context) error {
	now := a.now()
	runDate := timeutil.RunDate(now)
	window := timeutil.LastDay(now)

	logger.Info("newsletter run started", "run_date", runDate,
		"window_start", timeutil.FormatDateTime(window.Start),
		"window_end", timeutil.FormatDateTime(window.End),
		"recipients", len(a.cfg.Recipients))

	done, err := a.store.IsSuccess(runDate)
	if err != nil {
		return fmt.Errorf("check run state: %w", err)
	}
	if done {
		logger.Info("already SUCCESS, nothing to do", "run_date", runDate)
		return nil
	}

	if a.searcher == nil {
		logger.Info("naver credentials missing, feed-only mode")
	}

	runnerCfg := state.RunnerConfig{
		MaxAttempts: a.cfg.RetryMaxAttempts,
		Interval:    a.cfg.RetryInterval,
	}
	return state.Run(ctx, a.store, runDate, runnerCfg, func(ctx context.Context) error {
		return a.attempt(ctx, now, runDate, window)
	})
}

// attempt is one full pipeline pass. Any returned error is recorded by the
// runner and counted against the day's budget.
func (a *App) attempt(ctx context.Context, now time.Time, runDate string, window timeutil.Window) error {
	started := time.Now()

	sections := make(map[string][]digest.RenderItem, len(a.cfg.Sections))
	order := make([]string, 0, len(a.cfg.Sections))

	for _, section := range a.cfg.Sections {
		items, err := a.buildSection(ctx, section, window)
		if err != nil {
			return fmt.Errorf("section %s: %w", section.ID, err)
		}
		sections[section.Name] = items
		order = append(order, section.Name)
	}

	dateLabel := timeutil.FormatDate(now)
	blogTitle := fmt.Sprintf(config.BlogTitleFmt, dateLabel)
	mailSubject := fmt.Sprintf(config.MailSubjectFmt, dateLabel)

	html := render.Newsletter(config.TopNote, blogTitle, order, sections)
	logger.Info("newsletter rendered", "title", blogTitle, "html_len", len(html))

	if err := a.writeOutputs(runDate, blogTitle, html); err != nil {
		return err
	}

	if len(a.cfg.Recipients) > 0 {
		if err := a.mail.Send(ctx, a.cfg.Recipients, mailSubject, html); err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		metrics.Global.IncrementMailsSent()
		logger.Info("mail sent", "to", len(a.cfg.Recipients), "subject", mailSubject)
	} else {
		logger.Info("recipients empty, skip sending mail")
	}

	metrics.Global.SetLastRun(time.Since(started))
	return nil
}

// buildSection runs fetch → select → search+fallback → match → rewrite →
// assemble for one section.
func (a *App) buildSection(ctx context.Context, section config.Section, window timeutil.Window) ([]digest.RenderItem, error) {
	raw, err := a.fetchFeed(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	selected := digest.SelectLatest(raw, window, a.cfg.FeedTopN)
	metrics.Global.AddFeedItems(len(selected))
	logger.Info("feed selected", "section", section.ID, "raw", len(raw), "selected", len(selected))

	var searchItems []naver.Item
	if a.searcher != nil {
		query := section.QueryFor()
		items, usedSort, err := digest.SearchWithFallback(ctx, a.searcher, query, window, a.cfg.SearchTopN)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		searchItems = items
		metrics.Global.AddSearchItems(len(searchItems))
		logger.Info("search selected", "section", section.ID, "query", query,
			"used_sort", string(usedSort), "final", len(searchItems))
	}

	primaryTitles := make([]string, len(selected))
	for i, it := range selected {
		primaryTitles[i] = it.Title
	}
	searchTitles := make([]string, len(searchItems))
	for j, it := range searchItems {
		searchTitles[j] = it.Title
	}

	asn := digest.Match(primaryTitles, searchTitles, a.cfg.MatchThreshold)
	metrics.Global.AddMatched(asn.Overlap())
	logger.Info("titles matched", "section", section.ID, "overlap", asn.Overlap(), "of", len(selected))

	bodies := make([]string, len(selected))
	for i, it := range selected {
		text, err := a.fetchText(ctx, it.Link)
		if err != nil {
			return nil, fmt.Errorf("fetch article text: %w", err)
		}

		published := "NO_DATE"
		if it.PublishedAt != nil {
			published = timeutil.FormatDateTime(*it.PublishedAt)
		}

		var related []string
		if j, ok := asn.Matched(i); ok {
			if desc := searchItems[j].Description; desc != "" {
				related = append(related, desc)
			}
		}

		metrics.Global.IncrementRewriteCalls()
		bodies[i] = a.rewriter.Rewrite(ctx, rewrite.Request{
			Title:          it.Title,
			ArticleText:    text,
			PublishedLabel: published,
			Section:        section.ID,
			RelatedTexts:   related,
		})
	}

	items := digest.AssembleSection(section.Name, selected, searchItems, asn, bodies, a.cfg.ExtrasCap)
	extras := 0
	for _, it := range items {
		if it.IsExtra {
			extras++
		}
	}
	metrics.Global.AddExtras(extras)
	logger.Info("section assembled", "section", section.ID,
		"items", len(items), "main", len(selected), "extras", extras)
	return items, nil
}

// writeOutputs saves the HTML newsletter and the TXT blog draft the way the
// publishing flow expects them.
func (a *App) writeOutputs(runDate, blogTitle, html string) error {
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	htmlPath := filepath.Join(a.cfg.OutputDir, fmt.Sprintf("newsletter_%s.html", runDate))
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write newsletter html: %w", err)
	}
	logger.Info("newsletter html saved", "path", htmlPath)

	txtPath := filepath.Join(a.cfg.OutputDir, fmt.Sprintf("newsletter_%s.txt", runDate))
	txt := blogTitle + "\n\n" + config.BlogTags + "\n\n" + html
	if err := os.WriteFile(txtPath, []byte(txt), 0o644); err != nil {
		return fmt.Errorf("write newsletter txt: %w", err)
	}
	logger.Info("newsletter txt saved", "path", txtPath)
	return nil
}
