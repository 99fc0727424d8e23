package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsletter/internal/feed"
	"github.com/deusflow/newsletter/internal/naver"
	"github.com/deusflow/newsletter/internal/timeutil"
)

func TestAssembleSectionMatchedPair(t *testing.T) {
	feedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, timeutil.KST)
	searchAt := feedAt.Add(5 * time.Minute)

	feedSel := []feed.Item{{
		Section:     "korea-economy",
		Title:       "A Inc beats forecast",
		Link:        "https://www.hankyung.com/article/1",
		PublishedAt: ts(feedAt),
	}}
	searchSel := []naver.Item{{
		Title:       "A Inc profit beats forecast",
		Link:        "https://n.news.naver.com/article/001/0002",
		PublishedAt: ts(searchAt),
	}}

	asn := Match([]string{feedSel[0].Title}, []string{searchSel[0].Title}, 0.35)
	_, matched := asn.Matched(0)
	require.True(t, matched)

	items := AssembleSection("한국 경제", feedSel, searchSel, asn, []string{"<p>body</p>"}, 2)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "한국 경제 | A Inc beats forecast", it.Title)
	assert.Contains(t, it.SourceLine, "한국경제(2025-03-10 12:00)")
	assert.Contains(t, it.SourceLine, "네이버 뉴스(2025-03-10 12:05)")
	assert.Equal(t, "<p>body</p>", it.BodyHTML)
	assert.Contains(t, it.MainLinksHTML, feedSel[0].Link)
	assert.Contains(t, it.RelatedLinksHTML, searchSel[0].Link)
	assert.False(t, it.IsExtra)
}

func TestAssembleSectionUnmatchedPrimary(t *testing.T) {
	feedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, timeutil.KST)
	feedSel := []feed.Item{{
		Title:       "lonely headline",
		Link:        "https://www.hankyung.com/article/2",
		PublishedAt: ts(feedAt),
	}}

	asn := Match([]string{feedSel[0].Title}, nil, 0.35)
	items := AssembleSection("IT", feedSel, nil, asn, []string{"<p>b</p>"}, 2)
	require.Len(t, items, 1)

	assert.Equal(t, "출처/작성시간: 한국경제(2025-03-10 12:00)", items[0].SourceLine)
	assert.Empty(t, items[0].RelatedLinksHTML)
}

func TestAssembleSectionExtrasCap(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, timeutil.KST)

	searchSel := make([]naver.Item, 5)
	for i := range searchSel {
		searchSel[i] = naver.Item{
			Title:       []string{"e1", "e2", "e3", "e4", "e5"}[i],
			Link:        "https://n.news.naver.com/article/001/000" + string(rune('1'+i)),
			PublishedAt: ts(now.Add(-time.Duration(i) * time.Hour)),
		}
	}

	asn := Match(nil, []string{"e1", "e2", "e3", "e4", "e5"}, 0.35)
	items := AssembleSection("세계 경제", nil, searchSel, asn, nil, 2)

	require.Len(t, items, 2, "extras must be capped")
	assert.Equal(t, "세계 경제 | e1", items[0].Title)
	assert.Equal(t, "세계 경제 | e2", items[1].Title)
	for _, it := range items {
		assert.True(t, it.IsExtra)
		assert.Empty(t, it.BodyHTML, "extras carry no generated body")
		assert.Empty(t, it.MainLinksHTML)
	}
}

func TestAssembleSectionExtrasSkipConsumed(t *testing.T) {
	feedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, timeutil.KST)
	feedSel := []feed.Item{{Title: "shared topic headline", Link: "https://www.hankyung.com/article/3", PublishedAt: ts(feedAt)}}
	searchSel := []naver.Item{
		{Title: "shared topic headline", Link: "https://n.news.naver.com/a/1", PublishedAt: ts(feedAt)},
		{Title: "something else entirely", Link: "https://n.news.naver.com/a/2", PublishedAt: ts(feedAt)},
	}

	asn := Match([]string{feedSel[0].Title}, []string{searchSel[0].Title, searchSel[1].Title}, 0.35)
	items := AssembleSection("IT", feedSel, searchSel, asn, []string{""}, 2)

	require.Len(t, items, 2)
	assert.False(t, items[0].IsExtra)
	assert.True(t, items[1].IsExtra)
	assert.Contains(t, items[1].Title, "something else entirely")
}
