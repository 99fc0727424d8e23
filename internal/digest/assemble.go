package digest

import (
	"fmt"

	"github.com/deusflow/newsletter/internal/feed"
	"github.com/deusflow/newsletter/internal/naver"
	"github.com/deusflow/newsletter/internal/timeutil"
)

const noDateLabel = "NO_DATE"

// AssembleSection builds the section's final render list: one entry per
// primary item whether or not it matched, then leftover search items as
// capped extras in their post-sort order. bodies carries the rewritten
// body HTML per primary item; extras get no body, so no rewriting call is
// ever spent on them.
func AssembleSection(sectionName string, feedSel []feed.Item, searchSel []naver.Item, asn Assignment, bodies []string, extrasCap int) []RenderItem {
	items := make([]RenderItem, 0, len(feedSel)+extrasCap)

	for i, fi := range feedSel {
		published := noDateLabel
		if fi.PublishedAt != nil {
			published = timeutil.FormatDateTime(*fi.PublishedAt)
		}

		var matched *naver.Item
		if j, ok := asn.Matched(i); ok {
			matched = &searchSel[j]
		}

		srcLine := fmt.Sprintf("출처/작성시간: 한국경제(%s)", published)
		if matched != nil && matched.PublishedAt != nil {
			srcLine = fmt.Sprintf("출처/작성시간: 한국경제(%s), 네이버 뉴스(%s)",
				published, timeutil.FormatDateTime(*matched.PublishedAt))
		}

		var body string
		if i < len(bodies) {
			body = bodies[i]
		}

		related := ""
		if matched != nil {
			related = fmt.Sprintf("관련기사: <a href='%s'>관련기사1(네이버)</a>", matched.Link)
		}

		items = append(items, RenderItem{
			Section:          sectionName,
			Title:            fmt.Sprintf("%s | %s", sectionName, fi.Title),
			SourceLine:       srcLine,
			BodyHTML:         body,
			MainLinksHTML:    fmt.Sprintf("원문 링크: <a href='%s'>자세히 보기(한국경제)</a>", fi.Link),
			RelatedLinksHTML: related,
			IsExtra:          false,
		})
	}

	extras := 0
	for j, si := range searchSel {
		if asn.Consumed[j] {
			continue
		}
		if extras >= extrasCap {
			break
		}
		published := noDateLabel
		if si.PublishedAt != nil {
			published = timeutil.FormatDateTime(*si.PublishedAt)
		}
		items = append(items, RenderItem{
			Section:    sectionName,
			Title:      fmt.Sprintf("%s | %s", sectionName, si.Title),
			SourceLine: fmt.Sprintf("출처/작성시간: <a href='%s'>네이버 뉴스(%s)</a>", si.Link, published),
			IsExtra:    true,
		})
		extras++
	}

	return items
}
