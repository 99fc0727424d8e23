package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsletter/internal/digest"
)

func TestStyleMainLinks(t *testing.T) {
	in := "원문 링크: <a href='https://example.com/a'>자세히 보기(한국경제)</a>"
	got := styleMainLinks(in)

	assert.Contains(t, got, "<span class='link-label'>원문 링크:</span>")
	assert.Contains(t, got, "class='main-link'")

	// Idempotent: styling twice must not double-wrap.
	assert.Equal(t, got, styleMainLinks(got))

	assert.Equal(t, "", styleMainLinks(""))
}

func TestNewsletterSectionOrderAndContent(t *testing.T) {
	sections := map[string][]digest.RenderItem{
		"한국 경제": {{
			Title:            "한국 경제 | 금리 동결",
			SourceLine:       "출처/작성시간: 한국경제(2025-03-10 09:00)",
			BodyHTML:         "<p>본문</p>",
			MainLinksHTML:    "원문 링크: <a href='https://example.com/1'>자세히 보기(한국경제)</a>",
			RelatedLinksHTML: "관련기사: <a href='https://n.news.naver.com/a/1'>관련기사1(네이버)</a>",
		}},
		"IT": {{
			Title:      "IT | 신제품 발표",
			SourceLine: "출처/작성시간: <a href='https://n.news.naver.com/a/2'>네이버 뉴스(2025-03-10 10:00)</a>",
			IsExtra:    true,
		}},
	}

	html := Newsletter("오늘의 소식", "뉴스레터 2025년 03월 10일", []string{"한국 경제", "IT"}, sections)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, `<div class="header-title">뉴스레터 2025년 03월 10일</div>`)
	assert.Contains(t, html, `<div class="header-note">오늘의 소식</div>`)

	koreaIdx := strings.Index(html, "한국 경제</div>")
	itIdx := strings.Index(html, "IT</div>")
	require.Greater(t, koreaIdx, 0)
	require.Greater(t, itIdx, 0)
	assert.Less(t, koreaIdx, itIdx, "sections render in the configured order")

	assert.Contains(t, html, "<p>본문</p>")
	assert.Contains(t, html, "관련기사1(네이버)")
	assert.Contains(t, html, `<div class="extra">`)
	assert.True(t, strings.HasSuffix(html, "</html>\n"))
}

func TestNewsletterSkipsEmptySections(t *testing.T) {
	html := Newsletter("note", "title", []string{"빈 섹션", "세계 경제"}, map[string][]digest.RenderItem{
		"세계 경제": {{Title: "세계 경제 | 기사", SourceLine: "출처/작성시간: 한국경제(NO_DATE)"}},
	})

	assert.NotContains(t, html, "빈 섹션")
	assert.Contains(t, html, "세계 경제")
}

func TestNewsletterExtraHasNoBodyBlock(t *testing.T) {
	html := Newsletter("n", "t", []string{"IT"}, map[string][]digest.RenderItem{
		"IT": {{Title: "IT | extra", SourceLine: "src", IsExtra: true}},
	})

	assert.NotContains(t, html, `<div class="body">`)
	assert.NotContains(t, html, `<div class="links">`)
}
