// Package render builds the final newsletter HTML document.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deusflow/newsletter/internal/digest"
)

const pageHead = `<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8"/>
<style>
body {
    font-family: "Apple SD Gothic Neo", "Noto Sans KR", Arial, sans-serif;
    line-height: 1.65;
    color: #222;
}
.wrapper {
    max-width: 860px;
    margin: 0 auto;
}
.header-box {
    background: #f7f3ee;
    border: 1px solid #d7c7b8;
    border-radius: 12px;
    padding: 20px 24px;
    margin-bottom: 30px;
}
.header-title {
    font-size: 22px;
    font-weight: 900;
    color: #1f5d2b;
    margin-bottom: 8px;
}
.header-note {
    font-size: 14px;
    color: #555;
    line-height: 1.35;
}
.section-title {
    font-size: 20px;
    font-weight: 700;
    color: #5a3a26;
    margin-top: 36px;
    padding-bottom: 6px;
    border-bottom: 3px solid #b38b6d;
}
.article {
    margin-top: 24px;
    padding-bottom: 24px;
    border-bottom: 1px solid #e3e3e3;
}
.article-title {
    font-size: 18px;
    font-weight: 800;
    margin-bottom: 6px;
}
.source-line {
    font-size: 13px;
    color: #666;
    margin-bottom: 10px;
}
.body {
    font-size: 15px;
    margin-bottom: 10px;
}
.links {
    font-size: 14px;
}
.link-label {
    color: #666;
    font-weight: normal;
}
a.main-link {
    color: #1f5d2b;
    font-weight: 900;
    text-decoration: none;
}
a.main-link:hover {
    text-decoration: underline;
}
.links a {
    color: #1f7a3f;
    font-weight: 800;
    text-decoration: none;
}
.links a:hover {
    text-decoration: underline;
}
.extra {
    background: #fafafa;
    padding: 10px 14px;
    border-radius: 6px;
    margin-top: 10px;
}
</style>
</head>
<body>
<div class="wrapper">
`

var anchorRe = regexp.MustCompile(`<a\b[^>]*>`)

// styleMainLinks wraps the source label in a muted span and injects the
// main-link class into the anchor so it picks up the header color.
func styleMainLinks(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "원문 링크:") && !strings.Contains(s, "link-label") {
		s = strings.Replace(s, "원문 링크:", "<span class='link-label'>원문 링크:</span>", 1)
	}
	return anchorRe.ReplaceAllStringFunc(s, func(tag string) string {
		if strings.Contains(tag, "main-link") {
			return tag
		}
		if strings.Contains(tag, "class=") {
			return tag
		}
		return tag[:len(tag)-1] + " class='main-link'>"
	})
}

// Newsletter renders the whole document: header box, then each section's
// items in sectionOrder. Extras render as compact boxes without a body.
func Newsletter(topNote, title string, sectionOrder []string, sections map[string][]digest.RenderItem) string {
	var b strings.Builder

	b.WriteString(pageHead)
	b.WriteString(fmt.Sprintf(`
<div class="header-box">
    <div class="header-title">%s</div>
    <div class="header-note">%s</div>
</div>
`, title, topNote))

	for _, section := range sectionOrder {
		items := sections[section]
		if len(items) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("<div class='section-title'>%s</div>\n", section))

		for _, item := range items {
			if item.IsExtra {
				b.WriteString(fmt.Sprintf(`
<div class="extra">
    <div class="article-title">%s</div>
    <div class="source-line">%s</div>
</div>
`, item.Title, item.SourceLine))
				continue
			}

			b.WriteString(fmt.Sprintf(`
<div class="article">
    <div class="article-title">%s</div>
    <div class="source-line">%s</div>
    <div class="body">%s</div>
    <div class="links">%s</div>
`, item.Title, item.SourceLine, item.BodyHTML, styleMainLinks(item.MainLinksHTML)))

			if item.RelatedLinksHTML != "" {
				b.WriteString(fmt.Sprintf("    <div class=\"links\">%s</div>\n", item.RelatedLinksHTML))
			}
			b.WriteString("</div>\n")
		}
	}

	b.WriteString("\n</div>\n</body>\n</html>\n")
	return b.String()
}
