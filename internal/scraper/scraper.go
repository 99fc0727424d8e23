// Package scraper extracts article body text from source pages for the
// rewriting step.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

// FetchArticleText downloads an article page and extracts its readable
// body text. An empty string with nil error never happens: extraction
// failure is an error so the caller can decide what to feed the rewriter.
func FetchArticleText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build article request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("load article page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article page HTTP %d: %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse article HTML: %w", err)
	}

	var content string
	if strings.Contains(url, "hankyung.com") {
		content = extractHankyungContent(doc)
	}
	if content == "" {
		content = extractGenericContent(doc)
	}

	content = cleanContent(content)
	if content == "" {
		return "", fmt.Errorf("no article content found: %s", url)
	}
	return content, nil
}

// extractHankyungContent targets hankyung.com article markup.
func extractHankyungContent(doc *goquery.Document) string {
	selectors := []string{
		"#articletxt",
		".article-body",
		".article-body-content p",
		"div.article-body p",
	}

	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if len(text) > 100 {
			return text
		}
	}
	return ""
}

// extractGenericContent walks common article selectors until enough
// paragraphs accumulate.
func extractGenericContent(doc *goquery.Document) string {
	var paragraphs []string

	selectors := []string{
		"article p",
		".article-content p",
		".post-content p",
		"main p",
		"#content p",
		"p",
	}

	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

// cleanContent normalizes whitespace and drops boilerplate lines.
func cleanContent(content string) string {
	if content == "" {
		return ""
	}

	junkIndicators := []string{
		"무단전재", "재배포 금지", "구독하세요", "기자 페이지",
		"저작권자", "ⓒ 한경닷컴",
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) < 8 {
			continue
		}
		junk := false
		for _, indicator := range junkIndicators {
			if strings.Contains(line, indicator) {
				junk = true
				break
			}
		}
		if !junk {
			lines = append(lines, line)
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
