// Package naver is a thin client for the Naver news search open API, the
// secondary source used to corroborate feed items and surface extras.
package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/deusflow/newsletter/internal/timeutil"
)

const apiURL = "https://openapi.naver.com/v1/search/news.json"

// Sort selects the API's result ordering.
type Sort string

const (
	// SortSim is the relevance-like primary mode.
	SortSim Sort = "sim"
	// SortDate is the recency fallback mode.
	SortDate Sort = "date"
)

// Item is one normalized search hit. Link points at the syndicated copy,
// OriginalLink at the publisher's own page.
type Item struct {
	Title        string
	Link         string
	OriginalLink string
	Description  string
	PublishedAt  *time.Time
}

// OriginalHost returns the publisher host, www-stripped and lowercased.
func (it Item) OriginalHost() string {
	link := it.OriginalLink
	if link == "" {
		link = it.Link
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// IsNewsLink reports whether the item's link resolves to an on-platform
// Naver news article. Hits outside the platform can't be linked reliably
// from the newsletter and are filtered out.
func IsNewsLink(it Item) bool {
	lk := it.Link
	return strings.Contains(lk, "n.news.naver.com") ||
		strings.Contains(lk, "news.naver.com") ||
		strings.Contains(lk, "openapi.naver.com/l")
}

// Client calls the Naver open API with a credential header pair.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

func NewClient(clientID, clientSecret string, timeout time.Duration) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("naver client id/secret is missing")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
	}, nil
}

type searchResponse struct {
	Items []struct {
		Title        string `json:"title"`
		OriginalLink string `json:"originallink"`
		Link         string `json:"link"`
		Description  string `json:"description"`
		PubDate      string `json:"pubDate"`
	} `json:"items"`
}

// Search runs one query. display is clamped to the API's documented [1,100].
func (c *Client) Search(ctx context.Context, query string, display int, sort Sort) ([]Item, error) {
	if display < 1 {
		display = 1
	}
	if display > 100 {
		display = 100
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(display))
	params.Set("start", "1")
	params.Set("sort", string(sort))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build naver request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("naver search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("naver API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode naver response: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, raw := range parsed.Items {
		items = append(items, Item{
			Title:        StripTags(raw.Title),
			Link:         strings.TrimSpace(raw.Link),
			OriginalLink: strings.TrimSpace(raw.OriginalLink),
			Description:  StripTags(raw.Description),
			PublishedAt:  parsePubDate(raw.PubDate),
		})
	}
	return items, nil
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// StripTags removes the API's <b> highlight markup and common entities.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	s = tagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	return strings.TrimSpace(s)
}

// parsePubDate parses the RFC1123Z pubDate (carries +0900) into KST.
func parsePubDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC1123Z, s)
	if err != nil {
		if t, err = time.Parse(time.RFC1123, s); err != nil {
			return nil
		}
	}
	kst := t.In(timeutil.KST)
	return &kst
}
