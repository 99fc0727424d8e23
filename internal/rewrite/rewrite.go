// Package rewrite turns raw article text into newsletter body HTML through
// OpenAI, grounded strictly in the provided text. Every failure path falls
// back to a literal excerpt of the source, so rewriting can never fail a run.
package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/deusflow/newsletter/internal/logger"
	"github.com/deusflow/newsletter/internal/metrics"
)

// Request carries everything the rewriter may ground on.
type Request struct {
	Title          string
	ArticleText    string
	PublishedLabel string
	Section        string
	RelatedTexts   []string
}

// fallbackExcerptRunes is the documented excerpt budget when the service is
// unavailable or returns an invalid result.
const fallbackExcerptRunes = 800

// minEvidenceQuotes is the grounding floor: fewer literal quotes than this
// and the response is treated as hallucinated.
const minEvidenceQuotes = 2

type Client struct {
	api   *openai.Client
	model string

	mu          sync.Mutex
	maxRequests int // 0 = unlimited
	used        int
}

// NewClient builds a rewriting client. An empty apiKey yields a
// fallback-only client: excerpts instead of generated bodies.
func NewClient(apiKey, model string, maxRequests int) *Client {
	c := &Client{model: model, maxRequests: maxRequests}
	if apiKey != "" {
		c.api = openai.NewClient(apiKey)
	}
	return c
}

// Rewrite returns body HTML for one article. It degrades to the excerpt
// fallback when the client has no key, the per-run request budget is spent,
// the call fails, or the response doesn't validate.
func (c *Client) Rewrite(ctx context.Context, req Request) string {
	if c.api == nil {
		metrics.Global.IncrementRewriteFallbacks()
		return FallbackExcerpt(req.ArticleText)
	}
	if !c.takeBudget() {
		logger.Warn("rewrite budget spent, using excerpt", "title", req.Title)
		metrics.Global.IncrementRewriteFallbacks()
		return FallbackExcerpt(req.ArticleText)
	}

	body, err := c.rewriteGrounded(ctx, req)
	if err != nil {
		logger.Warn("rewrite failed, using excerpt", "title", req.Title, "error", err)
		metrics.Global.IncrementRewriteFallbacks()
		return FallbackExcerpt(req.ArticleText)
	}
	return textToHTML(body)
}

func (c *Client) takeBudget() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxRequests > 0 && c.used >= c.maxRequests {
		return false
	}
	c.used++
	return true
}

type groundedResponse struct {
	Body           string   `json:"body"`
	Importance     string   `json:"importance"`
	EvidenceQuotes []string `json:"evidence_quotes"`
}

func (c *Client) rewriteGrounded(ctx context.Context, req Request) (string, error) {
	prompt := buildPrompt(req)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return ValidateResponse(resp.Choices[0].Message.Content, req.ArticleText, req.RelatedTexts)
}

// ValidateResponse parses the model's JSON output and enforces the
// grounding contract: non-empty body, a known importance label, and at
// least minEvidenceQuotes quotes that literally occur in the source corpus.
func ValidateResponse(raw, articleText string, relatedTexts []string) (string, error) {
	raw = strings.TrimSpace(raw)
	// Models occasionally wrap the JSON in a code fence despite the rules.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var parsed groundedResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", fmt.Errorf("parse rewrite response: %w", err)
	}

	body := strings.TrimSpace(parsed.Body)
	if body == "" {
		return "", fmt.Errorf("missing body")
	}
	switch parsed.Importance {
	case "HIGH", "MEDIUM", "LOW":
	default:
		return "", fmt.Errorf("invalid importance %q", parsed.Importance)
	}

	corpus := articleText + "\n" + strings.Join(relatedTexts, "\n")
	valid := 0
	for _, q := range parsed.EvidenceQuotes {
		q = strings.TrimSpace(q)
		if q != "" && strings.Contains(corpus, q) {
			valid++
		}
	}
	if valid < minEvidenceQuotes {
		return "", fmt.Errorf("not enough grounded evidence quotes: %d", valid)
	}

	return body, nil
}

func buildPrompt(req Request) string {
	var related strings.Builder
	for i, t := range req.RelatedTexts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		related.WriteString(fmt.Sprintf("\n\n[관련자료 %d]\n%s", i+1, t))
	}

	return strings.TrimSpace(fmt.Sprintf(`
너는 뉴스레터/블로그 글 편집자다. 아래 제공 텍스트(기사 원문 및 관련자료)만을 근거로 글을 풍부하게 다듬어라.

절대 규칙(중요):
- 제공 텍스트 밖의 사실/수치/배경/원인/전망을 추가하지 말 것.
- 확실하지 않으면 반드시 "제공 텍스트만으로 확인 불가"라고 명시할 것.
- 과장/추측/단정 금지.
- 출력은 반드시 JSON 하나만 반환할 것. (코드블록 금지)
- 출력에는 '제목/작성시간/링크'를 포함하지 말 것.

출력 JSON 스키마:
{
  "body": "2~5문장. 블로그에 올릴 문장 톤. 과장 금지. 제공 텍스트 근거만.",
  "importance": "HIGH|MEDIUM|LOW",
  "evidence_quotes": ["제공 텍스트에서 직접 인용한 근거 구절 1", "근거 구절 2", "근거 구절 3(선택)"]
}

작성시간(참고용, 출력에 포함하지 말 것):
- %s

[메타정보]
- 제목: %s

[기사 원문]
%s%s`,
		req.PublishedLabel, req.Title, req.ArticleText, related.String()))
}

// FallbackExcerpt truncates the source text to the excerpt budget and wraps
// it as a paragraph.
func FallbackExcerpt(text string) string {
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > fallbackExcerptRunes {
		text = string(runes[:fallbackExcerptRunes]) + "…"
	}
	return textToHTML(text)
}

func textToHTML(s string) string {
	if s == "" {
		return "<p>요약을 생성하지 못했습니다.</p>"
	}
	s = html.EscapeString(s)
	s = strings.ReplaceAll(s, "\n", "<br/>")
	return fmt.Sprintf("<p style='margin:0 0 10px 0; line-height:1.6;'>%s</p>", s)
}
