package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchArticleTextGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><article>
			<p>첫 번째 문단입니다. 기사의 핵심 내용을 담고 있습니다.</p>
			<p>두 번째 문단입니다. 추가 배경 설명이 이어집니다.</p>
			<p>ⓒ 한경닷컴, 무단전재 및 재배포 금지</p>
		</article></body></html>`))
	}))
	defer srv.Close()

	text, err := FetchArticleText(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, text, "첫 번째 문단입니다")
	assert.Contains(t, text, "두 번째 문단입니다")
	assert.NotContains(t, text, "무단전재")
}

func TestFetchArticleTextHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := FetchArticleText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFetchArticleTextNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div>nav</div></body></html>`))
	}))
	defer srv.Close()

	_, err := FetchArticleText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no article content")
}

func TestCleanContent(t *testing.T) {
	in := strings.Join([]string{
		"정상적인   기사  문단입니다.",
		"짧음",
		"저작권자 한국경제. 무단전재 금지",
		"또 다른 정상 문단입니다.",
	}, "\n")

	got := cleanContent(in)

	assert.Equal(t, "정상적인 기사 문단입니다.\n또 다른 정상 문단입니다.", got)
	assert.Equal(t, "", cleanContent(""))
}

func TestExtractGenericContentStopsAtEnoughParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<article>
				<p>기사 본문 첫 번째 문단입니다. 충분히 긴 내용.</p>
				<p>기사 본문 두 번째 문단입니다. 충분히 긴 내용.</p>
				<p>기사 본문 세 번째 문단입니다. 충분히 긴 내용.</p>
			</article>
			<footer><p>푸터에 있는 무관한 텍스트 문단입니다. 꽤 깁니다.</p></footer>
		</body></html>`))
	}))
	defer srv.Close()

	text, err := FetchArticleText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotContains(t, text, "푸터에")
}
