package retrieval

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sogouSamplePage = `
<html><body>
<div class="vrwrap">
  <h3 class="vr-title"><a href="/link?url=abc123" target="_blank">A股市场<em>震荡</em>走势分析</a></h3>
  <p class="str-text str">今日A股三大指数集体震荡，成交量较昨日放大。</p>
</div>
<div class="vrwrap">
  <h3 class="vr-title"><a href="https://finance.example.com/news/1">机构观点：关注政策窗口</a></h3>
  <p class="str_info str">多家机构认为政策窗口临近。</p>
</div>
<div class="vrwrap">
  <h3 class="vr-title"><a href="https://short.example.com/x">ab</a></h3>
</div>
</body></html>`

func TestSogouSearchParsesResults(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(sogouSamplePage))
	}))
	defer srv.Close()

	p := NewSogouProvider(WithSogouBaseURL(srv.URL))
	results, err := p.Search(context.Background(), "A股走势", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "A股走势" {
		t.Errorf("query = %q", gotQuery)
	}
	// The two-character title is filtered out.
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if first.Title != "A股市场震荡走势分析" {
		t.Errorf("Title = %q, tags should be stripped", first.Title)
	}
	if !strings.HasPrefix(first.URL, "https://www.sogou.com/link?url=") {
		t.Errorf("URL = %q, relative link should be absolute", first.URL)
	}
	if !strings.Contains(first.Snippet, "三大指数") {
		t.Errorf("Snippet = %q", first.Snippet)
	}

	if results[1].URL != "https://finance.example.com/news/1" {
		t.Errorf("absolute URL should pass through, got %q", results[1].URL)
	}
}

func TestSogouSearchMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sogouSamplePage))
	}))
	defer srv.Close()

	p := NewSogouProvider(WithSogouBaseURL(srv.URL))
	results, err := p.Search(context.Background(), "q", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestSogouSearchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewSogouProvider(WithSogouBaseURL(srv.URL))
	if _, err := p.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestSogouSnippetFallback(t *testing.T) {
	page := `<h3><a href="https://example.com/1">一条没有摘要的结果标题</a></h3>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	p := NewSogouProvider(WithSogouBaseURL(srv.URL))
	results, err := p.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Snippet != "来源: 搜狗搜索" {
		t.Errorf("Snippet = %q, want the placeholder", results[0].Snippet)
	}
}
