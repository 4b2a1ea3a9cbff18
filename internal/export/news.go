package export

import (
	"fmt"
	"strings"
	"time"
)

// NewsExporter renders the report as a wire-style news article: category,
// headline, dateline, lead, body, attribution.
type NewsExporter struct {
	// Now allows tests to pin the dateline.
	Now func() time.Time
}

// Name implements core.Exporter.
func (e *NewsExporter) Name() string { return "news" }

// Export implements core.Exporter.
func (e *NewsExporter) Export(content string, meta map[string]string) (string, error) {
	title := metaOr(meta, "title", "专家分析报告")
	question := metaOr(meta, "question", title)

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	t := now()
	dateline := fmt.Sprintf("北京，%d年%d月%d日电", t.Year(), int(t.Month()), t.Day())

	return fmt.Sprintf(`【%s】%s

%s

%s

%s

---

【分析来源】多专家协作分析系统

【免责声明】本文内容由人工智能生成，仅供参考，不构成投资建议。投资者应根据自身情况做出独立判断。

（完）
`, newsCategory(question), newsHeadline(question), dateline, newsLead(question, content), newsBody(content)), nil
}

func newsCategory(question string) string {
	switch {
	case containsAny(question, "股票", "股市", "A股", "基金"):
		return "财经"
	case containsAny(question, "楼市", "房产", "房价"):
		return "房产"
	case containsAny(question, "政策", "监管", "改革"):
		return "政经"
	case containsAny(question, "科技", "AI", "互联网"):
		return "科技"
	default:
		return "财经"
	}
}

func newsHeadline(question string) string {
	headline := question
	for _, drop := range []string{"？", "?", "吗", "是否"} {
		headline = strings.ReplaceAll(headline, drop, "")
	}
	runes := []rune(headline)
	if len(runes) > 30 {
		headline = string(runes[:30]) + "..."
	}
	return "多位专家分析：" + headline
}

func newsLead(question, content string) string {
	lead := fmt.Sprintf("针对「%s」这一问题，分析系统汇集多位专家观点，经过多轮迭代分析后得出结论。", question)
	if conclusion := extractConclusion(content, 200); conclusion != "" {
		lead += fmt.Sprintf("\n\n专家组认为：%s...", conclusion)
	}
	return lead
}

// newsBody strips markdown headers into the news bracket style.
func newsBody(content string) string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "# "):
			// drop main title
		case strings.HasPrefix(line, "## "):
			section := strings.TrimSpace(strings.TrimPrefix(line, "## "))
			out = append(out, fmt.Sprintf("\n**【%s】**\n", section))
		case strings.HasPrefix(line, "### "):
			sub := strings.TrimSpace(strings.TrimPrefix(line, "### "))
			out = append(out, fmt.Sprintf("\n%s表示：", sub))
		case strings.TrimSpace(line) != "":
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// extractConclusion pulls the first paragraph of the 综合结论 section,
// bounded to max runes.
func extractConclusion(content string, max int) string {
	idx := strings.Index(content, "综合结论")
	if idx < 0 {
		return ""
	}
	rest := content[idx+len("综合结论"):]
	// Skip the remainder of the header line and any blank lines after it.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	rest = strings.TrimLeft(rest, "\n \t")
	if end := strings.Index(rest, "\n\n"); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimSpace(rest)
	runes := []rune(rest)
	if len(runes) > max {
		rest = string(runes[:max])
	}
	return rest
}

func metaOr(meta map[string]string, key, fallback string) string {
	if v, ok := meta[key]; ok && v != "" {
		return v
	}
	return fallback
}
