package export

import (
	"fmt"
	"strings"
)

// XiaohongshuExporter renders the report as a 小红书 note: short hook, emoji
// bullet points, key takeaway, hashtags.
type XiaohongshuExporter struct{}

// Name implements core.Exporter.
func (e *XiaohongshuExporter) Name() string { return "xiaohongshu" }

var xhsPointEmojis = []string{"📌", "💰", "📊", "🎯", "💡"}

// Export implements core.Exporter.
func (e *XiaohongshuExporter) Export(content string, meta map[string]string) (string, error) {
	title := metaOr(meta, "title", "专家分析")
	question := metaOr(meta, "question", title)

	titleRunes := []rune(title)
	if len(titleRunes) > 20 {
		title = string(titleRunes[:20]) + "..."
	}

	return fmt.Sprintf(`🔥 %s

%s

---

%s

---

💡 核心观点：
%s

---

⚠️ 温馨提示：
投资有风险，本文仅供参考哦～

---

%s
`, title, "很多人问我："+question, xhsMainPoints(content), xhsTakeaway(content), xhsTags(question)), nil
}

// xhsMainPoints picks up to five bullet lines, falling back to long
// paragraphs when the report has no bullets.
func xhsMainPoints(content string) string {
	lines := strings.Split(content, "\n")
	var points []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") && !strings.HasPrefix(trimmed, "*") {
			continue
		}
		clean := strings.TrimSpace(strings.TrimLeft(trimmed, "-*"))
		if len([]rune(clean)) <= 10 {
			continue
		}
		points = append(points, fmt.Sprintf("%s %s...", xhsPointEmojis[len(points)%len(xhsPointEmojis)], truncateRunes(clean, 60)))
		if len(points) == 5 {
			break
		}
	}

	if len(points) == 0 {
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if len([]rune(trimmed)) <= 30 || strings.HasPrefix(trimmed, "#") {
				continue
			}
			points = append(points, fmt.Sprintf("%s %s...", xhsPointEmojis[len(points)%4], truncateRunes(trimmed, 80)))
			if len(points) == 4 {
				break
			}
		}
	}

	if len(points) == 0 {
		return "详见完整分析报告～"
	}
	return strings.Join(points, "\n\n")
}

func xhsTakeaway(content string) string {
	idx := strings.Index(content, "综合结论")
	if idx < 0 {
		return "需要综合考虑多方因素，理性决策～"
	}
	rest := content[idx:]
	if end := strings.Index(rest[10:], "##"); end >= 0 {
		rest = rest[:10+end]
	}
	rest = strings.NewReplacer("## 综合结论", "", "# 综合结论", "", "综合结论", "").Replace(rest)
	rest = strings.TrimSpace(rest)
	if len([]rune(rest)) > 150 {
		return truncateRunes(rest, 150) + "..."
	}
	return rest
}

func xhsTags(question string) string {
	tags := []string{"#投资理财", "#财经分析", "#AI分析"}
	if strings.Contains(question, "股") {
		tags = append(tags, "#股票", "#A股")
	}
	if strings.Contains(question, "楼市") || strings.Contains(question, "房") {
		tags = append(tags, "#房产", "#楼市")
	}
	if strings.Contains(question, "基金") {
		tags = append(tags, "#基金", "#定投")
	}
	if len(tags) > 6 {
		tags = tags[:6]
	}
	return strings.Join(tags, " ")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
