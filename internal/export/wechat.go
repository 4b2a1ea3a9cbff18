package export

import (
	"fmt"
	"strings"
	"time"
)

// WeChatExporter renders the report as a 公众号 long-form article with emoji
// section headers and the standard disclaimer footer.
type WeChatExporter struct {
	Now func() time.Time
}

// Name implements core.Exporter.
func (e *WeChatExporter) Name() string { return "wechat" }

// Export implements core.Exporter.
func (e *WeChatExporter) Export(content string, meta map[string]string) (string, error) {
	title := metaOr(meta, "title", "专家分析报告")

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	t := now()
	date := fmt.Sprintf("%d年%02d月%02d日", t.Year(), int(t.Month()), t.Day())

	return fmt.Sprintf(`# %s

> 💡 本文由 AI 专家分析助手生成，仅供参考，不构成投资建议。

---

%s

---

## 📌 关于本文

本分析报告由多位 AI 专家协作完成，通过迭代自证机制确保分析质量。

**生成时间**: %s

**免责声明**: 本文内容仅供参考，不构成任何投资建议。投资有风险，入市需谨慎。

---

*喜欢这篇分析？欢迎关注我们获取更多专业分析！*
`, title, decorateHeaders(content), date), nil
}

func decorateHeaders(content string) string {
	replacements := map[string]string{
		"## 综合结论": "## 🎯 综合结论",
		"## 专家分析": "## 👨‍💼 专家分析",
		"## 参考资料": "## 📚 参考资料",
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if decorated, ok := replacements[strings.TrimSpace(line)]; ok {
			lines[i] = decorated
		}
	}
	return strings.Join(lines, "\n")
}
