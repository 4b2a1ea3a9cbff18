package analysis

import (
	"fmt"
	"strings"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
)

// maxReferences bounds the references section of a rendered report.
const maxReferences = 5

// RenderMarkdown converts a finished result into the canonical markdown
// report: header metadata, consensus, one section per expert, then up to
// five references in the order first retrieved.
func RenderMarkdown(r *core.AnalysisResult) string {
	var b strings.Builder

	b.WriteString("# 分析报告\n\n")
	fmt.Fprintf(&b, "**问题**: %s\n\n", r.Question)
	fmt.Fprintf(&b, "**分析时间**: %s\n\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**迭代次数**: %d\n\n", r.IterationCount)
	b.WriteString("---\n\n")

	b.WriteString("## 综合结论\n\n")
	b.WriteString(r.Consensus)
	b.WriteString("\n\n---\n\n")

	b.WriteString("## 专家分析\n\n")
	for _, a := range r.ExpertAnalyses {
		fmt.Fprintf(&b, "### %s %s\n\n%s\n\n", a.ExpertEmoji, a.ExpertName, a.Analysis)
	}

	b.WriteString("---\n\n## 参考资料\n\n")
	for i, res := range r.SearchResults {
		if i == maxReferences {
			break
		}
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, res.Title, res.URL)
	}

	return b.String()
}
