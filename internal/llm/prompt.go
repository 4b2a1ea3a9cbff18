package llm

import (
	"context"
	"fmt"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
)

// thinkingInstruction asks the model to reason before answering. Local models
// benefit measurably from the explicit step list.
const thinkingInstruction = `
<thinking>
请先进行深度思考：
1. 分析提供的数据有哪些关键信息？
2. 这些数据说明了什么趋势？
3. 结合专业知识，应该如何解读？
4. 用户真正关心的是什么？
</thinking>

`

// noContextPlaceholder stands in when no market or search context is available.
const noContextPlaceholder = "暂无背景数据"

// BuildAnalysisPrompt assembles the fixed expert-analysis prompt. Downstream
// formatters and graders assume this exact section structure and ordering, so
// treat any change here as a breaking one.
func BuildAnalysisPrompt(question, contextText string) string {
	if contextText == "" {
		contextText = noContextPlaceholder
	}
	return fmt.Sprintf(`%s# 分析任务

## ⚠️ 重要：必须基于以下真实数据进行分析

%s

---

## 用户问题
%s

---

## 分析要求（严格遵守）

1. **必须引用上面提供的真实数据**（股价、涨跌幅、PE、成交量等）
2. **禁止编造数据**，只使用上面提供的信息
3. 基于真实数据给出**具体的、可操作的建议**
4. 明确指出**买入/卖出/持有**的建议和理由
5. 给出**具体的价格区间**（基于上面的真实股价数据）

请基于上述真实数据，开始你的专业分析：`, thinkingInstruction, contextText, question)
}

// AnalyzeWithExpert runs the fixed analysis prompt under an expert's persona.
// A generation failure here is fatal to that expert's round contribution.
func AnalyzeWithExpert(ctx context.Context, g core.Generator, question, expertPrompt, contextText string) (string, error) {
	messages := []core.Message{
		{Role: core.RoleSystem, Content: expertPrompt},
		{Role: core.RoleUser, Content: BuildAnalysisPrompt(question, contextText)},
	}
	return g.Generate(ctx, messages)
}
