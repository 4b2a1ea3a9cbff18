package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
)

// maxRawGapRunes bounds the synthetic gap entry built from unparseable output.
const maxRawGapRunes = 200

// Snippet of each analysis quoted back to the critique persona.
const gapAnalysisExcerptRunes = 500

// gapSystemPrompt is the fixed critique persona.
const gapSystemPrompt = `你是一位研究方法专家，负责识别分析中的信息缺口。

请分析各专家的意见，找出：
1. 哪些观点存在分歧？
2. 哪些信息还不够充分？
3. 需要补充搜索什么内容？

请用JSON格式输出：
{
  "gaps": ["缺口1", "缺口2"],
  "queries": ["补充搜索1", "补充搜索2"]
}`

// GapIdentifier asks the generation gateway to critique a round's analyses
// and extract missing-information gaps plus supplemental search queries.
type GapIdentifier struct {
	gen    core.Generator
	logger *logging.Logger
}

// NewGapIdentifier creates a gap identifier.
func NewGapIdentifier(gen core.Generator, logger *logging.Logger) *GapIdentifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &GapIdentifier{gen: gen, logger: logger}
}

// Identify returns the gap report for a round. Malformed model output never
// fails the run: it degrades to a single synthetic gap entry (the truncated
// raw response) and no supplemental queries.
func (g *GapIdentifier) Identify(ctx context.Context, question string, analyses []core.ExpertAnalysis) core.GapReport {
	excerpts := make([]string, 0, len(analyses))
	for _, a := range analyses {
		excerpts = append(excerpts, fmt.Sprintf("**%s**: %s...", a.ExpertName, truncateRunes(a.Analysis, gapAnalysisExcerptRunes)))
	}

	userPrompt := fmt.Sprintf(`原始问题：%s

各专家分析：
%s

请识别信息缺口和需要补充的搜索。`, question, strings.Join(excerpts, "\n\n"))

	raw, err := g.gen.Generate(ctx, []core.Message{
		{Role: core.RoleSystem, Content: gapSystemPrompt},
		{Role: core.RoleUser, Content: userPrompt},
	})
	if err != nil {
		g.logger.Warn("gap identification call failed", "error", err)
		return core.GapReport{}
	}

	return ParseGapResponse(raw)
}

// ParseGapResponse extracts the JSON object between the first '{' and the
// last '}' of the raw response. Anything unparseable becomes one truncated
// gap entry with an empty query list.
func ParseGapResponse(raw string) core.GapReport {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		var parsed struct {
			Gaps    []string `json:"gaps"`
			Queries []string `json:"queries"`
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err == nil {
			return core.GapReport{Gaps: parsed.Gaps, Queries: parsed.Queries}
		}
	}
	return core.GapReport{
		Gaps:    []string{truncateRunes(raw, maxRawGapRunes)},
		Queries: nil,
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
