package analysis

import (
	"strings"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
)

// Keyword sets for the lexical agreement heuristic.
var (
	agreementKeywords    = []string{"同意", "一致", "相似", "支持", "认同", "agree", "similar"}
	disagreementKeywords = []string{"不同意", "分歧", "反对", "质疑", "disagree", "differ"}
)

// neutralConsensus is returned when neither keyword set occurs at all.
const neutralConsensus = 0.7

// ConsensusEvaluator scores agreement across a round's expert outputs.
//
// This is a coarse lexical heuristic, not semantic agreement: it counts
// occurrences of fixed agreement and disagreement keywords across all
// analysis texts. That trade-off is deliberate — it gives a local,
// dependency-light signal without burning a second model call per round.
type ConsensusEvaluator struct{}

// NewConsensusEvaluator creates an evaluator.
func NewConsensusEvaluator() *ConsensusEvaluator {
	return &ConsensusEvaluator{}
}

// Score returns a consensus value in [0, 1]. Fewer than two analyses is
// trivial consensus (1.0); zero keyword hits yields the neutral default.
func (e *ConsensusEvaluator) Score(analyses []core.ExpertAnalysis) float64 {
	if len(analyses) < 2 {
		return 1.0
	}

	var agreement, disagreement int
	for _, a := range analyses {
		text := strings.ToLower(a.Analysis)
		for _, kw := range agreementKeywords {
			agreement += strings.Count(text, kw)
		}
		for _, kw := range disagreementKeywords {
			disagreement += strings.Count(text, kw)
		}
	}

	if agreement+disagreement == 0 {
		return neutralConsensus
	}

	raw := float64(agreement) / float64(agreement+disagreement+1)
	return clamp01(0.5 + raw*0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
