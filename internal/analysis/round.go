package analysis

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/llm"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
)

// RoundExecutor runs one synchronized batch of per-expert analyses. All
// generation calls for a round share the same question and context but carry
// each expert's own persona prompt.
type RoundExecutor struct {
	gen      core.Generator
	logger   *logging.Logger
	progress core.ProgressFunc
}

// NewRoundExecutor creates a round executor.
func NewRoundExecutor(gen core.Generator, logger *logging.Logger, progress core.ProgressFunc) *RoundExecutor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if progress == nil {
		progress = func(string) {}
	}
	return &RoundExecutor{gen: gen, logger: logger, progress: progress}
}

// Run fans out one generation call per expert and waits for all of them.
// Rounds are all-or-nothing: any single failure invalidates the round and
// surfaces as ErrExpertAnalysisFailed naming the failing expert. Retry policy
// belongs to the caller; no per-expert retry happens here.
func (r *RoundExecutor) Run(ctx context.Context, experts []*core.Expert, question, contextText string) (map[string]core.ExpertAnalysis, error) {
	if len(experts) == 0 {
		return nil, core.ErrNoExperts()
	}

	var mu sync.Mutex
	analyses := make(map[string]core.ExpertAnalysis, len(experts))

	g, gctx := errgroup.WithContext(ctx)
	for _, expert := range experts {
		expert := expert
		g.Go(func() error {
			text, err := llm.AnalyzeWithExpert(gctx, r.gen, question, expert.SystemPrompt, contextText)
			if err != nil {
				r.logger.Error("expert analysis failed", "expert", expert.Name, "error", err)
				return core.ErrExpertAnalysisFailed(expert.Name, err)
			}
			mu.Lock()
			analyses[expert.Name] = core.ExpertAnalysis{
				ExpertName:  expert.Name,
				ExpertEmoji: expert.Emoji,
				Analysis:    text,
			}
			mu.Unlock()
			r.progress("  " + expert.DisplayName() + " 完成分析")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return analyses, nil
}

// Ordered maps the round output back onto the input expert order.
func Ordered(experts []*core.Expert, analyses map[string]core.ExpertAnalysis) []core.ExpertAnalysis {
	out := make([]core.ExpertAnalysis, 0, len(experts))
	for _, e := range experts {
		if a, ok := analyses[e.Name]; ok {
			out = append(out, a)
		}
	}
	return out
}
