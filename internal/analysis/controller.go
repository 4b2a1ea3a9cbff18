package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/catalog"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/retrieval"
)

// Supplemental queries folded back into the question between rounds.
const queryDigestLimit = 2

// Options configure an iterative run.
type Options struct {
	MaxRounds          int
	ConsensusThreshold float64
	MaxExperts         int
	MaxSearchResults   int
	Engine             string // explicit engine for the initial search; "" = default
	OnProgress         core.ProgressFunc
}

func (o *Options) fill() {
	if o.MaxRounds < 1 {
		o.MaxRounds = 3
	}
	// Zero is a legitimate threshold (stop after round 1); only negative
	// values mean unset.
	if o.ConsensusThreshold < 0 {
		o.ConsensusThreshold = 0.8
	}
	if o.MaxExperts < 1 {
		o.MaxExperts = 4
	}
	if o.MaxSearchResults < 1 {
		o.MaxSearchResults = 10
	}
	if o.OnProgress == nil {
		o.OnProgress = func(string) {}
	}
}

// Controller is the top-level state machine: it repeatedly runs rounds,
// evaluates consensus, and either terminates or enriches the context and
// loops again.
type Controller struct {
	catalog   *catalog.Catalog
	gateway   *retrieval.Gateway
	gen       core.Generator
	quotes    core.QuoteProvider // optional
	consensus *ConsensusEvaluator
	gaps      *GapIdentifier
	logger    *logging.Logger
}

// NewController wires the orchestrator from explicitly constructed
// collaborators. There are no hidden singletons; tests inject fakes.
func NewController(cat *catalog.Catalog, gw *retrieval.Gateway, gen core.Generator, quotes core.QuoteProvider, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		catalog:   cat,
		gateway:   gw,
		gen:       gen,
		quotes:    quotes,
		consensus: NewConsensusEvaluator(),
		gaps:      NewGapIdentifier(gen, logger),
		logger:    logger,
	}
}

// Run executes the full iterative analysis for a question. When expertNames
// is non-empty the catalog resolves them directly; otherwise relevance
// selection picks the panel.
func (c *Controller) Run(ctx context.Context, question string, expertNames []string, opts Options) (*core.AnalysisResult, error) {
	opts.fill()
	progress := opts.OnProgress
	runID := uuid.NewString()
	logger := c.logger.WithRun(runID)

	// 1. Expert selection.
	progress("📚 加载专家...")
	var experts []*core.Expert
	var err error
	if len(expertNames) > 0 {
		experts, err = c.catalog.Resolve(expertNames)
	} else {
		experts, err = c.catalog.SelectRelevant(question, opts.MaxExperts)
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, len(experts))
	for i, e := range experts {
		names[i] = e.DisplayName()
	}
	progress(fmt.Sprintf("✅ 已加载 %d 位专家: %s", len(experts), strings.Join(names, ", ")))
	logger.Info("experts selected", "count", len(experts))

	// 2. Shared context: market data plus initial search.
	runCtx := &RunContext{}
	if c.quotes != nil {
		progress("📈 获取实时行情数据...")
		quote, qerr := c.quotes.QuoteContext(ctx, question)
		if qerr != nil {
			logger.Warn("quote context failed", "error", qerr)
		} else if quote != "" {
			runCtx.AddQuoteSection(quote)
			progress("✅ 已获取实时行情数据")
		} else {
			progress("ℹ️ 未识别到股票代码")
		}
	}

	progress("🔍 搜索相关信息...")
	allResults, err := c.gateway.Search(ctx, question, opts.Engine, opts.MaxSearchResults)
	if err != nil {
		// Only an unknown engine name reaches here; provider failures
		// already degraded to an empty list inside the gateway.
		return nil, err
	}
	runCtx.AddInitialSearch(allResults)
	progress(fmt.Sprintf("✅ 找到 %d 条相关信息", len(allResults)))

	// 3. Iterate.
	executor := NewRoundExecutor(c.gen, logger, progress)
	currentQuestion := question
	var lastAnalyses []core.ExpertAnalysis
	var lastScore float64
	state := core.StateBudgetExhausted
	rounds := 0

	progress(fmt.Sprintf("🔄 开始迭代分析 (最多 %d 轮)...", opts.MaxRounds))
	for round := 1; round <= opts.MaxRounds; round++ {
		rounds = round
		progress(fmt.Sprintf("\n📊 第 %d 轮迭代...", round))

		analysesByName, err := executor.Run(ctx, experts, currentQuestion, runCtx.String())
		if err != nil {
			return nil, err
		}
		lastAnalyses = Ordered(experts, analysesByName)

		lastScore = c.consensus.Score(lastAnalyses)
		progress(fmt.Sprintf("  📈 共识度: %.1f%%", lastScore*100))
		logger.Info("round complete", "round", round, "consensus", lastScore)

		if lastScore >= opts.ConsensusThreshold {
			progress("✅ 达成共识，结束迭代")
			state = core.StateConsensusReached
			break
		}
		if round == opts.MaxRounds {
			progress(fmt.Sprintf("⏹️ 达到最大迭代次数 (%d)", opts.MaxRounds))
			state = core.StateBudgetExhausted
			break
		}

		progress("  🔍 识别信息缺口...")
		report := c.gaps.Identify(ctx, question, lastAnalyses)
		if len(report.Queries) == 0 {
			progress("  ℹ️ 没有新的搜索建议，结束迭代")
			state = core.StateNoNewQueries
			break
		}

		digest := report.Queries
		if len(digest) > queryDigestLimit {
			digest = digest[:queryDigestLimit]
		}
		// The digest is appended to the original question, never replacing it.
		currentQuestion = fmt.Sprintf("%s\n\n补充信息需求：%s", question, strings.Join(digest, "; "))
		progress(fmt.Sprintf("  📝 补充搜索: %s", strings.Join(digest, "; ")))

		for _, q := range report.Queries {
			results, serr := c.gateway.SearchImportant(ctx, q, opts.MaxSearchResults)
			if serr != nil {
				logger.Warn("supplemental search failed", "query", q, "error", serr)
				continue
			}
			allResults = append(allResults, results...)
			runCtx.AddSupplementalSearch(q, results)
		}
	}

	// 4. Final consensus text.
	progress("\n📝 生成综合结论...")
	consensusText, err := c.synthesize(ctx, question, lastAnalyses)
	if err != nil {
		return nil, err
	}
	progress("✅ 分析完成!")

	return &core.AnalysisResult{
		RunID:          runID,
		Question:       question,
		SearchResults:  dedupeByURL(allResults),
		ExpertAnalyses: lastAnalyses,
		Consensus:      consensusText,
		ConsensusScore: lastScore,
		IterationCount: rounds,
		State:          state,
		Timestamp:      time.Now(),
	}, nil
}

// synthesize merges the last round's expert analyses into a final verdict.
func (c *Controller) synthesize(ctx context.Context, question string, analyses []core.ExpertAnalysis) (string, error) {
	parts := make([]string, 0, len(analyses))
	for _, a := range analyses {
		parts = append(parts, fmt.Sprintf("### %s %s 的分析:\n%s", a.ExpertEmoji, a.ExpertName, a.Analysis))
	}

	prompt := fmt.Sprintf(`你是一位资深的分析总结专家。请综合以下多位专家的分析，给出最终的综合结论。

## 原始问题
%s

## 各专家分析
%s

## 综合要求
1. 找出各专家观点的共识点
2. 指出存在分歧的地方并给出判断
3. 综合形成最终结论和建议
4. 给出风险提示

请给出你的综合结论：`, question, strings.Join(parts, "\n\n"))

	text, err := c.gen.Generate(ctx, []core.Message{{Role: core.RoleUser, Content: prompt}})
	if err != nil {
		return "", fmt.Errorf("generating consensus: %w", err)
	}
	return text, nil
}
