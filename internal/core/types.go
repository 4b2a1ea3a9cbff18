package core

import (
	"strings"
	"time"
)

// Expert is a named analysis persona loaded from an EXPERT.md document.
// Records are immutable once loaded; a catalog reload replaces the whole set.
type Expert struct {
	Name         string
	Description  string
	Emoji        string
	Priority     int // lower sorts first
	Domains      []string
	SystemPrompt string
	SourcePath   string
}

// DisplayName returns the expert name prefixed with its emoji tag.
func (e *Expert) DisplayName() string {
	if e.Emoji == "" {
		return e.Name
	}
	return e.Emoji + " " + e.Name
}

// MatchesQuery reports whether the expert looks relevant to the query, based
// on domain keywords or description words longer than three characters.
func (e *Expert) MatchesQuery(query string) bool {
	q := strings.ToLower(query)
	for _, domain := range e.Domains {
		if domain != "" && strings.Contains(q, strings.ToLower(domain)) {
			return true
		}
	}
	for _, word := range strings.Fields(strings.ToLower(e.Description)) {
		if len(word) > 3 && strings.Contains(q, word) {
			return true
		}
	}
	return false
}

// SearchResult is one entry returned by a retrieval provider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Content string `json:"content,omitempty"`
}

// ExpertAnalysis is the output of a single expert for a single round.
type ExpertAnalysis struct {
	ExpertName  string   `json:"expert_name"`
	ExpertEmoji string   `json:"expert_emoji"`
	Analysis    string   `json:"analysis"`
	KeyPoints   []string `json:"key_points,omitempty"`
}

// GapReport lists missing-information gaps and supplemental search queries
// identified between rounds.
type GapReport struct {
	Gaps    []string `json:"gaps"`
	Queries []string `json:"queries"`
}

// TerminalState records why an iterative run stopped.
type TerminalState string

const (
	// StateConsensusReached means the consensus score met the threshold.
	StateConsensusReached TerminalState = "consensus_reached"
	// StateNoNewQueries means the gap identifier produced no supplemental queries.
	StateNoNewQueries TerminalState = "no_new_queries"
	// StateBudgetExhausted means the round budget ran out before consensus.
	StateBudgetExhausted TerminalState = "budget_exhausted"
)

// AnalysisResult is the terminal artifact of an iterative run. It carries the
// last round's analyses and the deduplicated search results accumulated across
// all rounds.
type AnalysisResult struct {
	RunID          string           `json:"run_id"`
	Question       string           `json:"question"`
	SearchResults  []SearchResult   `json:"search_results"`
	ExpertAnalyses []ExpertAnalysis `json:"expert_analyses"`
	Consensus      string           `json:"consensus"`
	ConsensusScore float64          `json:"consensus_score"`
	IterationCount int              `json:"iteration_count"`
	State          TerminalState    `json:"state"`
	Timestamp      time.Time        `json:"timestamp"`
}
