package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResult(runID string, ts time.Time) *core.AnalysisResult {
	return &core.AnalysisResult{
		RunID:    runID,
		Question: "如何看待A股走势",
		ExpertAnalyses: []core.ExpertAnalysis{
			{ExpertName: "宏观专家", ExpertEmoji: "📊", Analysis: "分析内容"},
		},
		SearchResults:  []core.SearchResult{{Title: "新闻", URL: "https://example.com/1"}},
		Consensus:      "综合结论文本",
		ConsensusScore: 0.85,
		IterationCount: 2,
		State:          core.StateConsensusReached,
		Timestamp:      ts,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := sampleResult("run-1", time.Now())
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Question != want.Question || got.ConsensusScore != want.ConsensusScore {
		t.Errorf("got %+v", got)
	}
	if len(got.ExpertAnalyses) != 1 || got.ExpertAnalyses[0].ExpertName != "宏观专家" {
		t.Errorf("ExpertAnalyses = %+v", got.ExpertAnalyses)
	}
	if got.State != core.StateConsensusReached {
		t.Errorf("State = %s", got.State)
	}
}

func TestSaveUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleResult("run-1", time.Now())
	if err := s.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	first.ConsensusScore = 0.95
	if err := s.Save(ctx, first); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ConsensusScore != 0.95 {
		t.Errorf("ConsensusScore = %v, want updated value", got.ConsensusScore)
	}

	runs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs, want 1", len(runs))
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.Save(ctx, sampleResult(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs", len(runs))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if runs[i].RunID != want {
			t.Errorf("position %d = %s, want %s", i, runs[i].RunID, want)
		}
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].RunID != "new" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing run")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleResult("run-1", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "run-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "run-1"); err == nil {
		t.Error("run should be gone after delete")
	}
	// Deleting again is not an error.
	if err := s.Delete(ctx, "run-1"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestSaveValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, nil); err == nil {
		t.Error("nil result should fail")
	}
	if err := s.Save(ctx, &core.AnalysisResult{}); err == nil {
		t.Error("missing run ID should fail")
	}
}
