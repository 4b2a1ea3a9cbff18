package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/testutil"
)

func testExperts(names ...string) []*core.Expert {
	out := make([]*core.Expert, len(names))
	for i, n := range names {
		out[i] = &core.Expert{Name: n, Emoji: "🤖", SystemPrompt: "你是" + n}
	}
	return out
}

func TestRoundRunAllSucceed(t *testing.T) {
	gen := testutil.NewMockGenerator()
	exec := NewRoundExecutor(gen, logging.NewNop(), nil)

	experts := testExperts("宏观", "行业", "风控")
	analyses, err := exec.Run(context.Background(), experts, "问题", "背景")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(analyses) != 3 {
		t.Fatalf("got %d analyses, want 3", len(analyses))
	}
	for _, e := range experts {
		if _, ok := analyses[e.Name]; !ok {
			t.Errorf("missing analysis for %s", e.Name)
		}
	}
}

func TestRoundRunSingleFailureInvalidatesRound(t *testing.T) {
	gen := testutil.NewMockGenerator().WithGenerateFunc(
		func(_ context.Context, messages []core.Message) (string, error) {
			if strings.Contains(messages[0].Content, "行业") {
				return "", errors.New("timeout")
			}
			return "分析完成", nil
		})
	exec := NewRoundExecutor(gen, logging.NewNop(), nil)

	analyses, err := exec.Run(context.Background(), testExperts("宏观", "行业", "风控"), "问题", "")
	if err == nil {
		t.Fatal("Run should fail when any expert fails")
	}
	if analyses != nil {
		t.Errorf("analyses = %v, want nil on round failure", analyses)
	}

	name, ok := core.FailedExpert(err)
	if !ok {
		t.Fatalf("error %v should carry the failing expert", err)
	}
	if name != "行业" {
		t.Errorf("failing expert = %q, want 行业", name)
	}
}

func TestRoundRunNoExperts(t *testing.T) {
	exec := NewRoundExecutor(testutil.NewMockGenerator(), logging.NewNop(), nil)

	_, err := exec.Run(context.Background(), nil, "问题", "")
	if !errors.Is(err, core.ErrNoExperts()) {
		t.Errorf("err = %v, want no-experts error", err)
	}
}

func TestOrderedPreservesInputOrder(t *testing.T) {
	experts := testExperts("c", "a", "b")
	byName := map[string]core.ExpertAnalysis{
		"a": {ExpertName: "a"},
		"b": {ExpertName: "b"},
		"c": {ExpertName: "c"},
	}

	got := Ordered(experts, byName)
	if len(got) != 3 {
		t.Fatalf("got %d analyses, want 3", len(got))
	}
	for i, want := range []string{"c", "a", "b"} {
		if got[i].ExpertName != want {
			t.Errorf("position %d = %s, want %s", i, got[i].ExpertName, want)
		}
	}
}
