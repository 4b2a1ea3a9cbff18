package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorIsMatchesCategoryAndCode(t *testing.T) {
	err := ErrExpertAnalysisFailed("宏观专家", errors.New("timeout"))

	if !errors.Is(err, ErrExpertAnalysisFailed("任意", nil)) {
		t.Error("errors.Is should match on category and code, not message")
	}
	if errors.Is(err, ErrNoExperts()) {
		t.Error("different codes should not match")
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrExpertAnalysisFailed("专家", cause)

	if !errors.Is(err, cause) {
		t.Error("cause should be reachable via errors.Is")
	}
}

func TestDomainErrorWrappedChain(t *testing.T) {
	err := fmt.Errorf("running round: %w", ErrExpertAnalysisFailed("专家", nil))

	var derr *DomainError
	if !errors.As(err, &derr) {
		t.Fatal("errors.As should find DomainError through wrapping")
	}
	if derr.Code != CodeExpertFailed {
		t.Errorf("Code = %s", derr.Code)
	}
}

func TestFailedExpert(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrExpertAnalysisFailed("风控专家", errors.New("boom")))

	name, ok := FailedExpert(err)
	if !ok || name != "风控专家" {
		t.Errorf("FailedExpert = %q, %v", name, ok)
	}

	if _, ok := FailedExpert(errors.New("plain")); ok {
		t.Error("plain errors carry no expert")
	}
	if _, ok := FailedExpert(ErrNoExperts()); ok {
		t.Error("other domain errors carry no expert")
	}
}

func TestErrExpertAnalysisFailedRetryable(t *testing.T) {
	if !ErrExpertAnalysisFailed("x", nil).Retryable {
		t.Error("round failures should be marked retryable")
	}
	if ErrNoExperts().Retryable {
		t.Error("empty selection is not retryable")
	}
}

func TestMatchesQuery(t *testing.T) {
	e := &Expert{
		Description: "seasoned stock market analyst",
		Domains:     []string{"A股", "股票"},
	}

	if !e.MatchesQuery("如何看待A股走势") {
		t.Error("domain keyword should match")
	}
	if !e.MatchesQuery("what do you think of the stock market") {
		t.Error("description word should match")
	}
	if e.MatchesQuery("今天天气不错") {
		t.Error("unrelated query should not match")
	}
}

func TestDisplayName(t *testing.T) {
	e := &Expert{Name: "宏观专家", Emoji: "📊"}
	if got := e.DisplayName(); got != "📊 宏观专家" {
		t.Errorf("DisplayName = %q", got)
	}
	plain := &Expert{Name: "专家"}
	if got := plain.DisplayName(); got != "专家" {
		t.Errorf("DisplayName = %q", got)
	}
}
