package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
)

func writeExpert(t *testing.T, root, name string, priority int, domains ...string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := fmt.Sprintf("---\nname: %s\nmetadata:\n  priority: %d\n", name, priority)
	if len(domains) > 0 {
		content += "  domains:\n"
		for _, d := range domains {
			content += "    - " + d + "\n"
		}
	}
	content += "---\n你是" + name + "。\n"
	if err := os.WriteFile(filepath.Join(dir, "EXPERT.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListAllSortsByPriority(t *testing.T) {
	root := t.TempDir()
	writeExpert(t, root, "后排", 9)
	writeExpert(t, root, "前排", 1)
	writeExpert(t, root, "中间", 5)

	c := New(root, logging.NewNop())
	all, err := c.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d experts, want 3", len(all))
	}
	for i, want := range []string{"前排", "中间", "后排"} {
		if all[i].Name != want {
			t.Errorf("position %d = %s, want %s", i, all[i].Name, want)
		}
	}
}

func TestSelectRelevantPrefersMatching(t *testing.T) {
	root := t.TempDir()
	// A matches the query and has priority 1; B has better raw priority
	// knowledge of nothing relevant.
	writeExpert(t, root, "股票专家", 2, "stock", "股票")
	writeExpert(t, root, "政策专家", 1, "policy")

	c := New(root, logging.NewNop())
	selected, err := c.SelectRelevant("stock market outlook", 2)
	if err != nil {
		t.Fatalf("SelectRelevant: %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("got %d experts, want 2", len(selected))
	}
	if selected[0].Name != "股票专家" {
		t.Errorf("first = %s, want the matching expert despite worse priority", selected[0].Name)
	}
}

func TestSelectRelevantFillsPanelWithoutMatches(t *testing.T) {
	root := t.TempDir()
	writeExpert(t, root, "甲", 1, "地产")
	writeExpert(t, root, "乙", 2, "医药")

	c := New(root, logging.NewNop())
	selected, err := c.SelectRelevant("完全无关的问题", 4)
	if err != nil {
		t.Fatalf("SelectRelevant: %v", err)
	}
	// No expert matches, but the panel still fills by priority.
	if len(selected) != 2 || selected[0].Name != "甲" {
		t.Errorf("selected = %v", names(selected))
	}
}

func TestSelectRelevantLimit(t *testing.T) {
	root := t.TempDir()
	for i := 1; i <= 6; i++ {
		writeExpert(t, root, fmt.Sprintf("专家%d", i), i)
	}

	c := New(root, logging.NewNop())
	selected, err := c.SelectRelevant("问题", 4)
	if err != nil {
		t.Fatalf("SelectRelevant: %v", err)
	}
	if len(selected) != 4 {
		t.Errorf("got %d experts, want 4", len(selected))
	}
}

func TestSelectRelevantEmptyCatalog(t *testing.T) {
	c := New(t.TempDir(), logging.NewNop())

	_, err := c.SelectRelevant("问题", 4)
	if !errors.Is(err, core.ErrNoExperts()) {
		t.Errorf("err = %v, want no-experts error", err)
	}
}

func TestResolveDropsUnknownNames(t *testing.T) {
	root := t.TempDir()
	writeExpert(t, root, "已知", 1)

	c := New(root, logging.NewNop())
	resolved, err := c.Resolve([]string{"未知", "已知"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolved) != 1 || resolved[0].Name != "已知" {
		t.Errorf("resolved = %v", names(resolved))
	}

	if _, err := c.Resolve([]string{"全部未知"}); !errors.Is(err, core.ErrNoExperts()) {
		t.Errorf("err = %v, want no-experts error", err)
	}
}

func TestGetUnknownExpert(t *testing.T) {
	root := t.TempDir()
	writeExpert(t, root, "唯一", 1)

	c := New(root, logging.NewNop())
	_, err := c.Get("不存在")
	if !errors.Is(err, core.ErrExpertNotFound("不存在")) {
		t.Errorf("err = %v, want expert-not-found", err)
	}
}

func TestScanSkipsInvalidDocuments(t *testing.T) {
	root := t.TempDir()
	writeExpert(t, root, "有效", 1)

	badDir := filepath.Join(root, "坏文档")
	if err := os.MkdirAll(badDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(badDir, "EXPERT.md"), []byte("no frontmatter"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(root, logging.NewNop())
	all, err := c.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 || all[0].Name != "有效" {
		t.Errorf("all = %v, want only the valid expert", names(all))
	}
}

func TestReloadReplacesCache(t *testing.T) {
	root := t.TempDir()
	writeExpert(t, root, "初始", 1)

	c := New(root, logging.NewNop())
	if _, err := c.ListAll(); err != nil {
		t.Fatal(err)
	}

	writeExpert(t, root, "新增", 2)
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	all, _ := c.ListAll()
	if len(all) != 2 {
		t.Errorf("got %d experts after reload, want 2", len(all))
	}
}

func TestSuggest(t *testing.T) {
	root := t.TempDir()
	writeExpert(t, root, "stock-analyst", 1)
	writeExpert(t, root, "policy-analyst", 2)

	c := New(root, logging.NewNop())
	got := c.Suggest("stock", 2)
	if len(got) == 0 || got[0] != "stock-analyst" {
		t.Errorf("Suggest = %v, want stock-analyst first", got)
	}
}

func names(experts []*core.Expert) []string {
	out := make([]string, len(experts))
	for i, e := range experts {
		out[i] = e.Name
	}
	return out
}
