package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/analysis"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/catalog"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/history"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/retrieval"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/testutil"
)

func writeExpertDoc(t *testing.T, root, name string, priority int) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := fmt.Sprintf("---\nname: %s\nmetadata:\n  priority: %d\n---\n你是%s。\n", name, priority, name)
	if err := os.WriteFile(filepath.Join(dir, "EXPERT.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	root := t.TempDir()
	writeExpertDoc(t, root, "宏观经济专家", 1)
	writeExpertDoc(t, root, "风险控制专家", 2)
	cat := catalog.New(root, logging.NewNop())

	gw := retrieval.NewGateway(logging.NewNop())
	gw.Register(testutil.NewMockSearchProvider("sogou"))

	controller := analysis.NewController(cat, gw, testutil.NewMockGenerator(), nil, logging.NewNop())

	opts := []ServerOption{}
	if withStore {
		store, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = store.Close() })
		opts = append(opts, WithHistory(store))
	}
	return NewServer(controller, cat, analysis.Options{MaxRounds: 1, ConsensusThreshold: 0}, opts...)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleListExperts(t *testing.T) {
	srv := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/experts", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Experts []expertDTO `json:"experts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Experts) != 2 || body.Experts[0].Name != "宏观经济专家" {
		t.Errorf("experts = %+v", body.Experts)
	}
}

func TestHandleAnalyze(t *testing.T) {
	srv := newTestServer(t, true)
	payload, _ := json.Marshal(analyzeRequest{Question: "如何看待A股走势"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body analyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.RunID == "" || body.IterationCount != 1 {
		t.Errorf("response = %+v", body)
	}
	if !strings.Contains(body.Report, "分析报告") {
		t.Error("response should carry the rendered report")
	}

	// The run was persisted and is retrievable.
	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	listRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("runs status = %d", listRec.Code)
	}
	var runs struct {
		Runs []history.Summary `json:"runs"`
	}
	if err := json.Unmarshal(listRec.Body.Bytes(), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs.Runs) != 1 || runs.Runs[0].RunID != body.RunID {
		t.Errorf("runs = %+v", runs.Runs)
	}
}

func TestHandleAnalyzeMissingQuestion(t *testing.T) {
	srv := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleAnalyzeUnknownEngine(t *testing.T) {
	srv := newTestServer(t, false)
	payload, _ := json.Marshal(analyzeRequest{Question: "问题", Engine: "bing"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown engine", rec.Code)
	}
}

func TestRunsDisabledWithoutStore(t *testing.T) {
	srv := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDeleteRun(t *testing.T) {
	srv := newTestServer(t, true)
	if err := srv.store.Save(context.Background(), &core.AnalysisResult{
		RunID:    "run-x",
		Question: "q",
		State:    core.StateConsensusReached,
	}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/runs/run-x", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-x", nil)
	getRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusNotFound {
		t.Errorf("status = %d after delete, want 404", getRec.Code)
	}
}
