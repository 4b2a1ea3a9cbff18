// Package diagnostics checks the local environment an analysis run depends
// on: the Ollama endpoint, the configured model, and available hardware.
package diagnostics

import (
	"context"
	"fmt"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/llm"
)

// CheckStatus classifies a doctor check result.
type CheckStatus string

const (
	StatusOK   CheckStatus = "ok"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

// Check is a single doctor check result.
type Check struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
}

// Report aggregates all doctor checks.
type Report struct {
	Checks  []Check       `json:"checks"`
	Metrics SystemMetrics `json:"metrics"`
}

// Healthy reports whether no check failed (warnings allowed).
func (r *Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

// Local models need real memory headroom; below this analyses tend to swap.
const minRecommendedMemMB = 8 * 1024

// Doctor runs environment checks against a configured Ollama client.
type Doctor struct {
	client    *llm.OllamaClient
	collector *SystemMetricsCollector
}

// NewDoctor creates a doctor for the given Ollama client.
func NewDoctor(client *llm.OllamaClient) *Doctor {
	return &Doctor{
		client:    client,
		collector: NewSystemMetricsCollector(),
	}
}

// Run executes all checks. It never returns an error; failures are reported
// as failed checks.
func (d *Doctor) Run(ctx context.Context) *Report {
	report := &Report{Metrics: d.collector.Collect()}

	report.Checks = append(report.Checks, d.checkOllama(ctx))
	report.Checks = append(report.Checks, d.checkModel(ctx))
	report.Checks = append(report.Checks, d.checkMemory(report.Metrics))
	report.Checks = append(report.Checks, d.checkGPU(report.Metrics))

	return report
}

func (d *Doctor) checkOllama(ctx context.Context) Check {
	if err := d.client.Ping(ctx); err != nil {
		return Check{
			Name:    "ollama",
			Status:  StatusFail,
			Message: fmt.Sprintf("Ollama 服务不可达: %v", err),
		}
	}
	return Check{Name: "ollama", Status: StatusOK, Message: "Ollama 服务正常"}
}

func (d *Doctor) checkModel(ctx context.Context) Check {
	ok, err := d.client.HasModel(ctx)
	if err != nil {
		return Check{
			Name:    "model",
			Status:  StatusFail,
			Message: fmt.Sprintf("无法查询模型列表: %v", err),
		}
	}
	if !ok {
		return Check{
			Name:    "model",
			Status:  StatusFail,
			Message: fmt.Sprintf("模型 %s 未安装，请运行: ollama pull %s", d.client.Model(), d.client.Model()),
		}
	}
	return Check{Name: "model", Status: StatusOK, Message: fmt.Sprintf("模型 %s 已安装", d.client.Model())}
}

func (d *Doctor) checkMemory(m SystemMetrics) Check {
	if m.MemTotalMB == 0 {
		return Check{Name: "memory", Status: StatusWarn, Message: "无法读取内存信息"}
	}
	if m.MemTotalMB < minRecommendedMemMB {
		return Check{
			Name:    "memory",
			Status:  StatusWarn,
			Message: fmt.Sprintf("内存 %.0f MB，低于建议的 %d MB，本地模型可能运行缓慢", m.MemTotalMB, minRecommendedMemMB),
		}
	}
	return Check{
		Name:    "memory",
		Status:  StatusOK,
		Message: fmt.Sprintf("内存 %.0f MB 可用 %.0f MB", m.MemTotalMB, m.MemTotalMB-m.MemUsedMB),
	}
}

func (d *Doctor) checkGPU(m SystemMetrics) Check {
	if len(m.GPUInfos) == 0 {
		return Check{Name: "gpu", Status: StatusWarn, Message: "未检测到 GPU，推理将使用 CPU"}
	}
	g := m.GPUInfos[0]
	msg := g.Name
	if g.MemValid {
		msg = fmt.Sprintf("%s (%.0f/%.0f MB)", g.Name, g.MemUsedMB, g.MemTotalMB)
	}
	return Check{Name: "gpu", Status: StatusOK, Message: msg}
}
