package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/diagnostics"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local analysis environment",
	Long:  "Verify that Ollama is reachable, the configured model is installed and the hardware is sufficient.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("Checking environment...")
	fmt.Println()

	doctor := diagnostics.NewDoctor(a.client)
	report := doctor.Run(cmd.Context())

	for _, c := range report.Checks {
		icon := "✓"
		switch c.Status {
		case diagnostics.StatusWarn:
			icon = "⚠"
		case diagnostics.StatusFail:
			icon = "✗"
		}
		fmt.Printf("  %s %-8s %s\n", icon, c.Name, c.Message)
	}

	fmt.Println()
	m := report.Metrics
	if m.CPUModel != "" {
		fmt.Printf("CPU: %s (%d cores, %d threads)\n", m.CPUModel, m.CPUCores, m.CPUThreads)
	}
	if m.LoadAvg1 > 0 {
		fmt.Printf("负载: %.2f %.2f %.2f\n", m.LoadAvg1, m.LoadAvg5, m.LoadAvg15)
	}

	if !report.Healthy() {
		return fmt.Errorf("environment check failed")
	}
	fmt.Println("环境检查通过 ✓")
	return nil
}
