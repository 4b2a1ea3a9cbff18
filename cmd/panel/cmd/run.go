package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/analysis"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/clip"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/export"
)

var runCmd = &cobra.Command{
	Use:   "run [question]",
	Short: "Run a multi-expert analysis",
	Long: `Select relevant experts for the question, gather search and market
context, and iterate parallel expert analyses until consensus.
The question can be provided as an argument or via --file flag.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalysis,
}

var (
	runFile      string
	runExperts   []string
	runRounds    int
	runThreshold float64
	runEngine    string
	runFormat    string
	runOutput    string
	runCopy      bool
	runRender    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "Read question from file")
	runCmd.Flags().StringSliceVarP(&runExperts, "experts", "e", nil, "Expert names to use (default: auto-select)")
	runCmd.Flags().IntVar(&runRounds, "rounds", 0, "Maximum analysis rounds (default: config)")
	runCmd.Flags().Float64Var(&runThreshold, "threshold", -1, "Consensus threshold 0..1 (default: config)")
	runCmd.Flags().StringVar(&runEngine, "engine", "", "Search engine for the initial search (sogou, tavily)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "Report format (markdown, news, wechat, xiaohongshu)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Write report to file instead of stdout")
	runCmd.Flags().BoolVar(&runCopy, "copy", false, "Copy report to clipboard")
	runCmd.Flags().BoolVar(&runRender, "render", false, "Render markdown in the terminal")
}

var progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))

func runAnalysis(_ *cobra.Command, args []string) error {
	question, err := getQuestion(args, runFile)
	if err != nil {
		return err
	}

	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	opts := a.analysisOptions()
	if runRounds > 0 {
		opts.MaxRounds = runRounds
	}
	if runThreshold >= 0 {
		opts.ConsensusThreshold = runThreshold
	}
	if runEngine != "" {
		opts.Engine = runEngine
	}
	if !quiet {
		opts.OnProgress = printProgress
	}

	result, err := a.controller.Run(ctx, question, runExperts, opts)
	if err != nil {
		return err
	}

	if a.store != nil {
		if err := a.store.Save(ctx, result); err != nil {
			a.logger.Warn("failed to persist run", "run_id", result.RunID, "error", err)
		}
	}

	report := analysis.RenderMarkdown(result)

	format := runFormat
	if format == "" {
		format = a.cfg.Export.DefaultFormat
	}
	output, err := a.exports.Export(report, format, map[string]string{
		"question": result.Question,
	})
	if err != nil {
		return err
	}

	if runCopy {
		res, err := clip.Copy(output)
		switch {
		case err != nil:
			a.logger.Warn("clipboard copy failed", "error", err)
		case res.Method == clip.MethodFile:
			fmt.Fprintf(os.Stderr, "📋 报告已写入临时文件: %s\n", res.FilePath)
		default:
			fmt.Fprintln(os.Stderr, "📋 报告已复制到剪贴板")
		}
	}

	if runOutput != "" {
		if err := export.WriteFile(runOutput, output); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "报告已保存: %s\n", runOutput)
		return nil
	}

	if runRender && format == "markdown" {
		if rendered, err := renderMarkdownTerm(output); err == nil {
			fmt.Print(rendered)
			return nil
		}
	}

	fmt.Println(output)
	return nil
}

func printProgress(message string) {
	if noColor {
		fmt.Fprintln(os.Stderr, message)
		return
	}
	fmt.Fprintln(os.Stderr, progressStyle.Render(message))
}

func renderMarkdownTerm(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}

func getQuestion(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading question file: %w", err)
		}
		return string(data), nil
	}

	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}

	return "", fmt.Errorf("question required: provide as argument or use --file")
}
