package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/analysis"
	"github.com/hugo-lorenzo-mato/panel-ai/internal/export"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past analysis runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.store == nil {
			return fmt.Errorf("run history is disabled")
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := a.store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("暂无历史记录")
			return nil
		}

		for _, r := range runs {
			fmt.Printf("%s  %s  共识 %.2f  %d 轮  %s\n",
				shortID(r.RunID), r.CreatedAt.Format("2006-01-02 15:04"),
				r.ConsensusScore, r.IterationCount, truncateQuestion(r.Question, 40))
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the report of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.store == nil {
			return fmt.Errorf("run history is disabled")
		}

		result, err := a.store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(analysis.RenderMarkdown(result))
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Re-export a stored run in another format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.store == nil {
			return fmt.Errorf("run history is disabled")
		}

		result, err := a.store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = a.cfg.Export.DefaultFormat
		}
		output, err := a.exports.Export(analysis.RenderMarkdown(result), format, map[string]string{
			"question": result.Question,
		})
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("output"); path != "" {
			if err := export.WriteFile(path, output); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Printf("报告已保存: %s\n", path)
			return nil
		}
		fmt.Println(output)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.store == nil {
			return fmt.Errorf("run history is disabled")
		}

		if err := a.store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("已删除: %s\n", args[0])
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateQuestion(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	historyListCmd.Flags().Int("limit", 20, "Maximum runs to list (0 = all)")
	historyExportCmd.Flags().String("format", "", "Report format (markdown, news, wechat, xiaohongshu)")
	historyExportCmd.Flags().StringP("output", "o", "", "Write report to file instead of stdout")
}
