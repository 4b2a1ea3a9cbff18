package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var expertsCmd = &cobra.Command{
	Use:   "experts",
	Short: "Manage the expert catalog",
}

var expertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available experts",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		experts, err := a.catalog.ListAll()
		if err != nil {
			return err
		}
		if len(experts) == 0 {
			fmt.Printf("目录 %s 中没有专家文件\n", a.cfg.Experts.Dir)
			return nil
		}

		for _, e := range experts {
			line := fmt.Sprintf("%s (priority %d)", e.DisplayName(), e.Priority)
			if len(e.Domains) > 0 {
				line += "  [" + strings.Join(e.Domains, ", ") + "]"
			}
			fmt.Println(line)
			if e.Description != "" {
				fmt.Printf("    %s\n", e.Description)
			}
		}
		return nil
	},
}

var expertsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show an expert's full definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		expert, err := a.catalog.Get(args[0])
		if err != nil {
			if suggestions := a.catalog.Suggest(args[0], 3); len(suggestions) > 0 {
				return fmt.Errorf("%w (did you mean: %s?)", err, strings.Join(suggestions, ", "))
			}
			return err
		}

		fmt.Printf("# %s\n\n", expert.DisplayName())
		if expert.Description != "" {
			fmt.Printf("%s\n\n", expert.Description)
		}
		if len(expert.Domains) > 0 {
			fmt.Printf("领域: %s\n", strings.Join(expert.Domains, ", "))
		}
		fmt.Printf("优先级: %d\n", expert.Priority)
		if expert.SourcePath != "" {
			fmt.Printf("来源: %s\n", expert.SourcePath)
		}
		fmt.Printf("\n%s\n", expert.SystemPrompt)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(expertsCmd)
	expertsCmd.AddCommand(expertsListCmd)
	expertsCmd.AddCommand(expertsShowCmd)
}
