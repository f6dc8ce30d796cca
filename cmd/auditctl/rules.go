package main

import (
	"fmt"

	"tenderaudit/internal/rules"

	"github.com/spf13/cobra"
)

var rulesFile string

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the audit rule book",
	}
	cmd.AddCommand(rulesCheckCmd())
	return cmd
}

func rulesCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a rule book file",
		RunE: func(cmd *cobra.Command, args []string) error {
			rb, err := rules.Load(rulesFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "rule book OK")
			fmt.Fprintf(out, "  consistency bands: warn > %.3f%%, fail > %.3f%%\n",
				rb.Consistency.WarnRatio*100, rb.Consistency.FailRatio*100)
			fmt.Fprintf(out, "  semantic workers: %d  retrieval top-k: %d\n", rb.SemanticWorkers, rb.RetrievalTopK)
			fmt.Fprintf(out, "  question templates: %d\n", len(rb.QuestionTemplates))
			return nil
		},
	}
	cmd.Flags().StringVarP(&rulesFile, "filename", "f", "", "Rule book YAML file (empty = built-in defaults)")
	return cmd
}
