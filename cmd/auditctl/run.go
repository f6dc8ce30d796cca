package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"tenderaudit/internal/audit"
	"tenderaudit/internal/config"
	"tenderaudit/internal/llm"
	"tenderaudit/internal/retrieval"
	"tenderaudit/internal/rules"

	"github.com/spf13/cobra"
)

var (
	runProject      string
	runBidder       string
	runRequirements string
	runResponses    string
	runCorpus       string
	runSemantic     bool
	runTimeout      time.Duration
	runJSON         bool
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Audit one bidder's responses against the tender requirements",
		Long: `Run the compliance pipeline for one (project, bidder) pair.

Examples:
  # Deterministic checks only
  auditctl run -p P001 -b 华建公司 -r requirements.json -a responses.json

  # With semantic escalation over an inline corpus (needs GEMINI_API_KEY)
  auditctl run -p P001 -b 华建公司 -r requirements.json -a responses.json -c corpus.json --semantic`,
		RunE: runAudit,
	}

	cmd.Flags().StringVarP(&runProject, "project", "p", "", "Project id (required)")
	cmd.Flags().StringVarP(&runBidder, "bidder", "b", "", "Bidder name (required)")
	cmd.Flags().StringVarP(&runRequirements, "requirements", "r", "", "Requirements JSON file (required)")
	cmd.Flags().StringVarP(&runResponses, "responses", "a", "", "Responses JSON file")
	cmd.Flags().StringVarP(&runCorpus, "corpus", "c", "", "Corpus JSON file with tender/bid passages")
	cmd.Flags().BoolVar(&runSemantic, "semantic", false, "Escalate unresolved requirements to the model")
	cmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Run-level timeout, e.g. 90s (0 = none)")
	cmd.Flags().BoolVar(&runJSON, "json", false, "Print the full result as JSON")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("bidder")
	cmd.MarkFlagRequired("requirements")

	return cmd
}

type corpusFile struct {
	Tender []retrieval.Passage `json:"tender"`
	Bid    []retrieval.Passage `json:"bid"`
}

func runAudit(cmd *cobra.Command, args []string) error {
	_ = config.Load()

	rawReqs, err := os.ReadFile(runRequirements)
	if err != nil {
		return fmt.Errorf("read requirements: %w", err)
	}
	reqs, err := audit.ParseRequirements(rawReqs)
	if err != nil {
		return err
	}

	var resps []audit.Response
	if runResponses != "" {
		rawResps, err := os.ReadFile(runResponses)
		if err != nil {
			return fmt.Errorf("read responses: %w", err)
		}
		resps, err = audit.ParseResponses(rawResps)
		if err != nil {
			return err
		}
	}

	var retriever retrieval.Retriever
	if runCorpus != "" {
		raw, err := os.ReadFile(runCorpus)
		if err != nil {
			return fmt.Errorf("read corpus: %w", err)
		}
		var cf corpusFile
		if err := json.Unmarshal(raw, &cf); err != nil {
			return fmt.Errorf("parse corpus: %w", err)
		}
		m := retrieval.NewMemory()
		for _, p := range cf.Tender {
			m.Add(runProject, runBidder, retrieval.CorpusTender, p)
		}
		for _, p := range cf.Bid {
			m.Add(runProject, runBidder, retrieval.CorpusBid, p)
		}
		retriever = m
	}

	rb, err := rules.Load(config.RulesFile())
	if err != nil {
		return fmt.Errorf("load rule book: %w", err)
	}

	var judge llm.Judge
	model := config.GeminiModel()
	if model == "" {
		model = llm.DefaultModel
	}
	if runSemantic {
		key := config.GeminiAPIKey()
		if key == "" {
			return fmt.Errorf("--semantic needs GEMINI_API_KEY")
		}
		judge = llm.NewGemini(key, model)
	}

	pipeline, err := audit.NewPipeline(rb, retriever, judge, model, config.RunsDir())
	if err != nil {
		return err
	}

	result, err := pipeline.Run(context.Background(), runProject, runBidder, reqs, resps, audit.Options{
		SemanticEnabled: runSemantic,
		Timeout:         runTimeout,
	})
	if err != nil {
		return err
	}

	if runJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printSummary(cmd, result)
	return nil
}

func printSummary(cmd *cobra.Command, result *audit.RunResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "project: %s  bidder: %s\n", result.ProjectID, result.BidderName)
	fmt.Fprintf(out, "items: %d  pass: %d  fail: %d  warn: %d  pending: %d\n",
		result.Stats.Total,
		result.Stats.ByStatus[audit.StatusPass],
		result.Stats.ByStatus[audit.StatusFail],
		result.Stats.ByStatus[audit.StatusWarn],
		result.Stats.ByStatus[audit.StatusPending])
	fmt.Fprintf(out, "pass rate: %.1f%%  needs manual review: %d\n",
		result.Stats.PassRate*100, result.Stats.NeedsManualReview)
	for _, item := range result.Items {
		if item.Status == audit.StatusPass {
			continue
		}
		fmt.Fprintf(out, "  [%s/%s] %s: %s\n", item.Status, item.Severity, item.RequirementID, item.Remark)
	}
}
