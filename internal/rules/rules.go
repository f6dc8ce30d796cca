// Package rules loads the audit rule book: thresholds, keyword tables and
// question templates that drive the deterministic evaluators and semantic
// escalation. A missing or invalid rule book is a configuration error and
// aborts the run before any evaluation starts.
package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"tenderaudit/internal/normalize"
)

// QuestionPlaceholder is substituted with the requirement text when a
// question template is rendered.
const QuestionPlaceholder = "{requirement}"

// Tolerance holds the price consistency bands as difference ratios.
// Above Fail the check fails, between Warn and Fail it warns, at or below
// Warn it passes.
type Tolerance struct {
	WarnRatio float64 `yaml:"warn_ratio"`
	FailRatio float64 `yaml:"fail_ratio"`
}

// RuleBook is the full evaluator configuration.
type RuleBook struct {
	MinSubstantiveLen   int               `yaml:"min_substantive_len"`
	LowConfidence       float64           `yaml:"low_confidence"`
	Consistency         Tolerance         `yaml:"consistency"`
	PriceAnchorKeywords []string          `yaml:"price_anchor_keywords"`
	TotalPriceKeywords  []string          `yaml:"total_price_keywords"`
	QuestionTemplates   map[string]string `yaml:"question_templates"`
	SemanticWorkers     int               `yaml:"semantic_workers"`
	RetrievalTopK       int               `yaml:"retrieval_top_k"`
}

// Default returns the built-in rule book.
func Default() *RuleBook {
	return &RuleBook{
		MinSubstantiveLen:   10,
		LowConfidence:       0.6,
		Consistency:         Tolerance{WarnRatio: 0.001, FailRatio: 0.005},
		PriceAnchorKeywords: append([]string(nil), normalize.DefaultPriceAnchorKeywords...),
		TotalPriceKeywords:  []string{"投标总价", "总报价", "开标一览表"},
		QuestionTemplates: map[string]string{
			string(normalize.DimQualification):   "投标人是否提供并满足：{requirement}？",
			string(normalize.DimTechnical):       "技术方案是否满足：{requirement}？",
			string(normalize.DimBusiness):        "商务条款是否满足：{requirement}？",
			string(normalize.DimPrice):           "{requirement}对应的报价是多少？",
			string(normalize.DimScheduleQuality): "{requirement}对应的工期或质量承诺是多少？",
			string(normalize.DimDocStructure):    "投标文件是否包含：{requirement}？",
			string(normalize.DimOther):           "投标文件是否满足：{requirement}？",
		},
		SemanticWorkers: 3,
		RetrievalTopK:   5,
	}
}

// Load reads a rule book from path. An empty path returns the defaults.
// File values override defaults field by field.
func Load(path string) (*RuleBook, error) {
	rb := Default()
	if path == "" {
		return rb, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule book: %w", err)
	}
	if err := yaml.Unmarshal(raw, rb); err != nil {
		return nil, fmt.Errorf("parse rule book: %w", err)
	}
	if err := rb.Validate(); err != nil {
		return nil, err
	}
	return rb, nil
}

// Validate checks the rule book for values the pipeline cannot run with.
func (r *RuleBook) Validate() error {
	if r.MinSubstantiveLen <= 0 {
		return fmt.Errorf("rule book: min_substantive_len must be positive")
	}
	if r.LowConfidence < 0 || r.LowConfidence > 1 {
		return fmt.Errorf("rule book: low_confidence must be within [0,1]")
	}
	if r.Consistency.WarnRatio <= 0 || r.Consistency.FailRatio <= r.Consistency.WarnRatio {
		return fmt.Errorf("rule book: consistency bands must satisfy 0 < warn_ratio < fail_ratio")
	}
	if r.SemanticWorkers < 1 {
		return fmt.Errorf("rule book: semantic_workers must be at least 1")
	}
	if r.RetrievalTopK < 1 {
		return fmt.Errorf("rule book: retrieval_top_k must be at least 1")
	}
	if len(r.TotalPriceKeywords) == 0 {
		return fmt.Errorf("rule book: total_price_keywords must be non-empty")
	}
	for dim, tpl := range r.QuestionTemplates {
		if normalize.ParseDimension(dim) == normalize.DimOther && dim != string(normalize.DimOther) {
			return fmt.Errorf("rule book: unknown dimension %q in question_templates", dim)
		}
		if !strings.Contains(tpl, QuestionPlaceholder) {
			return fmt.Errorf("rule book: question template for %q lacks %s", dim, QuestionPlaceholder)
		}
	}
	return nil
}

// Question renders the question template for dim with the requirement text.
// Falls back to the template for the other dimension when dim has none.
func (r *RuleBook) Question(dim normalize.Dimension, requirement string) string {
	tpl, ok := r.QuestionTemplates[string(dim)]
	if !ok {
		tpl = r.QuestionTemplates[string(normalize.DimOther)]
	}
	if tpl == "" {
		return requirement
	}
	return strings.ReplaceAll(tpl, QuestionPlaceholder, requirement)
}
