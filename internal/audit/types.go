// Package audit implements the requirement compliance evaluation engine:
// mapping bidder responses to tender requirements, deterministic rule
// checks, semantic escalation through a language-model judge, and the
// review items the pipeline emits.
package audit

import (
	"tenderaudit/internal/evidence"
	"tenderaudit/internal/normalize"
)

// Status is a review item verdict.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusWarn    Status = "WARN"
	StatusPending Status = "PENDING"
)

// Severity grades how serious a finding is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// EvalMethod selects how a requirement is checked.
type EvalMethod string

const (
	MethodPresence EvalMethod = "PRESENCE"
	MethodNumeric  EvalMethod = "NUMERIC"
	MethodSemantic EvalMethod = "SEMANTIC"
)

// Evaluator identifies which stage produced a verdict.
type Evaluator string

const (
	EvaluatorHardGate    Evaluator = "basic_requirement_evaluator"
	EvaluatorNumeric     Evaluator = "numeric_threshold_evaluator"
	EvaluatorConsistency Evaluator = "consistency_price_detail"
	EvaluatorSemantic    Evaluator = "qa_semantic"
	EvaluatorOutOfScope  Evaluator = "out_of_scope"
	EvaluatorMustHit     Evaluator = "must_hit_fallback"
)

// ValueSchema declares the expected unit and comparison operator of a
// numeric requirement, e.g. {Operator: "<=", Unit: "天"}.
type ValueSchema struct {
	Operator string `json:"operator"`
	Unit     string `json:"unit"`
}

// Requirement is one obligation extracted from the tender document.
// Read-only to this engine.
type Requirement struct {
	RequirementID string              `json:"requirement_id"`
	Dimension     normalize.Dimension `json:"dimension"`
	Text          string              `json:"requirement_text"`
	IsHard        bool                `json:"is_hard"`
	EvalMethod    EvalMethod          `json:"eval_method"`
	ValueSchema   *ValueSchema        `json:"value_schema,omitempty"`
}

// Response is one extracted answer from a bidder's document.
// Read-only to this engine.
type Response struct {
	ResponseID     string              `json:"response_id"`
	Dimension      normalize.Dimension `json:"dimension"`
	Text           string              `json:"response_text"`
	ExtractedValue *float64            `json:"extracted_value,omitempty"`
	EvidenceRefs   []string            `json:"evidence_refs,omitempty"`
}

// ReviewItem is the engine's primary output: one verdict per
// (requirement, bidder) pair, with provenance into both corpora.
type ReviewItem struct {
	RequirementID          string              `json:"requirement_id"`
	BidderName             string              `json:"bidder_name"`
	Dimension              normalize.Dimension `json:"dimension"`
	Status                 Status              `json:"status"`
	Severity               Severity            `json:"severity"`
	Evaluator              Evaluator           `json:"evaluator"`
	Remark                 string              `json:"remark"`
	Confidence             float64             `json:"confidence"`
	Evidence               []evidence.Entry    `json:"evidence_json"`
	TenderEvidenceChunkIDs []string            `json:"tender_evidence_chunk_ids"`
	BidEvidenceChunkIDs    []string            `json:"bid_evidence_chunk_ids"`
}

// Verdict is the internal result of one evaluator stage, before it is
// assembled into a ReviewItem.
type Verdict struct {
	Status     Status
	Severity   Severity
	Evaluator  Evaluator
	Remark     string
	Confidence float64
	Evidence   []evidence.Entry
}

// RunResult is what one pipeline run returns to the caller.
type RunResult struct {
	RunID      string       `json:"run_id,omitempty"`
	ProjectID  string       `json:"project_id"`
	BidderName string       `json:"bidder_name"`
	Items      []ReviewItem `json:"review_items"`
	Stats      Stats        `json:"stats"`
}

// BaselineRequirementID tags the synthesized fallback item that guarantees
// a run never produces an empty review set.
const BaselineRequirementID = "__baseline__"

// ConsistencyRequirementID keys the cross-field price consistency finding,
// which is not tied to a single extracted requirement.
const ConsistencyRequirementID = "__price_consistency__"

func newItem(projectRequirementID, bidder string, dim normalize.Dimension, v Verdict) ReviewItem {
	return ReviewItem{
		RequirementID:          projectRequirementID,
		BidderName:             bidder,
		Dimension:              dim,
		Status:                 v.Status,
		Severity:               v.Severity,
		Evaluator:              v.Evaluator,
		Remark:                 v.Remark,
		Confidence:             v.Confidence,
		Evidence:               v.Evidence,
		TenderEvidenceChunkIDs: evidence.ChunkIDs(v.Evidence, evidence.RoleTender),
		BidEvidenceChunkIDs:    evidence.ChunkIDs(v.Evidence, evidence.RoleBid),
	}
}
