package audit

import (
	"fmt"
	"unicode/utf8"

	"tenderaudit/internal/evidence"
	"tenderaudit/internal/rules"
)

// evalHardGate is the presence/absence check for PRESENCE requirements.
// It never calls external services.
func evalHardGate(req Requirement, candidates []Response, rb *rules.RuleBook) Verdict {
	if len(candidates) == 0 {
		if req.IsHard {
			return Verdict{
				Status:     StatusFail,
				Severity:   SeverityCritical,
				Evaluator:  EvaluatorHardGate,
				Remark:     "强制性要求未找到任何对应响应",
				Confidence: 1,
			}
		}
		return Verdict{
			Status:     StatusWarn,
			Severity:   SeverityMedium,
			Evaluator:  EvaluatorHardGate,
			Remark:     "未找到对应响应（非强制要求）",
			Confidence: 1,
		}
	}

	total := 0
	for _, c := range candidates {
		total += utf8.RuneCountInString(c.Text)
	}
	if total < rb.MinSubstantiveLen {
		return Verdict{
			Status:     StatusWarn,
			Severity:   SeverityMedium,
			Evaluator:  EvaluatorHardGate,
			Remark:     fmt.Sprintf("响应内容过短（共%d字），无法构成实质性应答", total),
			Confidence: 1,
			Evidence:   responseEvidence(candidates),
		}
	}
	return Verdict{
		Status:     StatusPass,
		Severity:   SeverityInfo,
		Evaluator:  EvaluatorHardGate,
		Remark:     fmt.Sprintf("找到%d条对应响应", len(candidates)),
		Confidence: 1,
		Evidence:   responseEvidence(candidates),
	}
}

// responseEvidence turns the responses' bid-corpus chunk references into
// evidence entries. Responses without references cite the response itself.
func responseEvidence(responses []Response) []evidence.Entry {
	var out []evidence.Entry
	for _, r := range responses {
		if len(r.EvidenceRefs) == 0 {
			out = append(out, evidence.Entry{
				Role:   evidence.RoleBid,
				Source: r.ResponseID,
				Quote:  snippet(r.Text, 80),
			})
			continue
		}
		for _, ref := range r.EvidenceRefs {
			out = append(out, evidence.Entry{
				Role:    evidence.RoleBid,
				Source:  ref,
				ChunkID: ref,
				Quote:   snippet(r.Text, 80),
			})
		}
	}
	return evidence.Merge(out)
}

func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
