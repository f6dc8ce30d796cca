package audit

import (
	"fmt"
	"strings"

	"tenderaudit/internal/normalize"
)

type unitKind int

const (
	unitUnknown unitKind = iota
	unitMoney
	unitDays
	unitMonths
)

func (u unitKind) label() string {
	switch u {
	case unitMoney:
		return "元"
	case unitDays:
		return "天"
	case unitMonths:
		return "个月"
	}
	return ""
}

// normalizeValue parses a quantity of the given unit out of free text,
// returning the canonical base value (yuan, days, months).
func normalizeValue(u unitKind, text string) (float64, bool) {
	switch u {
	case unitMoney:
		v, ok := normalize.MoneyToCNY(text)
		return float64(v), ok
	case unitDays:
		v, ok := normalize.DurationToDays(text)
		return float64(v), ok
	case unitMonths:
		v, ok := normalize.WarrantyToMonths(text)
		return float64(v), ok
	}
	return 0, false
}

// unitOf resolves the requirement's unit from its value schema, falling
// back to wording cues in the requirement text.
func unitOf(req Requirement) unitKind {
	probe := ""
	if req.ValueSchema != nil {
		probe = strings.ToLower(req.ValueSchema.Unit)
	}
	switch {
	case containsAny(probe, "元", "万", "money", "cny", "yuan", "价"):
		return unitMoney
	case containsAny(probe, "天", "日", "day"):
		return unitDays
	case containsAny(probe, "月", "年", "month", "year"):
		return unitMonths
	}
	text := req.Text
	switch {
	case containsAny(text, "质保", "保修", "保质"):
		return unitMonths
	case containsAny(text, "工期", "交货", "天", "日"):
		return unitDays
	case containsAny(text, "元", "价", "金额"):
		return unitMoney
	}
	return unitUnknown
}

// operatorOf resolves the comparison operator: value schema first, then
// wording cues, defaulting to equality.
func operatorOf(req Requirement) string {
	if req.ValueSchema != nil {
		switch strings.TrimSpace(req.ValueSchema.Operator) {
		case "<=", "≤", "le":
			return "<="
		case ">=", "≥", "ge":
			return ">="
		case "=", "==", "eq":
			return "="
		}
	}
	switch {
	case containsAny(req.Text, "不超过", "不高于", "以内", "最多", "≤"):
		return "<="
	case containsAny(req.Text, "不低于", "不少于", "至少", "以上", "≥"):
		return ">="
	}
	return "="
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// evalNumeric is the threshold check for NUMERIC requirements. Unparsable
// thresholds or response values are a normalization failure; the
// orchestrator escalates those instead of failing the bidder silently.
func evalNumeric(req Requirement, candidates []Response) (Verdict, *EvalError) {
	if len(candidates) == 0 {
		return Verdict{}, evalErrf(ErrNormalizationFailure, "requirement %s: no candidate response", req.RequirementID)
	}
	unit := unitOf(req)
	if unit == unitUnknown {
		return Verdict{}, evalErrf(ErrNormalizationFailure, "requirement %s: cannot determine unit", req.RequirementID)
	}
	threshold, ok := normalizeValue(unit, req.Text)
	if !ok {
		return Verdict{}, evalErrf(ErrNormalizationFailure, "requirement %s: cannot parse threshold", req.RequirementID)
	}

	actual, source, ok := responseValue(unit, candidates)
	if !ok {
		return Verdict{}, evalErrf(ErrNormalizationFailure, "requirement %s: cannot parse response value", req.RequirementID)
	}

	op := operatorOf(req)
	pass := compare(actual, op, threshold)
	remark := fmt.Sprintf("要求 %s %s%s，响应值 %s%s",
		op, formatQty(threshold), unit.label(), formatQty(actual), unit.label())
	if pass {
		return Verdict{
			Status:     StatusPass,
			Severity:   SeverityInfo,
			Evaluator:  EvaluatorNumeric,
			Remark:     "数值满足要求：" + remark,
			Confidence: 1,
			Evidence:   responseEvidence([]Response{source}),
		}, nil
	}
	sev := SeverityHigh
	if req.IsHard {
		sev = SeverityCritical
	}
	return Verdict{
		Status:     StatusFail,
		Severity:   sev,
		Evaluator:  EvaluatorNumeric,
		Remark:     "数值不满足要求：" + remark,
		Confidence: 1,
		Evidence:   responseEvidence([]Response{source}),
	}, nil
}

// responseValue picks the first candidate that yields a usable value:
// a pre-extracted value wins over re-parsing the response text.
func responseValue(unit unitKind, candidates []Response) (float64, Response, bool) {
	for _, c := range candidates {
		if c.ExtractedValue != nil {
			return *c.ExtractedValue, c, true
		}
	}
	for _, c := range candidates {
		if v, ok := normalizeValue(unit, c.Text); ok {
			return v, c, true
		}
	}
	return 0, Response{}, false
}

func compare(actual float64, op string, threshold float64) bool {
	switch op {
	case "<=":
		return actual <= threshold
	case ">=":
		return actual >= threshold
	default:
		return actual == threshold
	}
}

func formatQty(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
