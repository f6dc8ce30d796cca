package audit

import (
	"fmt"
	"math"

	"tenderaudit/internal/normalize"
	"tenderaudit/internal/rules"
)

// evalConsistency sums the bidder's itemized price figures and compares
// them against the declared total. Only responses recognised as price
// anchors participate, so incidental money mentions (past contract values
// and the like) cannot poison the check. Returns nil when the check does
// not apply: having no total or no itemized figures is not a finding.
func evalConsistency(priceResponses []Response, rb *rules.RuleBook) *Verdict {
	var total float64
	var totalResp Response
	haveTotal := false
	var itemSum float64
	var items []Response

	for _, r := range priceResponses {
		if !normalize.IsPriceAnchor(r.Text, rb.PriceAnchorKeywords) {
			continue
		}
		v, ok := priceValue(r)
		if !ok {
			continue
		}
		if containsAny(r.Text, rb.TotalPriceKeywords...) {
			if !haveTotal {
				total = v
				totalResp = r
				haveTotal = true
			}
			continue
		}
		itemSum += v
		items = append(items, r)
	}

	if !haveTotal || len(items) == 0 || total <= 0 {
		return nil
	}

	ratio := math.Abs(itemSum-total) / total
	remark := fmt.Sprintf("报价总价 %s 元，分项合计 %s 元，偏差 %.3f%%",
		formatQty(total), formatQty(itemSum), ratio*100)
	ev := responseEvidence(append([]Response{totalResp}, items...))

	switch {
	case ratio > rb.Consistency.FailRatio:
		return &Verdict{
			Status:     StatusFail,
			Severity:   SeverityCritical,
			Evaluator:  EvaluatorConsistency,
			Remark:     "分项报价与总价不一致：" + remark,
			Confidence: 1,
			Evidence:   ev,
		}
	case ratio > rb.Consistency.WarnRatio:
		return &Verdict{
			Status:     StatusWarn,
			Severity:   SeverityMedium,
			Evaluator:  EvaluatorConsistency,
			Remark:     "分项报价与总价存在偏差，需人工核实：" + remark,
			Confidence: 1,
			Evidence:   ev,
		}
	default:
		return &Verdict{
			Status:     StatusPass,
			Severity:   SeverityInfo,
			Evaluator:  EvaluatorConsistency,
			Remark:     "分项报价与总价一致：" + remark,
			Confidence: 1,
			Evidence:   ev,
		}
	}
}

func priceValue(r Response) (float64, bool) {
	if r.ExtractedValue != nil {
		return *r.ExtractedValue, true
	}
	v, ok := normalize.MoneyToCNY(r.Text)
	return float64(v), ok
}
