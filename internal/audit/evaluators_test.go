package audit

import (
	"strings"
	"testing"

	"tenderaudit/internal/normalize"
	"tenderaudit/internal/rules"
)

func floatPtr(v float64) *float64 { return &v }

func TestHardGateNoCandidates(t *testing.T) {
	rb := rules.Default()

	v := evalHardGate(Requirement{RequirementID: "r1", IsHard: true}, nil, rb)
	if v.Status != StatusFail || v.Severity != SeverityCritical {
		t.Fatalf("hard requirement without response: got %s/%s", v.Status, v.Severity)
	}

	v = evalHardGate(Requirement{RequirementID: "r2", IsHard: false}, nil, rb)
	if v.Status != StatusWarn || v.Severity != SeverityMedium {
		t.Fatalf("advisory requirement without response: got %s/%s", v.Status, v.Severity)
	}
}

func TestHardGateShortResponse(t *testing.T) {
	rb := rules.Default()
	v := evalHardGate(Requirement{RequirementID: "r1"}, []Response{{ResponseID: "a1", Text: "满足"}}, rb)
	if v.Status != StatusWarn {
		t.Fatalf("expected WARN for short response, got %s", v.Status)
	}
}

func TestHardGatePass(t *testing.T) {
	rb := rules.Default()
	v := evalHardGate(Requirement{RequirementID: "r1"}, []Response{
		{ResponseID: "a1", Text: "我方具备建筑工程施工总承包一级资质，详见附件证书", EvidenceRefs: []string{"bid-c12"}},
	}, rb)
	if v.Status != StatusPass {
		t.Fatalf("expected PASS, got %s (%s)", v.Status, v.Remark)
	}
	if len(v.Evidence) == 0 || v.Evidence[0].ChunkID != "bid-c12" {
		t.Fatalf("expected bid evidence with chunk id, got %+v", v.Evidence)
	}
}

func TestNumericThresholdPassAndFail(t *testing.T) {
	req := Requirement{
		RequirementID: "r1",
		Dimension:     normalize.DimScheduleQuality,
		Text:          "工期不超过180天",
		IsHard:        true,
		EvalMethod:    MethodNumeric,
		ValueSchema:   &ValueSchema{Operator: "<=", Unit: "天"},
	}

	v, evalErr := evalNumeric(req, []Response{{ResponseID: "a1", Text: "我方承诺工期150天"}})
	if evalErr != nil {
		t.Fatalf("unexpected error: %v", evalErr)
	}
	if v.Status != StatusPass {
		t.Fatalf("150 <= 180 must pass, got %s (%s)", v.Status, v.Remark)
	}

	v, evalErr = evalNumeric(req, []Response{{ResponseID: "a1", Text: "我方承诺工期200天"}})
	if evalErr != nil {
		t.Fatalf("unexpected error: %v", evalErr)
	}
	if v.Status != StatusFail || v.Severity != SeverityCritical {
		t.Fatalf("200 > 180 on hard requirement must fail critical, got %s/%s", v.Status, v.Severity)
	}
}

func TestNumericExtractedValueWins(t *testing.T) {
	req := Requirement{
		RequirementID: "r1",
		Text:          "质保期不少于24个月",
		ValueSchema:   &ValueSchema{Operator: ">=", Unit: "月"},
	}
	v, evalErr := evalNumeric(req, []Response{{ResponseID: "a1", Text: "见售后服务方案", ExtractedValue: floatPtr(36)}})
	if evalErr != nil {
		t.Fatalf("unexpected error: %v", evalErr)
	}
	if v.Status != StatusPass {
		t.Fatalf("extracted 36 >= 24 must pass, got %s", v.Status)
	}
}

func TestNumericUnparsableEscalates(t *testing.T) {
	req := Requirement{
		RequirementID: "r1",
		Text:          "质保期不少于24个月",
		ValueSchema:   &ValueSchema{Operator: ">=", Unit: "月"},
	}
	_, evalErr := evalNumeric(req, []Response{{ResponseID: "a1", Text: "按国家规定执行"}})
	if evalErr == nil || evalErr.Kind != ErrNormalizationFailure {
		t.Fatalf("expected normalization failure, got %v", evalErr)
	}

	_, evalErr = evalNumeric(req, nil)
	if evalErr == nil || evalErr.Kind != ErrNormalizationFailure {
		t.Fatalf("expected normalization failure without candidates, got %v", evalErr)
	}
}

func consistencyResponses(total, item1, item2 float64) []Response {
	return []Response{
		{ResponseID: "t", Dimension: normalize.DimPrice, Text: "开标一览表：投标总价", ExtractedValue: floatPtr(total)},
		{ResponseID: "i1", Dimension: normalize.DimPrice, Text: "分项报价：土建工程", ExtractedValue: floatPtr(item1)},
		{ResponseID: "i2", Dimension: normalize.DimPrice, Text: "分项报价：安装工程", ExtractedValue: floatPtr(item2)},
	}
}

func TestConsistencyBands(t *testing.T) {
	rb := rules.Default()

	// 0.6% off -> FAIL
	v := evalConsistency(consistencyResponses(1_000_000, 500_000, 506_000), rb)
	if v == nil || v.Status != StatusFail || v.Severity != SeverityCritical {
		t.Fatalf("0.6%% deviation must fail critical, got %+v", v)
	}

	// 0.3% off -> WARN
	v = evalConsistency(consistencyResponses(1_000_000, 500_000, 503_000), rb)
	if v == nil || v.Status != StatusWarn {
		t.Fatalf("0.3%% deviation must warn, got %+v", v)
	}

	// 0.05% off -> PASS
	v = evalConsistency(consistencyResponses(1_000_000, 500_000, 500_500), rb)
	if v == nil || v.Status != StatusPass {
		t.Fatalf("0.05%% deviation must pass, got %+v", v)
	}
}

func TestConsistencySkippedWithoutTotalOrItems(t *testing.T) {
	rb := rules.Default()

	// no total
	v := evalConsistency([]Response{
		{ResponseID: "i1", Dimension: normalize.DimPrice, Text: "分项报价：土建工程", ExtractedValue: floatPtr(1)},
	}, rb)
	if v != nil {
		t.Fatalf("check must be skipped without a total, got %+v", v)
	}

	// no items
	v = evalConsistency([]Response{
		{ResponseID: "t", Dimension: normalize.DimPrice, Text: "投标总价500万元"},
	}, rb)
	if v != nil {
		t.Fatalf("check must be skipped without itemized figures, got %+v", v)
	}

	// non-anchor money mentions are ignored entirely
	v = evalConsistency([]Response{
		{ResponseID: "x", Dimension: normalize.DimPrice, Text: "近三年类似项目合同金额800万元"},
	}, rb)
	if v != nil {
		t.Fatalf("non-anchor text must not trigger the check, got %+v", v)
	}
}

func TestConsistencyParsesMoneyFromText(t *testing.T) {
	rb := rules.Default()
	v := evalConsistency([]Response{
		{ResponseID: "t", Dimension: normalize.DimPrice, Text: "开标一览表：投标总价100万元"},
		{ResponseID: "i1", Dimension: normalize.DimPrice, Text: "分项报价合计：土建60万元"},
		{ResponseID: "i2", Dimension: normalize.DimPrice, Text: "分项报价合计：安装40万元"},
	}, rb)
	if v == nil || v.Status != StatusPass {
		t.Fatalf("60+40 vs 100 must pass, got %+v", v)
	}
	if !strings.Contains(v.Remark, "1000000") {
		t.Fatalf("remark should carry the parsed totals, got %q", v.Remark)
	}
}
