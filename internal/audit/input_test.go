package audit

import (
	"testing"

	"tenderaudit/internal/normalize"
)

func TestParseRequirements(t *testing.T) {
	raw := []byte(`{"requirements":[
		{"requirement_id":"r1","requirement_text":"须提供营业执照","dimension":"资格审查","is_hard":true},
		{"requirement_id":"r2","requirement_text":"工期不超过180天","dimension":"schedule_quality","eval_method":"NUMERIC"}
	]}`)
	reqs, err := ParseRequirements(raw)
	if err != nil {
		t.Fatalf("ParseRequirements: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("got %d requirements", len(reqs))
	}
	if reqs[0].EvalMethod != MethodPresence {
		t.Fatalf("empty eval_method must default to presence, got %q", reqs[0].EvalMethod)
	}
	if reqs[0].Dimension != normalize.DimQualification {
		t.Fatalf("free-text dimension not normalized: %q", reqs[0].Dimension)
	}
	if reqs[1].EvalMethod != MethodNumeric {
		t.Fatalf("eval_method: %q", reqs[1].EvalMethod)
	}
}

func TestParseRequirementsRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing id", `{"requirements":[{"requirement_text":"x"}]}`},
		{"missing text", `{"requirements":[{"requirement_id":"r1"}]}`},
		{"duplicate id", `{"requirements":[{"requirement_id":"r1","requirement_text":"a"},{"requirement_id":"r1","requirement_text":"b"}]}`},
		{"unknown field", `{"requirements":[],"extra":1}`},
		{"trailing content", `{"requirements":[]}{"requirements":[]}`},
	}
	for _, tc := range cases {
		if _, err := ParseRequirements([]byte(tc.raw)); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestParseRequirementsKeepsUnknownMethod(t *testing.T) {
	raw := []byte(`{"requirements":[{"requirement_id":"r1","requirement_text":"现场踏勘","eval_method":"manual_site_visit"}]}`)
	reqs, err := ParseRequirements(raw)
	if err != nil {
		t.Fatalf("ParseRequirements: %v", err)
	}
	if string(reqs[0].EvalMethod) != "manual_site_visit" {
		t.Fatalf("unknown method must be preserved for the out-of-scope path, got %q", reqs[0].EvalMethod)
	}
}

func TestParseResponses(t *testing.T) {
	raw := []byte(`{"responses":[
		{"response_id":"a1","response_text":"投标总价500万元","dimension":"报价"},
		{"response_id":"a2","response_text":"工期150天","dimension":"schedule_quality","extracted_value":150}
	]}`)
	resps, err := ParseResponses(raw)
	if err != nil {
		t.Fatalf("ParseResponses: %v", err)
	}
	if resps[0].Dimension != normalize.DimPrice {
		t.Fatalf("dimension alias not normalized: %q", resps[0].Dimension)
	}
	if resps[1].ExtractedValue == nil || *resps[1].ExtractedValue != 150 {
		t.Fatalf("extracted value: %+v", resps[1].ExtractedValue)
	}

	if _, err := ParseResponses([]byte(`{"responses":[{"response_id":"a1"},{"response_id":"a1"}]}`)); err == nil {
		t.Fatal("duplicate response_id must be rejected")
	}
}

func TestCandidateIndex(t *testing.T) {
	idx := NewCandidateIndex([]Response{
		{ResponseID: "a1", Dimension: normalize.DimPrice, Text: "投标总价500万元"},
		{ResponseID: "a2", Dimension: normalize.DimTechnical, Text: "技术方案"},
		{ResponseID: "a3", Text: "未分类内容"},
	})

	price := idx.Candidates(Requirement{Dimension: normalize.DimPrice})
	if len(price) != 1 || price[0].ResponseID != "a1" {
		t.Fatalf("price candidates: %+v", price)
	}
	other := idx.Candidates(Requirement{Dimension: normalize.DimOther})
	if len(other) != 1 || other[0].ResponseID != "a3" {
		t.Fatalf("untagged responses must land in the other bucket: %+v", other)
	}
	if got := idx.PriceResponses(); len(got) != 1 {
		t.Fatalf("price responses: %+v", got)
	}
}
