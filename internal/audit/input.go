package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"tenderaudit/internal/normalize"
)

// RequirementSet is a decoded requirements document.
type RequirementSet struct {
	Requirements []Requirement `json:"requirements"`
}

// ResponseSet is a decoded responses document for one bidder.
type ResponseSet struct {
	Responses []Response `json:"responses"`
}

// ParseRequirements strictly decodes a requirements document. Dimension
// labels may be free text; they are normalized to the closed enum.
func ParseRequirements(raw []byte) ([]Requirement, error) {
	var set RequirementSet
	if err := decodeStrict(raw, &set); err != nil {
		return nil, fmt.Errorf("invalid requirements JSON: %w", err)
	}
	return ValidateRequirements(set.Requirements)
}

// ValidateRequirements checks ids and text and normalizes dimensions
// and eval methods in place.
func ValidateRequirements(reqs []Requirement) ([]Requirement, error) {
	seen := make(map[string]struct{}, len(reqs))
	for i := range reqs {
		r := &reqs[i]
		if strings.TrimSpace(r.RequirementID) == "" {
			return nil, fmt.Errorf("requirements[%d].requirement_id is required", i)
		}
		if _, dup := seen[r.RequirementID]; dup {
			return nil, fmt.Errorf("duplicate requirement_id: %s", r.RequirementID)
		}
		seen[r.RequirementID] = struct{}{}
		if strings.TrimSpace(r.Text) == "" {
			return nil, fmt.Errorf("requirements[%d].requirement_text is required", i)
		}
		switch r.EvalMethod {
		case MethodPresence, MethodNumeric, MethodSemantic:
		case "":
			r.EvalMethod = MethodPresence
		default:
			// left as-is; the orchestrator marks unknown methods out of scope
		}
		r.Dimension = normalize.ParseDimension(string(r.Dimension))
	}
	return reqs, nil
}

// ParseResponses strictly decodes a bidder's responses document.
func ParseResponses(raw []byte) ([]Response, error) {
	var set ResponseSet
	if err := decodeStrict(raw, &set); err != nil {
		return nil, fmt.Errorf("invalid responses JSON: %w", err)
	}
	return ValidateResponses(set.Responses)
}

// ValidateResponses checks ids and normalizes dimensions in place.
func ValidateResponses(resps []Response) ([]Response, error) {
	seen := make(map[string]struct{}, len(resps))
	for i := range resps {
		r := &resps[i]
		if strings.TrimSpace(r.ResponseID) == "" {
			return nil, fmt.Errorf("responses[%d].response_id is required", i)
		}
		if _, dup := seen[r.ResponseID]; dup {
			return nil, fmt.Errorf("duplicate response_id: %s", r.ResponseID)
		}
		seen[r.ResponseID] = struct{}{}
		r.Dimension = normalize.ParseDimension(string(r.Dimension))
	}
	return resps, nil
}

func decodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("trailing content after JSON document")
	}
	return nil
}
