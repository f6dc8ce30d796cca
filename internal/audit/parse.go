package audit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Judgement is the structured answer expected from the model.
type Judgement struct {
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// parseJudgement decodes the model's raw text. One bounded repair attempt
// is made for the usual failure modes: markdown code fences, single-quoted
// JSON, and trailing prose after the JSON object.
func parseJudgement(raw string) (Judgement, error) {
	if j, err := decodeJudgement(raw); err == nil {
		return j, nil
	}
	repaired := repairModelText(raw)
	j, err := decodeJudgement(repaired)
	if err != nil {
		return Judgement{}, fmt.Errorf("unparsable model output: %w", err)
	}
	return j, nil
}

func decodeJudgement(raw string) (Judgement, error) {
	var j Judgement
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &j); err != nil {
		return Judgement{}, err
	}
	switch j.Verdict {
	case judgeCompliant, judgePartial, judgeNonCompliant, judgeInsufficient:
	default:
		return Judgement{}, fmt.Errorf("unknown verdict %q", j.Verdict)
	}
	if j.Confidence < 0 {
		j.Confidence = 0
	}
	if j.Confidence > 1 {
		j.Confidence = 1
	}
	return j, nil
}

// repairModelText strips markdown fences, cuts the text down to the first
// balanced JSON object, and normalizes single-quoted JSON when the text
// carries no double quotes at all.
func repairModelText(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	if obj := firstJSONObject(s); obj != "" {
		s = obj
	}
	if !strings.Contains(s, `"`) && strings.Contains(s, "'") {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	return s
}

// firstJSONObject returns the first balanced {...} block, ignoring braces
// inside string literals.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
