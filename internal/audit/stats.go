package audit

import "tenderaudit/internal/normalize"

// Stats is the read-side reduction over one run's review items.
type Stats struct {
	Total             int                         `json:"total"`
	ByStatus          map[Status]int              `json:"by_status"`
	ByEvaluator       map[Evaluator]int           `json:"by_evaluator"`
	ByDimension       map[normalize.Dimension]int `json:"by_dimension"`
	PassRate          float64                     `json:"pass_rate"`
	NeedsManualReview int                         `json:"needs_manual_review"`
}

// ComputeStats counts verdicts by status, evaluator and dimension.
// NeedsManualReview covers PENDING items plus PASS/FAIL verdicts whose
// confidence falls below lowConfidence.
func ComputeStats(items []ReviewItem, lowConfidence float64) Stats {
	s := Stats{
		Total:       len(items),
		ByStatus:    make(map[Status]int),
		ByEvaluator: make(map[Evaluator]int),
		ByDimension: make(map[normalize.Dimension]int),
	}
	for _, it := range items {
		s.ByStatus[it.Status]++
		s.ByEvaluator[it.Evaluator]++
		s.ByDimension[it.Dimension]++
		switch it.Status {
		case StatusPending:
			s.NeedsManualReview++
		case StatusPass, StatusFail:
			if it.Confidence < lowConfidence {
				s.NeedsManualReview++
			}
		}
	}
	if s.Total > 0 {
		s.PassRate = float64(s.ByStatus[StatusPass]) / float64(s.Total)
	}
	return s
}
