package audit

import "tenderaudit/internal/normalize"

// CandidateIndex buckets a bidder's responses by dimension. Dimension is
// the join key between requirements and responses; there is no finer
// per-requirement linkage upstream.
type CandidateIndex struct {
	byDimension map[normalize.Dimension][]Response
}

// NewCandidateIndex builds the index for one bidder's response set.
func NewCandidateIndex(responses []Response) *CandidateIndex {
	idx := &CandidateIndex{byDimension: make(map[normalize.Dimension][]Response)}
	for _, r := range responses {
		dim := r.Dimension
		if dim == "" {
			dim = normalize.DimOther
		}
		idx.byDimension[dim] = append(idx.byDimension[dim], r)
	}
	return idx
}

// Candidates returns all responses sharing the requirement's dimension,
// in input order. An empty result means the bidder gave no response for
// that dimension.
func (idx *CandidateIndex) Candidates(req Requirement) []Response {
	return idx.byDimension[req.Dimension]
}

// PriceResponses returns the bidder's price-dimension responses.
func (idx *CandidateIndex) PriceResponses() []Response {
	return idx.byDimension[normalize.DimPrice]
}
