package audit

import (
	"context"
	"errors"
	"log"

	"tenderaudit/internal/evidence"
	"tenderaudit/internal/llm"
	"tenderaudit/internal/retrieval"
	"tenderaudit/internal/rules"
)

// semanticEvaluator resolves a requirement the deterministic stages could
// not, by asking a language model to judge the requirement against
// passages retrieved from both corpora.
type semanticEvaluator struct {
	retriever retrieval.Retriever
	judge     llm.Judge
	rb        *rules.RuleBook
	cacheDir  string
	model     string
	topK      int
}

func (s *semanticEvaluator) evaluate(ctx context.Context, projectID, bidder string, req Requirement) (Verdict, *EvalError) {
	question := s.rb.Question(req.Dimension, req.Text)

	tender, tenderErr := s.retrieve(ctx, projectID, bidder, question, retrieval.CorpusTender)
	bid, bidErr := s.retrieve(ctx, projectID, bidder, question, retrieval.CorpusBid)
	if tenderErr != nil && bidErr != nil {
		return Verdict{}, evalErrf(ErrRetrievalUnavailable,
			"requirement %s: both corpora unavailable (tender: %v; bid: %v)", req.RequirementID, tenderErr, bidErr)
	}
	if len(tender) == 0 && len(bid) == 0 {
		return Verdict{
			Status:     StatusPending,
			Severity:   SeverityInfo,
			Evaluator:  EvaluatorSemantic,
			Remark:     "两侧语料均未检索到相关内容，无法判断，转人工复核",
			Confidence: 0,
		}, nil
	}

	judgement, evalErr := s.askJudge(ctx, question, req, tender, bid)
	if evalErr != nil {
		return Verdict{}, evalErr
	}

	ev := evidence.Merge(passageEvidence(evidence.RoleTender, tender), passageEvidence(evidence.RoleBid, bid))
	v := Verdict{
		Evaluator:  EvaluatorSemantic,
		Remark:     judgement.Rationale,
		Confidence: judgement.Confidence,
		Evidence:   ev,
	}
	switch judgement.Verdict {
	case judgeCompliant:
		v.Status, v.Severity = StatusPass, SeverityInfo
	case judgePartial:
		v.Status, v.Severity = StatusWarn, SeverityMedium
	case judgeNonCompliant:
		v.Status = StatusFail
		if req.IsHard {
			v.Severity = SeverityCritical
		} else {
			v.Severity = SeverityHigh
		}
	default: // insufficient_evidence
		v.Status, v.Severity = StatusPending, SeverityLow
	}
	return v, nil
}

// retrieve queries one corpus. A failure is logged and surfaced to the
// caller; evaluation proceeds with whichever corpus answered.
func (s *semanticEvaluator) retrieve(ctx context.Context, projectID, bidder, question string, corpus retrieval.Corpus) ([]retrieval.Passage, error) {
	passages, err := s.retriever.Retrieve(ctx, retrieval.Query{
		ProjectID: projectID,
		Bidder:    bidder,
		Corpus:    corpus,
		Text:      question,
		TopK:      s.topK,
	})
	if err != nil {
		log.Printf("retrieve %s corpus: %v", corpus, err)
		return nil, err
	}
	return passages, nil
}

// askJudge runs the model call with cache lookup and defensive parsing.
func (s *semanticEvaluator) askJudge(ctx context.Context, question string, req Requirement, tender, bid []retrieval.Passage) (Judgement, *EvalError) {
	key := ""
	if s.cacheDir != "" {
		k, err := judgeCacheKey(req, question, s.model, tender, bid)
		if err != nil {
			log.Printf("judge cache key: %v", err)
		} else {
			key = k
			if cached, err := loadJudgeCache(s.cacheDir, key); err == nil {
				return cached.Judgement, nil
			}
		}
	}

	resp, err := s.judge.Judge(ctx, llm.JudgeRequest{
		SystemPrompt:    buildSystemPrompt(),
		UserPrompt:      buildUserPrompt(question, req.Text, tender, bid),
		ResponseSchema:  judgeResponseSchema(),
		Temperature:     0,
		MaxOutputTokens: 1024,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Judgement{}, evalErrf(ErrModelTimeout, "requirement %s: %v", req.RequirementID, err)
		}
		return Judgement{}, evalErrf(ErrModelUnavailable, "requirement %s: %v", req.RequirementID, err)
	}

	judgement, err := parseJudgement(resp.Text)
	if err != nil {
		// one repair attempt already happened inside parseJudgement
		return Judgement{}, evalErrf(ErrMalformedModelOutput, "requirement %s: %v", req.RequirementID, err)
	}

	if key != "" {
		if err := saveJudgeCache(s.cacheDir, key, CachedJudgement{
			Model:         resp.Model,
			PromptVersion: promptVersion,
			Judgement:     judgement,
			RawText:       resp.Text,
		}); err != nil {
			log.Printf("judge cache save: %v", err)
		}
	}
	return judgement, nil
}

func passageEvidence(role evidence.Role, passages []retrieval.Passage) []evidence.Entry {
	var out []evidence.Entry
	for _, p := range passages {
		out = append(out, evidence.Entry{
			Role:      role,
			Source:    p.Source,
			PageStart: p.PageStart,
			Quote:     snippet(p.Quote, 120),
			ChunkID:   p.ChunkID,
		})
	}
	return out
}
