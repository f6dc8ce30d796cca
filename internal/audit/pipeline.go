package audit

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tenderaudit/internal/llm"
	"tenderaudit/internal/retrieval"
	"tenderaudit/internal/rules"
)

// Options tunes one pipeline run.
type Options struct {
	// SemanticEnabled lets unresolved requirements escalate to the model.
	SemanticEnabled bool
	// Timeout bounds the whole run. Zero means no run-level timeout.
	// On expiry, in-flight semantic evaluations are abandoned and their
	// requirements stay PENDING; the run itself still succeeds.
	Timeout time.Duration
	// TopK overrides the rule book's retrieval depth when positive.
	TopK int
	// Retriever overrides the pipeline's retriever for this run, e.g.
	// when the caller supplies an inline corpus.
	Retriever retrieval.Retriever
}

// Pipeline sequences the evaluation stages for one (project, bidder) run.
type Pipeline struct {
	rb        *rules.RuleBook
	retriever retrieval.Retriever
	judge     llm.Judge
	model     string
	cacheDir  string

	mu       sync.Mutex
	runLocks map[string]*sync.Mutex
}

// NewPipeline wires the engine. The rule book is mandatory and validated
// up front; retriever and judge may be nil, which disables semantic
// escalation (PENDING items then stay PENDING).
func NewPipeline(rb *rules.RuleBook, retriever retrieval.Retriever, judge llm.Judge, model, cacheDir string) (*Pipeline, error) {
	if rb == nil {
		return nil, &EvalError{Kind: ErrConfiguration, Err: fmt.Errorf("rule book is required")}
	}
	if err := rb.Validate(); err != nil {
		return nil, &EvalError{Kind: ErrConfiguration, Err: err}
	}
	return &Pipeline{
		rb:        rb,
		retriever: retriever,
		judge:     judge,
		model:     model,
		cacheDir:  cacheDir,
		runLocks:  make(map[string]*sync.Mutex),
	}, nil
}

// runLock serializes concurrent runs for the same (project, bidder) pair.
// Runs for different bidders proceed in parallel.
func (p *Pipeline) runLock(projectID, bidder string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := projectID + "\x00" + bidder
	l, ok := p.runLocks[key]
	if !ok {
		l = &sync.Mutex{}
		p.runLocks[key] = l
	}
	return l
}

// pendingRemark translates an evaluator failure into the user-facing
// PENDING explanation.
func pendingRemark(e *EvalError) string {
	switch e.Kind {
	case ErrRetrievalUnavailable:
		return fmt.Sprintf("语义验证失败：检索服务不可用（%v）", e.Err)
	case ErrModelTimeout:
		return fmt.Sprintf("语义验证失败：模型调用超时（%v）", e.Err)
	case ErrModelUnavailable, ErrMalformedModelOutput:
		return fmt.Sprintf("语义验证失败：%v", e.Err)
	case ErrNormalizationFailure:
		return "数值无法解析，转人工复核"
	}
	return fmt.Sprintf("无法自动判断：%v", e.Err)
}

// Run executes the full pipeline for one bidder and returns the review
// items plus aggregate stats. It never returns an error for evaluation
// failures; only configuration-level problems abort the run.
func (p *Pipeline) Run(ctx context.Context, projectID, bidder string, reqs []Requirement, resps []Response, opts Options) (*RunResult, error) {
	if projectID == "" || bidder == "" {
		return nil, &EvalError{Kind: ErrConfiguration, Err: fmt.Errorf("project id and bidder name are required")}
	}

	lock := p.runLock(projectID, bidder)
	lock.Lock()
	defer lock.Unlock()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	idx := NewCandidateIndex(resps)

	// Stage 1: deterministic evaluators, cheap and synchronous.
	items := make([]ReviewItem, 0, len(reqs)+2)
	type escalation struct {
		itemIdx int
		req     Requirement
	}
	var escalations []escalation

	for _, req := range reqs {
		candidates := idx.Candidates(req)
		switch req.EvalMethod {
		case MethodPresence:
			items = append(items, newItem(req.RequirementID, bidder, req.Dimension, evalHardGate(req, candidates, p.rb)))
		case MethodNumeric:
			v, evalErr := evalNumeric(req, candidates)
			if evalErr == nil {
				items = append(items, newItem(req.RequirementID, bidder, req.Dimension, v))
				continue
			}
			items = append(items, newItem(req.RequirementID, bidder, req.Dimension, Verdict{
				Status:     StatusPending,
				Severity:   SeverityLow,
				Evaluator:  EvaluatorNumeric,
				Remark:     pendingRemark(evalErr),
				Confidence: 0,
			}))
			escalations = append(escalations, escalation{len(items) - 1, req})
		case MethodSemantic:
			items = append(items, newItem(req.RequirementID, bidder, req.Dimension, Verdict{
				Status:     StatusPending,
				Severity:   SeverityLow,
				Evaluator:  EvaluatorSemantic,
				Remark:     "等待语义验证",
				Confidence: 0,
			}))
			escalations = append(escalations, escalation{len(items) - 1, req})
		default:
			items = append(items, newItem(req.RequirementID, bidder, req.Dimension, Verdict{
				Status:     StatusWarn,
				Severity:   SeverityInfo,
				Evaluator:  EvaluatorOutOfScope,
				Remark:     fmt.Sprintf("审核方式 %q 不在自动审核范围内", string(req.EvalMethod)),
				Confidence: 1,
			}))
		}
	}

	// Cross-field price consistency, once per run.
	if v := evalConsistency(idx.PriceResponses(), p.rb); v != nil {
		items = append(items, newItem(ConsistencyRequirementID, bidder, "price", *v))
	}

	// Stage 2: semantic escalation under a bounded worker pool. Failures
	// and timeouts leave the item PENDING; they never fail the run.
	retriever := p.retriever
	if opts.Retriever != nil {
		retriever = opts.Retriever
	}
	if opts.SemanticEnabled && p.judge != nil && retriever != nil && len(escalations) > 0 {
		sem := &semanticEvaluator{
			retriever: retriever,
			judge:     p.judge,
			rb:        p.rb,
			cacheDir:  p.cacheDir,
			model:     p.model,
			topK:      p.topK(opts),
		}
		var itemsMu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.rb.SemanticWorkers)
		for _, esc := range escalations {
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil // run timed out; item stays PENDING
				}
				v, evalErr := sem.evaluate(gctx, projectID, bidder, esc.req)
				itemsMu.Lock()
				defer itemsMu.Unlock()
				if evalErr != nil {
					items[esc.itemIdx].Remark = pendingRemark(evalErr)
					return nil
				}
				items[esc.itemIdx] = newItem(esc.req.RequirementID, bidder, esc.req.Dimension, v)
				return nil
			})
		}
		_ = g.Wait()
	}

	// MUST_HIT fallback: downstream consumers never see an empty result.
	if len(items) == 0 {
		items = append(items, newItem(BaselineRequirementID, bidder, "other", Verdict{
			Status:     StatusPass,
			Severity:   SeverityInfo,
			Evaluator:  EvaluatorMustHit,
			Remark:     "审核流水线已执行，未产生其他审核项",
			Confidence: 1,
		}))
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].RequirementID < items[j].RequirementID })

	stats := ComputeStats(items, p.rb.LowConfidence)
	log.Printf("audit run project=%s bidder=%s items=%d pending=%d", projectID, bidder, len(items), stats.ByStatus[StatusPending])
	return &RunResult{
		ProjectID:  projectID,
		BidderName: bidder,
		Items:      items,
		Stats:      stats,
	}, nil
}

func (p *Pipeline) topK(opts Options) int {
	if opts.TopK > 0 {
		return opts.TopK
	}
	return p.rb.RetrievalTopK
}
