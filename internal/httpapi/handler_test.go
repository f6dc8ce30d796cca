package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tenderaudit/internal/audit"
	"tenderaudit/internal/llm"
	"tenderaudit/internal/retrieval"
	"tenderaudit/internal/rules"

	"github.com/gin-gonic/gin"
)

type stubJudge struct{ text string }

func (s *stubJudge) Judge(_ context.Context, _ llm.JudgeRequest) (llm.JudgeResponse, error) {
	return llm.JudgeResponse{Text: s.text, Model: "stub"}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *audit.RunStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rb := rules.Default()
	judge := &stubJudge{text: `{"verdict":"compliant","confidence":0.9,"rationale":"满足要求"}`}
	p, err := audit.NewPipeline(rb, nil, judge, "stub", t.TempDir())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	store := audit.NewRunStore(t.TempDir(), 10, 10)

	r := gin.New()
	r.POST("/api/audit", AuditHandler(p, store))
	r.GET("/api/runs/:id", RunHandler(store))
	r.GET("/api/projects/:project/bidders/:bidder/items", ItemsHandler(store, rb))
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuditEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/audit", AuditRequest{
		ProjectID:  "p1",
		BidderName: "华建公司",
		Requirements: []audit.Requirement{
			{RequirementID: "r1", Dimension: "qualification", Text: "须提供营业执照", IsHard: true, EvalMethod: audit.MethodPresence},
		},
		Responses: []audit.Response{
			{ResponseID: "a1", Dimension: "qualification", Text: "营业执照副本复印件见商务部分附件三"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var resp AuditResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RunID == "" {
		t.Fatal("run_id missing")
	}
	if len(resp.ReviewItems) != 1 || resp.ReviewItems[0].Status != audit.StatusPass {
		t.Fatalf("review items: %+v", resp.ReviewItems)
	}

	// round-trip through the run record endpoint
	got := doJSON(t, r, http.MethodGet, "/api/runs/"+resp.RunID, nil)
	if got.Code != http.StatusOK {
		t.Fatalf("run lookup status %d", got.Code)
	}

	// and through the current-items endpoint
	items := doJSON(t, r, http.MethodGet, "/api/projects/p1/bidders/华建公司/items", nil)
	if items.Code != http.StatusOK {
		t.Fatalf("items status %d: %s", items.Code, items.Body.String())
	}
}

func TestAuditEndpointRejectsBadInput(t *testing.T) {
	r, _ := newTestRouter(t)

	// missing identifiers
	w := doJSON(t, r, http.MethodPost, "/api/audit", AuditRequest{BidderName: "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing project_id: status %d", w.Code)
	}

	// duplicate requirement ids
	w = doJSON(t, r, http.MethodPost, "/api/audit", AuditRequest{
		ProjectID:  "p1",
		BidderName: "x",
		Requirements: []audit.Requirement{
			{RequirementID: "r1", Text: "a"},
			{RequirementID: "r1", Text: "b"},
		},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate ids: status %d: %s", w.Code, w.Body.String())
	}

	// unknown top-level field
	req := httptest.NewRequest(http.MethodPost, "/api/audit", bytes.NewBufferString(`{"project_id":"p1","bidder_name":"x","bogus":1}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: status %d", w.Code)
	}
}

func TestAuditEndpointInlineCorpus(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/audit", AuditRequest{
		ProjectID:  "p1",
		BidderName: "华建公司",
		Requirements: []audit.Requirement{
			{RequirementID: "r1", Dimension: "qualification", Text: "具备建筑工程施工总承包一级资质", IsHard: true, EvalMethod: audit.MethodSemantic},
		},
		Corpus: &InlineCorpus{
			Tender: []retrieval.Passage{{ChunkID: "t1", Source: "招标.pdf", Quote: "投标人须具备建筑工程施工总承包一级资质"}},
			Bid:    []retrieval.Passage{{ChunkID: "b1", Source: "投标.pdf", Quote: "我方具备建筑工程施工总承包一级资质"}},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp AuditResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ReviewItems[0].Status != audit.StatusPass || resp.ReviewItems[0].Evaluator != audit.EvaluatorSemantic {
		t.Fatalf("semantic item: %+v", resp.ReviewItems[0])
	}
}

func TestRunLookupUnknownID(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/runs/run_does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
}

func TestItemsUnknownBidder(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/projects/p1/bidders/nobody/items", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
}
