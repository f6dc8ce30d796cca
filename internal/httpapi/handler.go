// Package httpapi exposes the audit engine over a JSON API.
package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"tenderaudit/internal/audit"
	"tenderaudit/internal/config"
	"tenderaudit/internal/httputil"
	"tenderaudit/internal/retrieval"
	"tenderaudit/internal/rules"

	"github.com/gin-gonic/gin"
)

// InlineCorpus carries pre-chunked passages supplied with the audit
// request, for callers that do not run a retrieval service.
type InlineCorpus struct {
	Tender []retrieval.Passage `json:"tender"`
	Bid    []retrieval.Passage `json:"bid"`
}

// AuditRequest is the JSON body for POST /api/audit.
type AuditRequest struct {
	ProjectID      string              `json:"project_id"`
	BidderName     string              `json:"bidder_name"`
	Requirements   []audit.Requirement `json:"requirements"`
	Responses      []audit.Response    `json:"responses"`
	Corpus         *InlineCorpus       `json:"corpus,omitempty"`
	Semantic       *bool               `json:"semantic,omitempty"`
	TimeoutSeconds int                 `json:"timeout_seconds,omitempty"`
	TopK           int                 `json:"top_k,omitempty"`
}

// AuditResponse is the JSON response for POST /api/audit.
type AuditResponse struct {
	RunID       string             `json:"run_id"`
	ProjectID   string             `json:"project_id"`
	BidderName  string             `json:"bidder_name"`
	ReviewItems []audit.ReviewItem `json:"review_items"`
	Stats       audit.Stats        `json:"stats"`
}

// AuditHandler handles POST /api/audit. Expects the audit-key gate to
// have run first.
func AuditHandler(p *audit.Pipeline, store *audit.RunStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxAuditBytes)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			if httputil.IsBodyTooLarge(err) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}

		var req AuditRequest
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
			return
		}
		if req.ProjectID == "" || req.BidderName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project_id and bidder_name are required"})
			return
		}

		reqs, err := audit.ValidateRequirements(req.Requirements)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		resps, err := audit.ValidateResponses(req.Responses)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		opts := audit.Options{
			SemanticEnabled: req.Semantic == nil || *req.Semantic,
			TopK:            req.TopK,
		}
		if req.TimeoutSeconds > 0 {
			opts.Timeout = time.Duration(req.TimeoutSeconds) * time.Second
		}
		if req.Corpus != nil {
			opts.Retriever = inlineRetriever(req.ProjectID, req.BidderName, req.Corpus)
		}

		result, err := p.Run(c.Request.Context(), req.ProjectID, req.BidderName, reqs, resps, opts)
		if err != nil {
			log.Printf("audit run: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "audit run failed"})
			return
		}

		runID, err := store.SaveRun(result)
		if err != nil {
			log.Printf("save run: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist run"})
			return
		}

		c.JSON(http.StatusOK, AuditResponse{
			RunID:       runID,
			ProjectID:   result.ProjectID,
			BidderName:  result.BidderName,
			ReviewItems: result.Items,
			Stats:       result.Stats,
		})
	}
}

// RunHandler handles GET /api/runs/:id.
func RunHandler(store *audit.RunStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := store.LoadRun(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ItemsHandler handles GET /api/projects/:project/bidders/:bidder/items,
// returning the bidder's current item set across runs.
func ItemsHandler(store *audit.RunStore, rb *rules.RuleBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := store.Items(c.Param("project"), c.Param("bidder"))
		if err != nil {
			log.Printf("load items: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load items"})
			return
		}
		if items == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no items for bidder"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"project_id":   c.Param("project"),
			"bidder_name":  c.Param("bidder"),
			"review_items": items,
			"stats":        audit.ComputeStats(items, rb.LowConfidence),
		})
	}
}

func inlineRetriever(projectID, bidder string, corpus *InlineCorpus) retrieval.Retriever {
	m := retrieval.NewMemory()
	for _, p := range corpus.Tender {
		m.Add(projectID, bidder, retrieval.CorpusTender, p)
	}
	for _, p := range corpus.Bid {
		m.Add(projectID, bidder, retrieval.CorpusBid, p)
	}
	return m
}
