package main

import (
	"log"
	"os"
	"strings"

	"tenderaudit/internal/audit"
	"tenderaudit/internal/auth"
	"tenderaudit/internal/config"
	"tenderaudit/internal/httpapi"
	"tenderaudit/internal/llm"
	"tenderaudit/internal/retrieval"
	"tenderaudit/internal/rules"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := config.Load(); err != nil {
		log.Println("no .env loaded:", err)
	}
	if config.AuditKey() == "" {
		log.Println("warning: AUDIT_KEY not set; gated routes will reject all requests")
	}
	if config.GeminiAPIKey() == "" {
		log.Println("warning: GEMINI_API_KEY not set; semantic verification disabled")
	}

	rb, err := rules.Load(config.RulesFile())
	if err != nil {
		log.Fatal("load rule book: ", err)
	}
	rb.SemanticWorkers = config.SemanticWorkers()
	rb.RetrievalTopK = config.RetrievalTopK()

	var judge llm.Judge
	model := config.GeminiModel()
	if model == "" {
		model = llm.DefaultModel
	}
	if key := config.GeminiAPIKey(); key != "" {
		judge = llm.NewGemini(key, model)
	}

	var retriever retrieval.Retriever
	if url := config.RetrievalURL(); url != "" {
		retriever = retrieval.NewClient(url)
	}

	runsDir := config.RunsDir()
	pipeline, err := audit.NewPipeline(rb, retriever, judge, model, runsDir)
	if err != nil {
		log.Fatal("build pipeline: ", err)
	}
	store := audit.NewRunStore(runsDir, config.RunsIndexLimit(), config.RunsMax())

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := os.MkdirAll(runsDir, 0o755); err != nil {
			c.JSON(500, gin.H{"status": "error", "error": "runs dir not writable"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----- API gated by AuditKey (X-Audit-Key or audit_key query) -----
	api := r.Group("/api")
	api.Use(auth.AuditKey())
	{
		api.POST("/audit", httpapi.AuditHandler(pipeline, store))
		api.GET("/runs/:id", httpapi.RunHandler(store))
		api.GET("/projects/:project/bidders/:bidder/items", httpapi.ItemsHandler(store, rb))
	}

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		if strings.HasPrefix(port, ":") {
			addr = port
		} else {
			addr = ":" + port
		}
	}

	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
