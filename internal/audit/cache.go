package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gowebpki/jcs"

	"tenderaudit/internal/retrieval"
)

// CachedJudgement is the on-disk record of one semantic verdict.
type CachedJudgement struct {
	Model         string    `json:"model"`
	PromptVersion string    `json:"prompt_version"`
	Judgement     Judgement `json:"judgement"`
	RawText       string    `json:"raw_text"`
	CachedAt      string    `json:"cached_at"`
}

type cacheKeyInput struct {
	RequirementID string              `json:"requirement_id"`
	Requirement   string              `json:"requirement_text"`
	Question      string              `json:"question"`
	Tender        []retrieval.Passage `json:"tender_passages"`
	Bid           []retrieval.Passage `json:"bid_passages"`
	Model         string              `json:"model"`
	PromptVersion string              `json:"prompt_version"`
}

// judgeCacheKey hashes the full judgement input over its canonical JSON
// form, so key equality means the model would see an identical prompt.
func judgeCacheKey(req Requirement, question, model string, tender, bid []retrieval.Passage) (string, error) {
	raw, err := json.Marshal(cacheKeyInput{
		RequirementID: req.RequirementID,
		Requirement:   req.Text,
		Question:      question,
		Tender:        tender,
		Bid:           bid,
		Model:         model,
		PromptVersion: promptVersion,
	})
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize cache key: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func judgeCachePath(dir, key string) string {
	return filepath.Join(dir, "cache", key, "judgement.json")
}

func loadJudgeCache(dir, key string) (*CachedJudgement, error) {
	b, err := os.ReadFile(judgeCachePath(dir, key))
	if err != nil {
		return nil, err
	}
	var out CachedJudgement
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	switch out.Judgement.Verdict {
	case judgeCompliant, judgePartial, judgeNonCompliant, judgeInsufficient:
	default:
		return nil, fmt.Errorf("cached verdict %q no longer valid", out.Judgement.Verdict)
	}
	return &out, nil
}

func saveJudgeCache(dir, key string, out CachedJudgement) error {
	path := judgeCachePath(dir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if out.CachedAt == "" {
		out.CachedAt = time.Now().UTC().Format(time.RFC3339)
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
