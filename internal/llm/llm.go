// Package llm wraps the language-model collaborator used for semantic
// compliance judgements.
package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-3-pro"

// JudgeRequest is one structured judgement call.
type JudgeRequest struct {
	SystemPrompt    string
	UserPrompt      string
	ResponseSchema  any
	Temperature     float32
	MaxOutputTokens int32
}

// Usage is the token accounting reported by the model.
type Usage struct {
	PromptTokens    int32 `json:"prompt_tokens"`
	CandidateTokens int32 `json:"candidate_tokens"`
	TotalTokens     int32 `json:"total_tokens"`
}

// JudgeResponse is the raw model answer; the audit engine parses Text
// defensively.
type JudgeResponse struct {
	Text  string
	Usage *Usage
	Model string
}

// Judge is the model collaborator consumed by semantic escalation.
type Judge interface {
	Judge(ctx context.Context, req JudgeRequest) (JudgeResponse, error)
}

// Gemini is the production Judge backed by the Gemini API.
type Gemini struct {
	apiKey string
	model  string
}

// NewGemini builds a Gemini judge. An empty model selects DefaultModel.
func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{apiKey: apiKey, model: model}
}

// Model returns the resolved model name.
func (g *Gemini) Model() string { return g.model }

func (g *Gemini) newClient(ctx context.Context) (*genai.Client, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("gemini api key not set")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{APIKey: g.apiKey})
}

func buildConfig(req JudgeRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		},
		Temperature:     &req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseJsonSchema = req.ResponseSchema
	}
	return cfg
}

func extractUsage(meta *genai.GenerateContentResponseUsageMetadata) *Usage {
	if meta == nil {
		return nil
	}
	return &Usage{
		PromptTokens:    meta.PromptTokenCount,
		CandidateTokens: meta.CandidatesTokenCount,
		TotalTokens:     meta.TotalTokenCount,
	}
}

// Judge implements the Judge interface against the Gemini API.
func (g *Gemini) Judge(ctx context.Context, req JudgeRequest) (JudgeResponse, error) {
	client, err := g.newClient(ctx)
	if err != nil {
		return JudgeResponse{}, err
	}
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: req.UserPrompt}},
	}}
	result, err := client.Models.GenerateContent(ctx, g.model, contents, buildConfig(req))
	if err != nil {
		return JudgeResponse{}, fmt.Errorf("generate content: %w", err)
	}
	return JudgeResponse{
		Text:  result.Text(),
		Usage: extractUsage(result.UsageMetadata),
		Model: g.model,
	}, nil
}
