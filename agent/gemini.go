package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/tradedesk/config"
	"github.com/etnz/tradedesk/market"
	"github.com/etnz/tradedesk/retry"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiPlanner asks Gemini for trade plans with a JSON response schema.
type GeminiPlanner struct {
	client *genai.Client
	model  string
	quotes market.Provider
	policy retry.Policy
	log    *zap.Logger
}

// NewGeminiPlanner creates the Gemini client. cfg.BaseURL overrides the
// default endpoint when set.
func NewGeminiPlanner(ctx context.Context, cfg config.LLMConfig, quotes market.Provider, policy retry.Policy, log *zap.Logger) (*GeminiPlanner, error) {
	client, err := NewGeminiClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &GeminiPlanner{client: client, model: model, quotes: quotes, policy: policy, log: log}, nil
}

// NewGeminiClient creates a Gemini API client from the llm configuration.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*genai.Client, error) {
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("could not create gemini client: %w", err)
	}
	return client, nil
}

var planSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"direction":  {Type: genai.TypeString, Enum: []string{"long", "short"}},
		"entry":      {Type: genai.TypeNumber},
		"stopLoss":   {Type: genai.TypeNumber},
		"targets":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeNumber}},
		"confidence": {Type: genai.TypeInteger},
		"rationale":  {Type: genai.TypeString},
		"risks":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"direction", "entry", "stopLoss", "targets", "confidence", "rationale"},
}

// Plan validates req, fetches the live quote and asks Gemini.
func (g *GeminiPlanner) Plan(ctx context.Context, req TradePlanRequest) (TradePlan, error) {
	if err := req.Validate(); err != nil {
		return TradePlan{}, err
	}
	q := liveQuote(ctx, g.quotes, g.log, req.Ticker)

	gc := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: planInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    planSchema,
		Temperature:       genai.Ptr[float32](0.2),
	}
	text, err := retry.Do(ctx, g.policy, func(ctx context.Context) (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(planPrompt(req, q)), gc)
		if err != nil {
			return "", geminiError(err)
		}
		return resp.Text(), nil
	}).Unwrap()
	if err != nil {
		return TradePlan{}, classify(err)
	}
	p, err := parseProposal(text)
	if err != nil {
		g.log.Error("unparsable trade plan", zap.String("ticker", req.Ticker), zap.String("answer", text))
		return TradePlan{}, err
	}
	return finalize(req, p, q)
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return &retry.StatusError{Service: "gemini", Code: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr.Code != 0 {
		return &retry.StatusError{Service: "gemini", Code: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return err
}
