package agent

import (
	"context"
	"errors"
	"net/http"

	"github.com/etnz/tradedesk/config"
	"github.com/etnz/tradedesk/market"
	"github.com/etnz/tradedesk/retry"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// GatewayPlanner asks an OpenAI compatible gateway for trade plans.
type GatewayPlanner struct {
	client *openai.Client
	model  string
	quotes market.Provider
	policy retry.Policy
	log    *zap.Logger
}

// NewGatewayPlanner creates a planner on cfg.BaseURL. quotes may be nil.
func NewGatewayPlanner(cfg config.LLMConfig, quotes market.Provider, policy retry.Policy, log *zap.Logger) *GatewayPlanner {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	if log == nil {
		log = zap.NewNop()
	}
	return &GatewayPlanner{client: openai.NewClientWithConfig(oc), model: cfg.Model, quotes: quotes, policy: policy, log: log}
}

// Plan validates req, fetches the live quote and asks the gateway.
func (g *GatewayPlanner) Plan(ctx context.Context, req TradePlanRequest) (TradePlan, error) {
	if err := req.Validate(); err != nil {
		return TradePlan{}, err
	}
	q := liveQuote(ctx, g.quotes, g.log, req.Ticker)

	chat := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: planInstruction},
			{Role: openai.ChatMessageRoleUser, Content: planPrompt(req, q)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.2,
	}
	text, err := retry.Do(ctx, g.policy, func(ctx context.Context) (string, error) {
		resp, err := g.client.CreateChatCompletion(ctx, chat)
		if err != nil {
			return "", gatewayError(err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrBadResponse
		}
		return resp.Choices[0].Message.Content, nil
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

// gatewayError turns go-openai failures into status errors so that retry
// and classify can read their code.
func gatewayError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &retry.StatusError{Service: "llm gateway", Code: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &retry.StatusError{Service: "llm gateway", Code: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return err
}
