package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// maxCalls bounds the function calls answered for one question.
const maxCalls = 8

// Expert is a chat with a model specialised by its instructions and tools.
// Experts can be called by other experts as functions.
type Expert struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	ModelName   string                       `json:"model_name"`
	Config      *genai.GenerateContentConfig `json:"config"`
	Library     Library
	Log         *zap.Logger
	chat        *genai.Chat
}

// Start opens the chat session.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	model := e.ModelName
	if model == "" {
		model = defaultModel
	}
	chat, err := client.Chats.Create(ctx, model, e.Config, nil)
	if err != nil {
		return fmt.Errorf("could not start expert %s: %w", e.Name, err)
	}
	e.chat = chat
	return nil
}

// Ask sends parts and answers the function calls of the model until it
// replies with content.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	for range maxCalls {
		resp, err := e.chat.Send(ctx, parts...)
		if err != nil {
			return nil, classify(geminiError(err))
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("%w: no response from expert %s", ErrBadResponse, e.Name)
		}
		content := resp.Candidates[0].Content
		var calls []*genai.Part
		for _, p := range content.Parts {
			if p.FunctionCall == nil {
				continue
			}
			if e.Library == nil {
				return nil, fmt.Errorf("expert %s cannot make function calls", e.Name)
			}
			e.log().Debug("function call", zap.String("expert", e.Name), zap.String("function", p.FunctionCall.Name))
			calls = append(calls, &genai.Part{FunctionResponse: e.Library(ctx, p.FunctionCall)})
		}
		if len(calls) == 0 {
			return content, nil
		}
		parts = calls
	}
	return nil, fmt.Errorf("expert %s made more than %d function calls", e.Name, maxCalls)
}

func (e *Expert) log() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// Declaration lets other experts ask this one a question.
func (e *Expert) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        e.Name,
		Description: e.Description,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {Type: genai.TypeString, Description: "The question to ask the expert."},
			},
			Required: []string{"question"},
		},
		Response: &genai.Schema{Type: genai.TypeString, Description: "The expert's answer."},
	}
}

// Call asks the expert the question in args.
func (e *Expert) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	question, ok := args["question"].(string)
	if !ok {
		return failure(id, e.Name, "invalid question type %T, expected string", args["question"])
	}
	answer, err := e.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return failure(id, e.Name, "expert failed: %v", err)
	}
	text := textOf(answer)
	e.log().Debug("expert answered", zap.String("expert", e.Name), zap.String("question", question), zap.String("answer", text))
	return &genai.FunctionResponse{ID: id, Name: e.Name, Response: map[string]any{"output": text}}
}

func failure(id, name, format string, args ...any) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"error": fmt.Sprintf(format, args...)}}
}

func textOf(c *genai.Content) string {
	var s string
	for _, p := range c.Parts {
		s += p.Text
	}
	return s
}
