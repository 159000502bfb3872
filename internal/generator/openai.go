package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/robalobadob/arg-server/internal/game"
	"github.com/robalobadob/arg-server/internal/prompt"
)

// OpenAI generates stories through the chat completions API with a strict
// JSON-schema response format.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI client. baseURL may point at any compatible endpoint.
func NewOpenAI(apiKey, model, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Generate performs one chat completion and decodes its content.
func (o *OpenAI) Generate(ctx context.Context, req prompt.Request) (*game.Story, error) {
	schema := toJSONSchema(req.Schema)
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "arg_story",
				Schema: &schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("openai: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return nil, &GenerationError{Err: errors.New("openai: no completion choices returned")}
	}
	return DecodeStory(resp.Choices[0].Message.Content)
}

// toJSONSchema converts the neutral schema into go-openai's jsonschema.Definition.
func toJSONSchema(s *prompt.Schema) jsonschema.Definition {
	out := jsonschema.Definition{
		Description: s.Description,
		Required:    s.Required,
	}
	switch s.Type {
	case prompt.TypeObject:
		out.Type = jsonschema.Object
		out.AdditionalProperties = false
		out.Properties = make(map[string]jsonschema.Definition, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toJSONSchema(p)
		}
	case prompt.TypeArray:
		out.Type = jsonschema.Array
		if s.Items != nil {
			items := toJSONSchema(s.Items)
			out.Items = &items
		}
	case prompt.TypeInteger:
		out.Type = jsonschema.Integer
	default:
		out.Type = jsonschema.String
	}
	return out
}
