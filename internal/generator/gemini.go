package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/robalobadob/arg-server/internal/game"
	"github.com/robalobadob/arg-server/internal/prompt"
)

// Gemini generates stories with Google's Gemini models.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client. An empty key is an initialization error.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate asks the model for a JSON story constrained by req.Schema.
func (g *Gemini) Generate(ctx context.Context, req prompt.Request) (*game.Story, error) {
	m := g.client.GenerativeModel(g.model)
	m.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemInstruction))
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = toGenaiSchema(req.Schema)

	resp, err := m.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("gemini: %w", err)}
	}
	return DecodeStory(responseText(resp))
}

// Close releases the underlying gRPC connection.
func (g *Gemini) Close() error { return g.client.Close() }

// toGenaiSchema converts the neutral schema into genai's representation.
func toGenaiSchema(s *prompt.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
	}
	switch s.Type {
	case prompt.TypeObject:
		out.Type = genai.TypeObject
	case prompt.TypeArray:
		out.Type = genai.TypeArray
	case prompt.TypeInteger:
		out.Type = genai.TypeInteger
	default:
		out.Type = genai.TypeString
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toGenaiSchema(p)
		}
	}
	out.Items = toGenaiSchema(s.Items)
	return out
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	var text string
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				text += string(txt)
			}
		}
	}
	return text
}
