// internal/generator/generator.go
//
// Story generation against an external generative-AI service.
// Responsibilities:
//   - Define the Generator capability (request → Story or failure).
//   - Select and construct a provider at start-up (Gemini or OpenAI).
//   - Decode model output into the typed story contract.
//
// Notes:
//   - A provider that fails to initialize is replaced by Unavailable; every
//     call then fails with ErrClientUnavailable without touching the network.
//   - Exactly one outbound call per Generate; no retries, no caching.
//   - Solution correctness is the model's responsibility, not checked here.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arg-server/internal/game"
	"github.com/robalobadob/arg-server/internal/prompt"
)

// Generator produces a complete story for a prompt request.
type Generator interface {
	Generate(ctx context.Context, req prompt.Request) (*game.Story, error)
}

// ErrClientUnavailable means the provider client could not be initialized.
var ErrClientUnavailable = errors.New("generation client unavailable")

// ErrGeneration matches any *GenerationError via errors.Is.
var ErrGeneration = errors.New("generation failed")

// GenerationError wraps a failed call or an unusable response.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return e.Err.Error() }

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// Unavailable is the Generator used when provider initialization failed.
type Unavailable struct {
	Err error
}

// Generate always fails with ErrClientUnavailable.
func (u Unavailable) Generate(context.Context, prompt.Request) (*game.Story, error) {
	if u.Err == nil {
		return nil, ErrClientUnavailable
	}
	return nil, fmt.Errorf("%w: %v", ErrClientUnavailable, u.Err)
}

// Config selects and configures the provider.
type Config struct {
	Provider      string // "gemini" (default) | "openai"
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

const (
	defaultGeminiModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// New builds the configured provider. It never returns nil: on any
// initialization error the failure is logged and Unavailable is returned.
func New(ctx context.Context, cfg Config) Generator {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "gemini"
	}

	var (
		g     Generator
		model string
		err   error
	)
	switch provider {
	case "gemini":
		model = orDefault(cfg.GeminiModel, defaultGeminiModel)
		g, err = NewGemini(ctx, cfg.GeminiAPIKey, model)
	case "openai":
		model = orDefault(cfg.OpenAIModel, defaultOpenAIModel)
		g, err = NewOpenAI(cfg.OpenAIAPIKey, model, cfg.OpenAIBaseURL)
	default:
		err = fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("story generator unavailable")
		return Unavailable{Err: err}
	}

	log.Info().Str("provider", provider).Str("model", model).Msg("story generator ready")
	return Traced(g, provider, model)
}

// Close releases provider resources if the generator holds any.
func Close(g Generator) error {
	if c, ok := g.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// DecodeStory parses a model response into a Story.
// Unknown fields, malformed JSON and missing required fields all yield a
// *GenerationError.
func DecodeStory(text string) (*game.Story, error) {
	text = stripFence(text)
	if text == "" {
		return nil, &GenerationError{Err: errors.New("empty response from model")}
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	var s game.Story
	if err := dec.Decode(&s); err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("decode story: %w", err)}
	}
	if err := s.Validate(); err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("invalid story: %w", err)}
	}
	return &s, nil
}

// stripFence removes a surrounding ```json fence some models emit even in JSON mode.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
