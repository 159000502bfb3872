package generator

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/robalobadob/arg-server/internal/game"
	"github.com/robalobadob/arg-server/internal/prompt"
)

type traced struct {
	next     Generator
	provider string
	model    string
	tracer   trace.Tracer
}

// Traced wraps g so every call is recorded as a client span.
func Traced(g Generator, provider, model string) Generator {
	return &traced{next: g, provider: provider, model: model, tracer: otel.Tracer("arg-server/generator")}
}

func (t *traced) Generate(ctx context.Context, req prompt.Request) (*game.Story, error) {
	ctx, span := t.tracer.Start(ctx, "generator.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.system", t.provider),
			attribute.String("gen_ai.request.model", t.model),
			attribute.String("arg.difficulty", req.Difficulty),
			attribute.String("arg.genre", req.Genre),
			attribute.Int("arg.puzzles_requested", req.PuzzleCount),
		),
	)
	defer span.End()

	story, err := t.next.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("arg.puzzles_returned", len(story.Puzzles)))
	return story, nil
}

func (t *traced) Close() error { return Close(t.next) }
