package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/config"
)

// Instrumented bounds every call with a timeout, traces it, and normalizes
// errors so callers only ever see apperror kinds.
type Instrumented struct {
	next     Backend
	provider string
	timeout  time.Duration
	tracer   trace.Tracer
}

func NewInstrumented(next Backend, provider string, timeout time.Duration) *Instrumented {
	return &Instrumented{
		next:     next,
		provider: provider,
		timeout:  timeout,
		tracer:   otel.Tracer("github.com/yourusername/resumatch-api/internal/ai"),
	}
}

func (b *Instrumented) Invoke(ctx context.Context, spec Spec, payload string) (json.RawMessage, error) {
	ctx, span := b.tracer.Start(ctx, "ai.invoke", trace.WithAttributes(
		attribute.String("ai.spec", spec.Name),
		attribute.String("ai.provider", b.provider),
	))
	defer span.End()

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := b.next.Invoke(ctx, spec, payload)
	latency := time.Since(start)

	if err != nil {
		err = classify(ctx, spec, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.Kind(err).Error())
		log.Warn().
			Err(err).
			Str("spec", spec.Name).
			Str("provider", b.provider).
			Dur("latency", latency).
			Msg("ai invocation failed")
		return nil, err
	}

	log.Debug().
		Str("spec", spec.Name).
		Str("provider", b.provider).
		Dur("latency", latency).
		Int("bytes", len(raw)).
		Msg("ai invocation")
	return raw, nil
}

// classify maps deadline expiry and unknown errors to UpstreamError.
func classify(ctx context.Context, spec Spec, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperror.NewUpstream(spec.Name+": timed out", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewUpstream(spec.Name+": backend call failed", err)
}

// New builds the configured provider wrapped with instrumentation.
func New(ctx context.Context, cfg *config.Config) (Backend, error) {
	var next Backend
	switch cfg.AIProvider {
	case "claude":
		next = NewClaudeClient(cfg.ClaudeAPIKey, cfg.ClaudeBaseURL, cfg.AIModel)
	case "openai":
		next = NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.AIModel)
	case "gemini":
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.AIModel)
		if err != nil {
			return nil, err
		}
		next = client
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AIProvider)
	}
	return NewInstrumented(next, cfg.AIProvider, cfg.AITimeout), nil
}
