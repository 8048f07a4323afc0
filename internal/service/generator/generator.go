package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"feeltrack/internal/model"
	"feeltrack/pkg/circuitbreaker"
	"feeltrack/pkg/logger"
	"feeltrack/pkg/metrics"
	"feeltrack/pkg/otel"
)

const (
	opReply      = "reply"
	opReframe    = "reframe"
	opSupportive = "supportive"
)

var (
	errNoClient    = errors.New("text generation is not configured")
	errEmptyOutput = errors.New("empty generation output")
	// the caller's context ended before the client answered
	errCallerGone = errors.New("caller went away")
)

// Generator produces replies, reframes and supportive notifications. It never fails:
// every error from the text client is logged and replaced by a fallback.
type Generator struct {
	client  TextClient
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
}

// New wraps client. A nil client is allowed and makes every call fall back.
func New(client TextClient, timeout time.Duration, log *zap.Logger) *Generator {
	cbConfig := circuitbreaker.DefaultConfig("llm")
	cbConfig.IgnoreError = func(err error) bool { return errors.Is(err, errCallerGone) }
	cbConfig.OnStateChange = func(name string, from, to circuitbreaker.State) {
		metrics.SetCircuitBreakerState(name, int(to))
		log.Warn("Circuit breaker state changed",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	return &Generator{
		client:  client,
		breaker: circuitbreaker.NewCircuitBreaker(cbConfig),
		timeout: timeout,
		logger:  log,
	}
}

// Reply answers utterance given the prior turns of the conversation (oldest first,
// not including utterance itself).
func (g *Generator) Reply(ctx context.Context, history []model.Message, utterance string) string {
	out, err := g.call(ctx, opReply, func(ctx context.Context) (string, error) {
		return g.client.Chat(ctx, chatbotSystemPrompt, history, utterance)
	})
	if err != nil {
		return FallbackReply
	}
	return out
}

// Reframe returns a positive reframing of utterance, or nil if none could be produced.
func (g *Generator) Reframe(ctx context.Context, utterance string) *string {
	out, err := g.call(ctx, opReframe, func(ctx context.Context) (string, error) {
		return g.client.Generate(ctx, reframePrompt(utterance))
	})
	if err != nil {
		return nil
	}
	return &out
}

// SupportiveNotification writes a short encouragement based on a conversation summary.
func (g *Generator) SupportiveNotification(ctx context.Context, summary string) string {
	out, err := g.call(ctx, opSupportive, func(ctx context.Context) (string, error) {
		return g.client.Generate(ctx, supportivePrompt(summary))
	})
	if err != nil {
		return FallbackSupportive
	}
	return out
}

func (g *Generator) call(ctx context.Context, op string, fn func(ctx context.Context) (string, error)) (string, error) {
	log := logger.WithTrace(ctx, g.logger)

	if g.client == nil {
		metrics.IncrementLLMFallback(op)
		return "", errNoClient
	}

	ctx, span := otel.StartSpan(ctx, "llm."+op)
	span.SetAttributes(attribute.String("llm.operation", op))

	callerCtx := ctx
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	var out string
	err := g.breaker.Execute(func() error {
		text, err := fn(ctx)
		if err != nil {
			if callerCtx.Err() != nil {
				return fmt.Errorf("%w: %w", errCallerGone, err)
			}
			return err
		}
		out = strings.TrimSpace(text)
		if out == "" {
			return errEmptyOutput
		}
		return nil
	})
	elapsed := time.Since(start)
	otel.EndSpan(span, err)

	status := "ok"
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen):
		status = "rejected"
	case errors.Is(err, errCallerGone):
		status = "canceled"
	case err != nil:
		status = "error"
	}
	metrics.RecordLLMCallLatency(op, status, elapsed)

	if err != nil {
		metrics.IncrementLLMFallback(op)
		log.Warn("Text generation failed, using fallback",
			zap.String("operation", op),
			zap.String("status", status),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return "", err
	}
	return out, nil
}
