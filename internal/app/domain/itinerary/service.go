// Package itinerary turns a trip configuration into a day-by-day itinerary:
// prompt construction, one provider call, response parsing and a local
// fallback whenever anything after validation goes wrong.
package itinerary

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/models"
	"github.com/FACorreiaa/triply/internal/app/observability/metrics"
	"github.com/FACorreiaa/triply/internal/pkg/debugger"
)

// TextGenerator is a single-shot text completion provider.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Configured() bool
	ModelName() string
}

type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseBuildingPrompt   Phase = "building-prompt"
	PhaseAwaitingResponse Phase = "awaiting-response"
	PhaseParsing          Phase = "parsing"
	PhaseDone             Phase = "done"
	// PhaseFailed is never reported by Generate. Outer layers use it when
	// Generate returns an error.
	PhaseFailed Phase = "failed"
)

var phaseMessages = map[Phase]string{
	PhaseBuildingPrompt:   "Analyzing your preferences...",
	PhaseAwaitingResponse: "Creating your personalized itinerary...",
	PhaseParsing:          "Optimizing routes and timing...",
	PhaseDone:             "Finalizing your perfect trip...",
}

// GenerationState is one progress report.
type GenerationState struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message"`
	Failure error  `json:"-"`
}

// ProgressSink receives progress reports synchronously from Generate.
type ProgressSink func(GenerationState)

type ServiceOption func(*Service)

// WithClock replaces time.Now for metadata timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service is stateless between calls and safe for concurrent use.
type Service struct {
	provider TextGenerator
	logger   *zap.Logger
	now      func() time.Time
	tracer   trace.Tracer
}

func NewService(provider TextGenerator, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		provider: provider,
		logger:   logger,
		now:      time.Now,
		tracer:   otel.Tracer("triply/itinerary"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether Generate can reach a provider at all.
func (s *Service) Configured() bool {
	return s.provider != nil && s.provider.Configured()
}

// Generate produces an itinerary for cfg. It fails only when no provider is
// configured (models.ErrConfiguration) or cfg is invalid
// (models.ErrValidation), and in both cases before sink is called. Every other
// failure, including ctx cancellation during the provider call, yields a
// fallback itinerary.
func (s *Service) Generate(ctx context.Context, cfg models.TripConfiguration, sink ProgressSink) (*models.Itinerary, error) {
	const op = "itinerary.Generate"

	if !s.Configured() {
		return nil, models.Errorf(models.KindConfiguration, op,
			"Google AI API key not configured, set GOOGLE_AI_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()
	days := cfg.DayCount()

	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("destination", cfg.DestinationName()),
		attribute.Int("days", days),
		attribute.String("model", s.provider.ModelName()),
	))
	defer span.End()

	start := s.now()
	report := func(p Phase) {
		if sink != nil {
			sink(GenerationState{Phase: p, Message: phaseMessages[p]})
		}
	}

	report(PhaseBuildingPrompt)
	prompt := BuildPrompt(cfg)

	report(PhaseAwaitingResponse)
	raw, err := s.provider.Generate(ctx, prompt)

	var it *models.Itinerary
	if err == nil {
		report(PhaseParsing)
		it, err = ParseResponse(raw)
		if err != nil {
			debugger.DumpPayload(s.logger, "Unusable model response", []byte(raw))
		}
	}

	outcome := "success"
	if err != nil {
		outcome = "fallback"
		s.logger.Warn("Itinerary generation fell back to local template",
			zap.String("destination", cfg.DestinationName()),
			zap.String("kind", models.KindOf(err).String()),
			zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback")

		it = NewFallback(cfg)
		it.Metadata.FallbackReason = fallbackReason(err)
	} else {
		it.Metadata = models.Metadata{}
		if normalizeDays(it, days, fallbackDestination(cfg)) {
			it.Metadata.DaysAdjusted = true
			s.logger.Info("Adjusted itinerary day count",
				zap.String("destination", cfg.DestinationName()),
				zap.Int("requested", days))
		}
		span.SetStatus(codes.Ok, "")
	}

	it.Metadata.RequestID = uuid.NewString()
	it.Metadata.GeneratedAt = s.now().UTC()
	it.Metadata.Model = s.provider.ModelName()
	it.Metadata.Destination = cfg.DestinationName()
	it.Metadata.Configuration = &cfg

	report(PhaseDone)

	elapsed := s.now().Sub(start).Seconds()
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	mctx := context.WithoutCancel(ctx)
	metrics.Get().GenerationsTotal.Add(mctx, 1, attrs)
	metrics.Get().GenerationDuration.Record(mctx, elapsed, attrs)
	span.SetAttributes(attribute.Bool("fallback", it.Metadata.IsFallback))

	s.logger.Info("Itinerary generated",
		zap.String("request_id", it.Metadata.RequestID),
		zap.String("destination", it.Metadata.Destination),
		zap.Int("days", len(it.Days)),
		zap.Bool("fallback", it.Metadata.IsFallback),
		zap.Float64("seconds", elapsed))

	return it, nil
}

// normalizeDays forces len(it.Days) == want, renumbering days 1..want and
// padding with fallback days. It reports whether anything changed.
func normalizeDays(it *models.Itinerary, want int, destination string) bool {
	changed := false
	if len(it.Days) > want {
		it.Days = it.Days[:want]
		changed = true
	}
	for len(it.Days) < want {
		it.Days = append(it.Days, fallbackDay(len(it.Days)+1, destination))
		changed = true
	}
	for i := range it.Days {
		if it.Days[i].Day != i+1 {
			it.Days[i].Day = i + 1
			changed = true
		}
	}
	return changed
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, models.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, models.ErrInvalidStructure):
		return "invalid_structure"
	case errors.Is(err, context.Canceled), errors.Is(err, models.ErrCancelled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "provider_error"
	}
}
