package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/FACorreiaa/triply/internal/app/models"
	"github.com/FACorreiaa/triply/internal/pkg/config"
)

// ProviderStatus describes the generation backend for status endpoints.
type ProviderStatus struct {
	Configured  bool    `json:"configured"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int32   `json:"maxTokens"`
}

// GeminiProvider calls the Gemini API once per Generate. Create it once at
// startup and share it.
type GeminiProvider struct {
	client *genai.Client
	cfg    config.AIConfig
	logger *zap.Logger
	tracer trace.Tracer
}

// NewGeminiProvider fails with models.ErrConfiguration when the API key is
// blank or still the sample placeholder.
func NewGeminiProvider(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*GeminiProvider, error) {
	const op = "itinerary.NewGeminiProvider"
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Configured() {
		return nil, models.Errorf(models.KindConfiguration, op,
			"Google AI API key not configured, add GOOGLE_AI_API_KEY to your .env file")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, models.NewError(models.KindConfiguration, op, fmt.Errorf("create genai client: %w", err))
	}

	logger.Info("Gemini provider ready",
		zap.String("model", cfg.Model),
		zap.Float32("temperature", cfg.Temperature),
		zap.Int32("max_tokens", cfg.MaxTokens))

	return &GeminiProvider{
		client: client,
		cfg:    cfg,
		logger: logger,
		tracer: otel.Tracer("triply/gemini"),
	}, nil
}

func (p *GeminiProvider) Configured() bool {
	return p != nil && p.client != nil && p.cfg.Configured()
}

func (p *GeminiProvider) ModelName() string { return p.cfg.Model }

func (p *GeminiProvider) Status() ProviderStatus {
	return StatusFor(p.cfg)
}

// StatusFor reports cfg without building a client.
func StatusFor(cfg config.AIConfig) ProviderStatus {
	return ProviderStatus{
		Configured:  cfg.Configured(),
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}

// Generate sends prompt as a single user turn and returns the response text.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "itinerary.GeminiProvider.Generate"

	ctx, span := p.tracer.Start(ctx, "gemini.GenerateContent", trace.WithAttributes(
		attribute.String("model", p.cfg.Model),
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	resp, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](p.cfg.Temperature),
		MaxOutputTokens: p.cfg.MaxTokens,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		if errors.Is(err, context.Canceled) {
			return "", models.NewError(models.KindCancelled, op, err)
		}
		return "", models.NewError(models.KindProvider, op, fmt.Errorf("failed to generate itinerary: %w", err))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		span.SetStatus(codes.Error, "empty response")
		return "", models.Errorf(models.KindProvider, op, "empty response from model %s", p.cfg.Model)
	}

	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "")
	p.logger.Debug("Gemini response received", zap.Int("length", len(text)))
	return text, nil
}
