package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/cloo-solutions/resumechat/internal/llm"
	"github.com/cloo-solutions/resumechat/internal/telemetry"
	"github.com/rs/zerolog"
)

const (
	extractionTemperature = 0.1
	extractionMaxTokens   = 500
)

// ProfileExtractor turns a resume PDF into model-structured profile text.
type ProfileExtractor struct {
	loader TextLoader
	chat   ChatClient
	log    zerolog.Logger
}

func NewProfileExtractor(loader TextLoader, chat ChatClient, log zerolog.Logger) *ProfileExtractor {
	return &ProfileExtractor{
		loader: loader,
		chat:   chat,
		log:    log.With().Str("component", "extractor").Logger(),
	}
}

// Extract returns the raw model output for the resume at path. Every failure,
// including an empty reply, is reported as domain.ErrExtractionFailed.
func (e *ProfileExtractor) Extract(ctx context.Context, path string) (profile string, err error) {
	ctx, span := telemetry.StartSpan(ctx, "extractor.extract", telemetry.SpanAttributes{Operation: "extract"})
	defer func() { span.Finish(err) }()

	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("path", path).Msg("profile extraction panicked")
			profile, err = "", domain.ErrExtractionFailed
		}
	}()

	text, err := e.loader.LoadText(ctx, path)
	if err != nil {
		e.log.Error().Err(err).Str("path", path).Msg("failed to load resume text")
		return "", domain.ErrExtractionFailed.WithCause(err)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: extractionSystemPrompt},
		{Role: llm.RoleUser, Content: extractionExample},
		{Role: llm.RoleUser, Content: extractionUserPrompt + text},
	}
	reply, err := e.chat.Complete(ctx, messages, llm.Options{
		Temperature: extractionTemperature,
		MaxTokens:   extractionMaxTokens,
	})
	if err != nil {
		e.log.Error().Err(err).Str("path", path).Msg("failed to extract profile")
		return "", domain.ErrExtractionFailed.WithCause(err)
	}
	if strings.TrimSpace(reply) == "" {
		e.log.Error().Str("path", path).Msg("model returned an empty profile")
		return "", domain.ErrExtractionFailed
	}

	e.log.Info().Str("path", path).Int("chars", len(reply)).Msg("profile extracted")
	return reply, nil
}
