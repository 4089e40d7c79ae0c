// ABOUTME: Generator orchestrates answer generation from retrieved sources
// ABOUTME: Single-shot completion or a pull-based stream of sources, content, done/error events
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/harper/docqa/internal/logging"
	"github.com/harper/docqa/internal/models"
)

// Default sampling parameters
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// DefaultGenerateOptions returns the default sampling parameters
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}
}

// Generator produces answers grounded in retrieved sources
type Generator struct {
	model ChatModel
	opts  GenerateOptions
}

// NewGenerator creates a Generator using the given sampling parameters
func NewGenerator(model ChatModel, opts GenerateOptions) *Generator {
	return &Generator{model: model, opts: opts}
}

// Generate returns the full answer together with the sources it was given
func (g *Generator) Generate(ctx context.Context, question string, sources []models.SourceChunk, history []models.ChatMessage) (*models.ChatResponse, error) {
	messages := BuildPrompt(question, sources, history)

	answer, err := g.model.Complete(ctx, messages, g.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	if sources == nil {
		sources = []models.SourceChunk{}
	}
	return &models.ChatResponse{Answer: answer, Sources: sources}, nil
}

// Stream yields a sources event, then each non-empty content delta, then exactly one
// done or error event. Breaking out of the loop early closes the model stream.
func (g *Generator) Stream(ctx context.Context, question string, sources []models.SourceChunk, history []models.ChatMessage) iter.Seq[models.StreamEvent] {
	return func(yield func(models.StreamEvent) bool) {
		if !yield(models.SourcesEvent(sources)) {
			return
		}

		stream, err := g.model.Stream(ctx, BuildPrompt(question, sources, history), g.opts)
		if err != nil {
			logging.Error("failed to open generation stream", "error", err)
			yield(models.ErrorEvent(err))
			return
		}
		defer stream.Close()

		for {
			delta, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				yield(models.DoneEvent())
				return
			}
			if err != nil {
				logging.Error("generation stream failed", "error", err)
				yield(models.ErrorEvent(err))
				return
			}
			if delta == "" {
				continue
			}
			if !yield(models.ContentEvent(delta)) {
				return
			}
		}
	}
}
