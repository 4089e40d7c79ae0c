// ABOUTME: OpenAI-compatible client for batched embeddings and chat completions
// ABOUTME: Owns retry with backoff, per-request timeouts and optional request rate limiting
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harper/docqa/internal/core"
	"github.com/harper/docqa/internal/logging"
	"github.com/harper/docqa/internal/models"
	"github.com/harper/docqa/internal/util"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey string
	// BaseURL points the client at any OpenAI-compatible endpoint; empty keeps the library default
	BaseURL           string
	ChatModel         string
	EmbeddingModel    openai.EmbeddingModel
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      DefaultChatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     time.Second * 2,
	}
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
	limiter        *rate.Limiter
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	chatModel := config.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	embeddingModel := config.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(clientConfig),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		timeout:        config.Timeout,
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
		limiter:        rate.NewLimiter(limit, 1),
	}, nil
}

// ChatModel returns the configured chat model name
func (c *OpenAIClient) ChatModel() string {
	return c.chatModel
}

// EmbeddingModel returns the configured embedding model name
func (c *OpenAIClient) EmbeddingModel() string {
	return string(c.embeddingModel)
}

// Embed generates embeddings for all texts in a single request.
// The result is ordered to match texts regardless of the order the provider returns them in.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float64
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return util.Permanent(err)
		}

		reqCtx, cancel := c.requestContext(ctx)
		defer cancel()

		resp, err := c.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: c.embeddingModel,
		})
		if err != nil {
			return classify(err)
		}

		if len(resp.Data) != len(texts) {
			return fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
		}

		out := make([][]float64, len(texts))
		for _, item := range resp.Data {
			if item.Index < 0 || item.Index >= len(texts) || out[item.Index] != nil {
				return fmt.Errorf("embedding index %d out of range or duplicated", item.Index)
			}
			out[item.Index] = toFloat64(item.Embedding)
		}

		vectors = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	logging.Debug("embedded texts", "count", len(texts), "model", c.embeddingModel)
	return vectors, nil
}

// Complete returns the full assistant reply for messages
func (c *OpenAIClient) Complete(ctx context.Context, messages []models.ChatMessage, opts core.GenerateOptions) (string, error) {
	var answer string
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return util.Permanent(err)
		}

		reqCtx, cancel := c.requestContext(ctx)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(reqCtx, c.chatRequest(messages, opts, false))
		if err != nil {
			return classify(err)
		}

		if len(resp.Choices) == 0 {
			return fmt.Errorf("no completion choices returned")
		}

		answer = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}

	return answer, nil
}

// Stream opens a streaming completion. Only opening the stream is retried;
// the per-request timeout is not applied so long answers are not cut off.
func (c *OpenAIClient) Stream(ctx context.Context, messages []models.ChatMessage, opts core.GenerateOptions) (core.DeltaStream, error) {
	var stream *openai.ChatCompletionStream
	streamCtx, cancel := context.WithCancel(ctx)

	err := util.Retry(streamCtx, c.maxRetries, c.retryDelay, func(attempt int) error {
		if err := c.limiter.Wait(streamCtx); err != nil {
			return util.Permanent(err)
		}

		s, err := c.client.CreateChatCompletionStream(streamCtx, c.chatRequest(messages, opts, true))
		if err != nil {
			return classify(err)
		}
		stream = s
		return nil
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open chat stream: %w", err)
	}

	return &chatStream{stream: stream, cancel: cancel}, nil
}

func (c *OpenAIClient) chatRequest(messages []models.ChatMessage, opts core.GenerateOptions, stream bool) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    toOpenAIMessages(messages),
		Temperature: float32(opts.Temperature),
		Stream:      stream,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	return req
}

func (c *OpenAIClient) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// chatStream adapts go-openai's stream to core.DeltaStream
type chatStream struct {
	stream *openai.ChatCompletionStream
	cancel context.CancelFunc
}

// Recv returns the next content delta, skipping chunks without text.
// It returns io.EOF once the provider signals completion.
func (s *chatStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("stream receive failed: %w", err)
		}

		for _, choice := range resp.Choices {
			if choice.Delta.Content != "" {
				return choice.Delta.Content, nil
			}
		}
	}
}

func (s *chatStream) Close() error {
	s.stream.Close()
	s.cancel()
	return nil
}

// classify marks client errors other than rate limiting as permanent
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && !retryableStatus(apiErr.HTTPStatusCode) {
		return util.Permanent(err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && !retryableStatus(reqErr.HTTPStatusCode) {
		return util.Permanent(err)
	}
	if errors.Is(err, context.Canceled) {
		return util.Permanent(err)
	}
	return err
}

func retryableStatus(code int) bool {
	if code == 0 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout {
		return true
	}
	return code >= http.StatusInternalServerError
}

func toOpenAIMessages(messages []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// toFloat64 converts []float32 to []float64
func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
