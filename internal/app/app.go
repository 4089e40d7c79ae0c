// ABOUTME: Wires config, storage, provider client and core services into one App
// ABOUTME: Shared by the CLI, the MCP server and the benchmark; enforces the upload contract
package app

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/harper/docqa/internal/charm"
	"github.com/harper/docqa/internal/config"
	"github.com/harper/docqa/internal/core"
	"github.com/harper/docqa/internal/extract"
	"github.com/harper/docqa/internal/llm"
	"github.com/harper/docqa/internal/logging"
	"github.com/harper/docqa/internal/models"
	"github.com/harper/docqa/internal/storage"
	"github.com/harper/docqa/internal/storage/sqlite"
	openai "github.com/sashabaranov/go-openai"
)

// ErrNoAPIKey is returned by embedding and generation calls when no provider key is configured
var ErrNoAPIKey = errors.New("OPENAI_API_KEY is not set")

// ErrUploadTooLarge is returned when an upload exceeds the configured limit
var ErrUploadTooLarge = errors.New("file exceeds upload size limit")

// App holds every long-lived service of a docqa process
type App struct {
	Config    *config.Config
	DB        *sqlite.DB
	Store     *sqlite.VectorStore
	Registry  core.Registry
	Charm     *charm.Client // nil unless the charm registry is selected
	LLM       *llm.OpenAIClient
	Pipeline  *core.IngestionPipeline
	Retrieval *core.RetrievalEngine
	Generator *core.Generator
}

// New opens storage and builds the services described by cfg.
// Without an API key the app still opens so that list, show, delete and status work.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := sqlite.Open(cfg.VectorDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening vector database: %w", err)
	}

	store, err := sqlite.NewVectorStore(ctx, db, core.MetricCosine)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registry, charmClient, err := openRegistry(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var client *llm.OpenAIClient
	var embedder core.Embedder = unavailable{}
	var model core.ChatModel = unavailable{}
	if cfg.OpenAIKey != "" {
		client, err = llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
			APIKey:            cfg.OpenAIKey,
			BaseURL:           cfg.OpenAIBaseURL,
			ChatModel:         cfg.ChatModel,
			EmbeddingModel:    openai.EmbeddingModel(cfg.EmbeddingModel),
			Timeout:           cfg.Timeout,
			MaxRetries:        cfg.MaxRetries,
			RetryDelay:        cfg.RetryDelay,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
		if err != nil {
			if charmClient != nil {
				_ = charmClient.Close()
			}
			_ = db.Close()
			return nil, err
		}
		embedder, model = client, client
	} else {
		logging.Warn("OPENAI_API_KEY not set; ingest, search and ask are unavailable")
	}

	a := NewWithProviders(cfg, db, store, registry, embedder, model)
	a.Charm = charmClient
	a.LLM = client
	return a, nil
}

func openRegistry(cfg *config.Config) (core.Registry, *charm.Client, error) {
	if cfg.Registry == config.RegistryCharm {
		client, err := charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: cfg.AutoSync,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to charm: %w", err)
		}
		return storage.NewCharmRegistry(client), client, nil
	}

	reg, err := storage.NewFileRegistry(cfg.UploadDir)
	if err != nil {
		return nil, nil, err
	}
	return reg, nil, nil
}

// NewWithProviders builds an App over an opened store and registry with the given providers.
// Tests and the benchmark use it to swap in deterministic embedders and models.
func NewWithProviders(cfg *config.Config, db *sqlite.DB, store *sqlite.VectorStore, registry core.Registry, embedder core.Embedder, model core.ChatModel) *App {
	chunker := core.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	return &App{
		Config:    cfg,
		DB:        db,
		Store:     store,
		Registry:  registry,
		Pipeline:  core.NewIngestionPipeline(extract.New(), chunker, embedder, store, registry),
		Retrieval: core.NewRetrievalEngine(embedder, store, cfg.RetrievalTopK),
		Generator: core.NewGenerator(model, core.GenerateOptions{
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}),
	}
}

// Close releases the database and the charm connection
func (a *App) Close() error {
	var errs []error
	if a.Charm != nil {
		errs = append(errs, a.Charm.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

// ValidateUpload enforces the accepted extensions, a non-empty body and the size limit
func ValidateUpload(filename string, size, maxBytes int64) error {
	if !extract.IsSupported(filename) {
		return fmt.Errorf("%w: %q (only .pdf and .txt are accepted)", models.ErrUnsupportedFileType, filepath.Ext(filename))
	}
	if size == 0 {
		return fmt.Errorf("%s: %w", filename, models.ErrEmptyContent)
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("%s is %d bytes: %w (%d bytes)", filename, size, ErrUploadTooLarge, maxBytes)
	}
	return nil
}

// IngestBytes validates an upload and runs it through the ingestion pipeline
func (a *App) IngestBytes(ctx context.Context, data []byte, filename string) (*models.Document, error) {
	size := int64(len(data))
	if err := ValidateUpload(filename, size, a.Config.MaxUploadBytes); err != nil {
		return nil, err
	}
	return a.Pipeline.Ingest(ctx, data, filepath.Base(filename), size)
}

// IngestFile reads path from disk and ingests it under its base name
func (a *App) IngestFile(ctx context.Context, path string) (*models.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := ValidateUpload(path, info.Size(), a.Config.MaxUploadBytes); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return a.Pipeline.Ingest(ctx, data, filepath.Base(path), int64(len(data)))
}

// Ask retrieves sources for question and generates a single answer
func (a *App) Ask(ctx context.Context, question string, topK int, documentIDs []string, history []models.ChatMessage) (*models.ChatResponse, error) {
	if err := models.ValidateHistory(history); err != nil {
		return nil, err
	}
	sources, err := a.Retrieval.Search(ctx, question, topK, documentIDs)
	if err != nil {
		return nil, err
	}
	return a.Generator.Generate(ctx, question, sources, history)
}

// AskStream retrieves sources and returns the event stream of the answer.
// Retrieval errors are returned directly; generation errors arrive as an error event.
func (a *App) AskStream(ctx context.Context, question string, topK int, documentIDs []string, history []models.ChatMessage) (iter.Seq[models.StreamEvent], error) {
	if err := models.ValidateHistory(history); err != nil {
		return nil, err
	}
	sources, err := a.Retrieval.Search(ctx, question, topK, documentIDs)
	if err != nil {
		return nil, err
	}
	return a.Generator.Stream(ctx, question, sources, history), nil
}

// Status summarizes the index and the configured models
type Status struct {
	Documents      int    `json:"documents"`
	IndexedDocs    int    `json:"indexed_documents"`
	Chunks         int    `json:"chunks"`
	Dimension      int    `json:"dimension"`
	Metric         string `json:"metric"`
	Registry       string `json:"registry"`
	DataDir        string `json:"data_dir"`
	ChatModel      string `json:"chat_model"`
	EmbeddingModel string `json:"embedding_model"`
	ProviderReady  bool   `json:"provider_ready"`
}

// Status reads counts from the registry and the vector store
func (a *App) Status(ctx context.Context) (*Status, error) {
	docs, err := a.Registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	chunks, err := a.Store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}
	indexed, err := a.Store.DocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting indexed documents: %w", err)
	}
	dim, err := a.Store.Dimension(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading dimension: %w", err)
	}

	return &Status{
		Documents:      len(docs),
		IndexedDocs:    indexed,
		Chunks:         chunks,
		Dimension:      dim,
		Metric:         string(a.Store.Metric()),
		Registry:       a.Config.Registry,
		DataDir:        a.Config.DataDir,
		ChatModel:      a.Config.ChatModel,
		EmbeddingModel: a.Config.EmbeddingModel,
		ProviderReady:  a.LLM != nil,
	}, nil
}

// Sync pushes and pulls the charm registry; it fails for the file registry
func (a *App) Sync() error {
	reg, ok := a.Registry.(*storage.CharmRegistry)
	if !ok {
		return fmt.Errorf("sync requires the charm registry (DOCQA_REGISTRY=charm), current registry is %q", a.Config.Registry)
	}
	return reg.Sync()
}

// unavailable stands in for the provider when no API key is configured
type unavailable struct{}

func (unavailable) Embed(context.Context, []string) ([][]float64, error) {
	return nil, ErrNoAPIKey
}

func (unavailable) Complete(context.Context, []models.ChatMessage, core.GenerateOptions) (string, error) {
	return "", ErrNoAPIKey
}

func (unavailable) Stream(context.Context, []models.ChatMessage, core.GenerateOptions) (core.DeltaStream, error) {
	return nil, ErrNoAPIKey
}
