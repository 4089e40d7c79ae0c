// ABOUTME: Test runner for RAGAS benchmarks - executes scenarios and collects results
// ABOUTME: Each scenario gets a fresh data directory, ingests its fixtures, then asks its question

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/harper/docqa/internal/app"
	"github.com/harper/docqa/internal/config"
	"github.com/harper/docqa/internal/core"
	"github.com/harper/docqa/internal/storage"
	"github.com/harper/docqa/internal/storage/sqlite"
)

type openFunc func(ctx context.Context, cfg *config.Config) (*app.App, error)

// BenchmarkRunner executes RAGAS benchmark tests
type BenchmarkRunner struct {
	cfg     *config.Config
	open    openFunc
	metrics *MetricsCalculator
	verbose bool
	out     io.Writer
}

// NewBenchmarkRunner creates a runner that talks to the configured provider
func NewBenchmarkRunner(cfg *config.Config, verbose bool) (*BenchmarkRunner, error) {
	if cfg.OpenAIKey == "" {
		return nil, app.ErrNoAPIKey
	}
	return &BenchmarkRunner{
		cfg:     cfg,
		open:    app.New,
		metrics: NewMetricsCalculator(),
		verbose: verbose,
		out:     os.Stdout,
	}, nil
}

// NewBenchmarkRunnerWithProviders creates a runner over the given embedder and model
func NewBenchmarkRunnerWithProviders(cfg *config.Config, embedder core.Embedder, model core.ChatModel, out io.Writer) *BenchmarkRunner {
	open := func(ctx context.Context, cfg *config.Config) (*app.App, error) {
		db, err := sqlite.Open(cfg.VectorDBPath)
		if err != nil {
			return nil, err
		}
		store, err := sqlite.NewVectorStore(ctx, db, core.MetricCosine)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		reg, err := storage.NewFileRegistry(cfg.UploadDir)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return app.NewWithProviders(cfg, db, store, reg, embedder, model), nil
	}
	return &BenchmarkRunner{
		cfg:     cfg,
		open:    open,
		metrics: NewMetricsCalculator(),
		out:     out,
	}
}

// RunTest executes a single benchmark test in an isolated data directory
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Description: %s\n\n", scenario.Description)
	}

	dir, err := os.MkdirTemp("", "docqa-bench-*")
	if err != nil {
		return TestResult{}, fmt.Errorf("failed to create data dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	cfg := *r.cfg
	cfg.DataDir = dir
	cfg.UploadDir = filepath.Join(dir, "uploads")
	cfg.VectorDBPath = filepath.Join(dir, "vectors.db")
	cfg.Registry = config.RegistryFile

	a, err := r.open(ctx, &cfg)
	if err != nil {
		return TestResult{}, fmt.Errorf("failed to open app: %w", err)
	}
	defer func() { _ = a.Close() }()

	ids := make(map[string]string, len(scenario.Documents))
	for _, fixture := range scenario.Documents {
		doc, err := a.IngestBytes(ctx, []byte(fixture.Content), fixture.Filename)
		if err != nil {
			return TestResult{}, fmt.Errorf("failed to ingest %s: %w", fixture.Filename, err)
		}
		ids[fixture.Filename] = doc.ID
		if r.verbose {
			fmt.Fprintf(r.out, "✓ Ingested %s (%d chunks)\n", fixture.Filename, doc.ChunkCount)
		}
	}

	var filter []string
	for _, name := range scenario.FilterTo {
		id, ok := ids[name]
		if !ok {
			return TestResult{}, fmt.Errorf("filter names %s, which is not a fixture of %s", name, scenario.ID)
		}
		filter = append(filter, id)
	}

	if r.verbose {
		fmt.Fprintf(r.out, "[Question] %s\n", scenario.Question)
	}

	resp, err := a.Ask(ctx, scenario.Question, scenario.TopK, filter, scenario.History)
	if err != nil {
		return TestResult{}, fmt.Errorf("ask failed: %w", err)
	}

	result := r.metrics.EvaluateTest(scenario, resp)

	if r.verbose {
		fmt.Fprintf(r.out, "[Answer] %s\n", resp.Answer)
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RESULTS: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Fprintf(r.out, "Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Fprintf(r.out, "Attribution: %.2f\n", result.AttributionScore)
		fmt.Fprintf(r.out, "Overall Score: %.2f\n", result.OverallScore)
		fmt.Fprintf(r.out, "Status: %s\n", result.Status)
		fmt.Fprintf(r.out, "========================================\n\n")
	}

	return result, nil
}

// RunAllTests executes all benchmark tests
func (r *BenchmarkRunner) RunAllTests(ctx context.Context) ([]TestResult, error) {
	scenarios := GetAllTests()
	results := make([]TestResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := r.RunTest(ctx, scenario)
		if err != nil {
			return nil, fmt.Errorf("test %s failed: %w", scenario.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// ExportResults exports test results to JSON
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	passed := 0
	for _, result := range results {
		if result.Status == "PASS" {
			passed++
		}
	}

	summary := map[string]interface{}{
		"timestamp":   time.Now().Format(time.RFC3339),
		"total_tests": len(results),
		"passed":      passed,
		"failed":      len(results) - passed,
		"results":     results,
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Fprintf(r.out, "✓ Results exported to: %s\n", outputPath)
	return nil
}
