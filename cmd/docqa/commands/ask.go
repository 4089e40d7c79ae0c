// ABOUTME: CLI command to answer questions from ingested documents
// ABOUTME: Prints the answer with its sources, or streams events as text, JSON lines or SSE frames
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/docqa/internal/models"
)

var (
	askTopK    int
	askDocs    []string
	askStream  bool
	askSSE     bool
	askHistory string
)

// NewAskCmd creates ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about your documents",
		Long: `Answer a question using the most relevant passages of your documents.

The answer is followed by the passages it was based on. With --stream the
answer is printed as it is generated; combine with --format json for one
JSON event per line, or use --sse for server-sent event frames.

History is a JSON file holding [{"role": "user"|"assistant", "content": "..."}];
only the last 6 messages are sent to the model.

Examples:
  docqa ask "What were the main findings?"
  docqa ask --stream --doc report_5d41402a "Summarize the risks"
  docqa ask --history chat.json "And what about costs?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().IntVarP(&askTopK, "top-k", "k", 5, "Number of passages to retrieve")
	cmd.Flags().StringSliceVar(&askDocs, "doc", nil, "Limit retrieval to these document IDs (repeatable)")
	cmd.Flags().BoolVar(&askStream, "stream", false, "Stream the answer as it is generated")
	cmd.Flags().BoolVar(&askSSE, "sse", false, "With --stream, print server-sent event frames")
	cmd.Flags().StringVar(&askHistory, "history", "", "JSON file with earlier conversation messages")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(askTopK, "--top-k"); err != nil {
		return err
	}
	question := strings.Join(args, " ")

	history, err := readHistory(askHistory)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if !askStream {
		resp, err := a.Ask(ctx, question, askTopK, askDocs, history)
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return writeJSON(out, resp)
		}
		fmt.Fprintln(out, resp.Answer)
		printSources(out, resp.Sources)
		return nil
	}

	events, err := a.AskStream(ctx, question, askTopK, askDocs, history)
	if err != nil {
		return err
	}

	switch {
	case askSSE:
		return writeEvents(events, func(ev models.StreamEvent) error { return models.WriteSSE(out, ev) })
	case outputFormat == "json":
		enc := json.NewEncoder(out)
		return writeEvents(events, func(ev models.StreamEvent) error { return enc.Encode(ev) })
	default:
		return printStream(out, events)
	}
}

// writeEvents forwards every event and reports a terminal error event as the command error
func writeEvents(events iter.Seq[models.StreamEvent], write func(models.StreamEvent) error) error {
	var streamErr error
	for ev := range events {
		if err := write(ev); err != nil {
			return err
		}
		if ev.Type == models.EventError {
			streamErr = fmt.Errorf("generation failed: %v", ev.Data)
		}
	}
	return streamErr
}

// printStream writes content deltas as they arrive, then the sources
func printStream(w io.Writer, events iter.Seq[models.StreamEvent]) error {
	var sources []models.SourceChunk
	for ev := range events {
		switch ev.Type {
		case models.EventSources:
			sources, _ = ev.Data.([]models.SourceChunk)
		case models.EventContent:
			fmt.Fprint(w, ev.Data)
		case models.EventError:
			fmt.Fprintln(w)
			return fmt.Errorf("generation failed: %v", ev.Data)
		case models.EventDone:
			fmt.Fprintln(w)
		}
	}
	printSources(w, sources)
	return nil
}

func printSources(w io.Writer, sources []models.SourceChunk) {
	if quiet || len(sources) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", heading("Sources"))
	for i, src := range sources {
		fmt.Fprintf(w, "  [%d] %s (chunk %d) %s\n",
			i+1, src.DocumentName, src.ChunkIndex, scoreStyle.Render(fmt.Sprintf("%.4f", src.Score)))
		fmt.Fprintf(w, "      %s\n", mutedStyle.Render(truncate(oneLine(src.Content), 100)))
	}
}

// readHistory loads conversation history from a JSON file; an empty path means none
func readHistory(path string) ([]models.ChatMessage, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	var history []models.ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing history %s: %w", path, err)
	}
	if err := models.ValidateHistory(history); err != nil {
		return nil, fmt.Errorf("invalid history in %s: %w", path, err)
	}
	return history, nil
}
