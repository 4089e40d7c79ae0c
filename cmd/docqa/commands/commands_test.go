// ABOUTME: Tests running document subcommands against a temporary data directory
// ABOUTME: No provider key is set, so only offline paths and input validation are exercised
package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupDataDir points the CLI at a fresh data directory with no API key or config file
func setupDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{
		"DOCQA_CONFIG", "OPENAI_API_KEY", "DOCQA_UPLOAD_DIR", "DOCQA_VECTOR_DB",
		"DOCQA_REGISTRY", "DOCQA_LOG_LEVEL", "DOCQA_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("DOCQA_DATA_DIR", dir)
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--quiet"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestList_Empty(t *testing.T) {
	setupDataDir(t)

	out, err := run(t, "--format", "json", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("list output = %q, want []", out)
	}
}

func TestStatus_WithoutAPIKey(t *testing.T) {
	dir := setupDataDir(t)

	out, err := run(t, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "OPENAI_API_KEY not set") {
		t.Errorf("status should report missing key:\n%s", out)
	}
	if !strings.Contains(out, dir) {
		t.Errorf("status should show data dir %s:\n%s", dir, out)
	}
}

func TestIngest_Rejections(t *testing.T) {
	dir := setupDataDir(t)

	docx := filepath.Join(dir, "memo.docx")
	if err := os.WriteFile(docx, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "ingest", docx); err == nil || !strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("expected unsupported file type, got %v", err)
	}

	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("Some text."), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "ingest", txt); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("expected missing key error, got %v", err)
	}
}

func TestShowAndDelete_NotFound(t *testing.T) {
	setupDataDir(t)

	if _, err := run(t, "show", "nothing_12345678"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("show: expected not found, got %v", err)
	}
	if _, err := run(t, "delete", "nothing_12345678"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("delete: expected not found, got %v", err)
	}
}

func TestSearch_InvalidTopK(t *testing.T) {
	setupDataDir(t)

	if _, err := run(t, "search", "--top-k", "0", "anything"); err == nil {
		t.Error("expected error for --top-k 0")
	}
}

func TestAsk_InvalidHistoryFile(t *testing.T) {
	dir := setupDataDir(t)

	path := filepath.Join(dir, "history.json")
	if err := os.WriteFile(path, []byte(`[{"role":"system","content":"x"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "ask", "--history", path, "question"); err == nil || !strings.Contains(err.Error(), "invalid history") {
		t.Errorf("expected invalid history error, got %v", err)
	}
}

func TestExport_EmptyIndex(t *testing.T) {
	dir := setupDataDir(t)

	for _, format := range []string{"yaml", "markdown", "json"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "export-"+format)
			if _, err := run(t, "export", "--as", format, "-o", path); err != nil {
				t.Fatalf("export failed: %v", err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("export file not written: %v", err)
			}
		})
	}

	if _, err := run(t, "export", "--as", "csv"); err == nil {
		t.Error("expected error for unknown export format")
	}
}

func TestSync_RequiresCharmRegistry(t *testing.T) {
	setupDataDir(t)

	if _, err := run(t, "sync", "now"); err == nil || !strings.Contains(err.Error(), "DOCQA_REGISTRY") {
		t.Errorf("expected registry error, got %v", err)
	}
}
