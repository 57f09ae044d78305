package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const samplePipelineYAML = `
version: 1
name: sample
stages:
  - name: build
    steps:
      - name: echo-hello
        command: echo
        arguments: hello
`

func TestRunCmdSuccessfulPipeline(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pipeline.yml")
	if err := os.WriteFile(path, []byte(samplePipelineYAML), 0o644); err != nil {
		t.Fatalf("write pipeline: %v", err)
	}

	cmd := NewRunCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetErr(b)
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(b.Bytes(), []byte("success")) {
		t.Errorf("expected output to mention success, got %q", b.String())
	}
}

func TestRunCmdMissingFile(t *testing.T) {
	cmd := NewRunCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetErr(b)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "does-not-exist.yml")})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a missing pipeline file")
	}
}
