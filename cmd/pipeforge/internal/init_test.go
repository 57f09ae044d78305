package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestInitCmdWritesDefaultPath(t *testing.T) {
	tmpDir := t.TempDir()
	oldwd, _ := os.Getwd()
	defer os.Chdir(oldwd)
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	cmd := NewInitCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"dotnet"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "dotnet.yml")); err != nil {
		t.Errorf("expected dotnet.yml to be written: %v", err)
	}
}

func TestInitCmdUnknownTemplate(t *testing.T) {
	cmd := NewInitCmd()
	cmd.SetOut(bytes.NewBufferString(""))
	cmd.SetArgs([]string{"does-not-exist"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an unknown template name")
	}
}

func TestInitCmdOutputFlag(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "custom-name.yml")

	cmd := NewInitCmd()
	cmd.SetOut(bytes.NewBufferString(""))
	cmd.SetArgs([]string{"security", "--output", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to be written: %v", path, err)
	}
}
