package internal

import (
	"bytes"
	"testing"
)

func TestRootCmdWithNoArgsPrintsHelp(t *testing.T) {
	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(b.Bytes(), []byte("PipeForge")) {
		t.Errorf("expected help output to mention PipeForge, got %q", b.String())
	}
}

func TestRootCmdRegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "validate", "init", "templates"} {
		if !names[want] {
			t.Errorf("expected root command to register %q", want)
		}
	}
}
