package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestTemplatesCmdListsAllCatalogEntries(t *testing.T) {
	cmd := NewTemplatesCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"innosetup", "dotnet", "security", "twincat", "custom"} {
		if !strings.Contains(b.String(), name) {
			t.Errorf("expected templates output to mention %q, got %q", name, b.String())
		}
	}
}
