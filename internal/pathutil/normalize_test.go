package pathutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeHomeDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir: %v", err)
	}

	got, err := Normalize("~", "")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != filepath.Clean(home) {
		t.Errorf("Normalize(~) = %q, want %q", got, home)
	}
}

func TestNormalizeAbsoluteInputIsUnchangedInShape(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "tmp", "pipeforge")
	got, err := Normalize(abs, "")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != filepath.Clean(abs) {
		t.Errorf("Normalize(%q) = %q, want %q", abs, got, filepath.Clean(abs))
	}
}

func TestNormalizeResolvesRelativeAgainstBase(t *testing.T) {
	base := t.TempDir()
	got, err := Normalize("sub/dir", base)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := filepath.Join(base, "sub", "dir")
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeCollapsesDotSegments(t *testing.T) {
	base := t.TempDir()
	got, err := Normalize("a/../b/./c", base)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if strings.Contains(got, "..") {
		t.Errorf("Normalize() result contains ..: %q", got)
	}
	want := filepath.Join(base, "b", "c")
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeEmptyInputUnchanged(t *testing.T) {
	for _, in := range []string{"", "   "} {
		got, err := Normalize(in, "/whatever")
		if err != nil {
			t.Fatalf("Normalize(%q): %v", in, err)
		}
		if got != in {
			t.Errorf("Normalize(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestNormalizeSeparatorsLeavesRelative(t *testing.T) {
	got := NormalizeSeparators(`a\b\c`)
	want := filepath.Join("a", "b", "c")
	if got != want {
		t.Errorf("NormalizeSeparators() = %q, want %q", got, want)
	}
	if filepath.IsAbs(got) {
		t.Error("NormalizeSeparators should not make a relative path absolute")
	}
}

func TestNormalizeSeparatorsEmptyUnchanged(t *testing.T) {
	if got := NormalizeSeparators(""); got != "" {
		t.Errorf("NormalizeSeparators(\"\") = %q, want empty", got)
	}
}
