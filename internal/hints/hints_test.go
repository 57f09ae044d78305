package hints

import "testing"

func TestMatchCommandNotFoundVariants(t *testing.T) {
	c := Default()
	cases := []string{
		"'foo' is not recognized as an internal or external command",
		"bash: foo: command not found",
	}
	for _, text := range cases {
		got := c.Match(text)
		if len(got) != 1 {
			t.Fatalf("Match(%q) = %v, want exactly one hint", text, got)
		}
	}
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	c := Default()
	got := c.Match("PERMISSION DENIED")
	if len(got) != 1 {
		t.Fatalf("Match(...) = %v, want exactly one hint", got)
	}
}

func TestMatchCollapsesDuplicateHints(t *testing.T) {
	c := Default()
	text := "access is denied\nagain: access is denied"
	got := c.Match(text)
	if len(got) != 1 {
		t.Fatalf("Match(...) = %v, want duplicates collapsed to one hint", got)
	}
}

func TestMatchNoneReturnsEmpty(t *testing.T) {
	c := Default()
	got := c.Match("everything worked fine")
	if len(got) != 0 {
		t.Fatalf("Match(...) = %v, want no hints", got)
	}
}

func TestMatchPreservesCatalogOrder(t *testing.T) {
	c := Default()
	text := "command not found\npermission denied"
	got := c.Match(text)
	if len(got) != 2 {
		t.Fatalf("Match(...) = %v, want two hints", got)
	}
	if got[0] != "the command is not on PATH or not installed" {
		t.Errorf("first hint = %q, want the command-not-found hint first", got[0])
	}
}

func TestAddPatternExtendsCatalog(t *testing.T) {
	c := Default()
	c.AddPattern(MustCompile(`innosetup-custom-error-42`, "custom template hint"))
	got := c.Match("innosetup-custom-error-42: boom")
	if len(got) != 2 || got[0] != "verify the Inno Setup compiler (ISCC) is installed and on PATH" || got[1] != "custom template hint" {
		t.Fatalf("Match(...) = %v, want the built-in Inno Setup hint followed by the custom hint", got)
	}
}

func TestDotNetAndInnoSetupHints(t *testing.T) {
	c := Default()
	if got := c.Match(".NET SDK not found"); len(got) != 1 {
		t.Errorf("Match(SDK not found) = %v, want one hint", got)
	}
	if got := c.Match("dotnet restore failed"); len(got) != 1 {
		t.Errorf("Match(restore failed) = %v, want one hint", got)
	}
	if got := c.Match("ISCC.exe not found on PATH"); len(got) != 1 {
		t.Errorf("Match(ISCC not found) = %v, want one hint", got)
	}
}
