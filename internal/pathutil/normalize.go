// Package pathutil implements the two path-normalization operations
// described in spec §4.3: a full normalize (home expansion, separator
// fix, base resolution, . / .. collapse) and a separator-only normalize
// that leaves relative paths relative.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	altSeparator = '\\'
)

// Normalize performs the full path normalization described in spec §4.3.
// Empty or whitespace-only input is returned unchanged. If base is empty,
// the current working directory is used.
func Normalize(input, base string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return input, nil
	}

	expanded, err := expandHome(input)
	if err != nil {
		return "", err
	}

	withSeparators := replaceSeparators(expanded)

	if !filepath.IsAbs(withSeparators) {
		if base == "" {
			base, err = os.Getwd()
			if err != nil {
				return "", err
			}
		}
		withSeparators = filepath.Join(base, withSeparators)
	}

	return filepath.Clean(withSeparators), nil
}

// NormalizeSeparators replaces the platform's alternate separator with its
// native one without resolving relativity or collapsing . / .. segments.
// A nil-equivalent (empty) input is returned unchanged.
func NormalizeSeparators(input string) string {
	if input == "" {
		return input
	}
	return replaceSeparators(input)
}

func replaceSeparators(p string) string {
	if filepath.Separator == altSeparator {
		return strings.ReplaceAll(p, "/", string(filepath.Separator))
	}
	return strings.ReplaceAll(p, string(altSeparator), string(filepath.Separator))
}

// expandHome replaces a leading "~", "~/" or "~\" with the user's home
// directory. Inputs without that prefix are returned unchanged.
func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if p == "~" {
		return home, nil
	}
	return filepath.Join(home, p[2:]), nil
}
