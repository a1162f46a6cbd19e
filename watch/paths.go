package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandInputs expands paths and doublestar patterns to regular files.
// Plain paths must exist; a pattern that matches nothing is an error.
// The result is de-duplicated and each pattern's matches are sorted.
func ExpandInputs(patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		files, err := expand(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve input %q: %w", pattern, err)
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func expand(pattern string) ([]string, error) {
	if !containsGlob(pattern) {
		info, err := os.Stat(pattern)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("path is a directory: %s", pattern)
		}
		return []string{filepath.Clean(pattern)}, nil
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// Root is a directory to watch and the pattern files under it must match.
type Root struct {
	Dir     string
	Pattern string
}

// Match reports whether path, relative to the root or absolute, matches the
// root's pattern.
func (r Root) Match(path string) bool {
	rel := path
	if filepath.IsAbs(path) {
		var err error
		rel, err = filepath.Rel(r.Dir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return false
		}
	}
	ok, err := doublestar.PathMatch(r.Pattern, rel)
	return err == nil && ok
}

// Roots splits input patterns into absolute base directories and the
// patterns matched below them. A plain file path watches its directory for
// that file name.
func Roots(patterns []string) ([]Root, error) {
	roots := make([]Root, 0, len(patterns))
	for _, p := range patterns {
		base, rest := doublestar.SplitPattern(filepath.ToSlash(p))
		if !containsGlob(p) {
			base, rest = filepath.Dir(p), filepath.Base(p)
		}
		abs, err := filepath.Abs(filepath.FromSlash(base))
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", p, err)
		}
		roots = append(roots, Root{Dir: abs, Pattern: filepath.FromSlash(rest)})
	}
	return roots, nil
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
