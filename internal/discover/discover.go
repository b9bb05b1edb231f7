// Package discover turns command-line paths and globs into search sources.
package discover

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dgallion1/docgrep/internal/source"
)

// ErrOutsideRoot marks a path that resolves outside the configured root.
var ErrOutsideRoot = errors.New("path escapes search root")

// Options controls how paths are expanded.
type Options struct {
	Suffixes        []string // document suffixes, e.g. ".docx"
	ArchiveSuffix   string   // e.g. ".zip"
	Junk            string   // member names containing this are skipped
	MaxBytes        int64
	IncludeArchives bool
}

// Failure is an archive that could not be listed.
type Failure struct {
	Label string
	Err   error
}

// Plan is the expanded work list.
type Plan struct {
	Sources  []source.Source
	Files    int
	Archives int
	Failures []Failure
}

// Pattern is a glob whose matches must also end with one of Suffixes.
// Suffixes compare case-insensitively; an empty list keeps every match.
type Pattern struct {
	Glob     string
	Suffixes []string
}

// Patterns returns the document and archive patterns for the given paths
// and glob. Directories are walked in full and filtered by suffix, so
// Q2.DOCX is found like q2.docx. An explicit glob is used as written. With
// neither, the current directory is searched.
func Patterns(paths []string, glob string, opts Options) (docs, archives []Pattern) {
	archiveSuffixes := []string{opts.ArchiveSuffix}

	for _, p := range paths {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
		switch {
		case source.HasSuffix(p, opts.Suffixes):
			docs = append(docs, Pattern{Glob: p})
		case source.HasSuffix(p, archiveSuffixes):
			archives = append(archives, Pattern{Glob: p})
		default:
			walk := path.Join(p, "**", "*")
			docs = append(docs, Pattern{Glob: walk, Suffixes: opts.Suffixes})
			archives = append(archives, Pattern{Glob: walk, Suffixes: archiveSuffixes})
		}
	}

	if glob != "" {
		docs = append(docs, Pattern{Glob: glob})
		for _, s := range opts.Suffixes {
			if strings.HasSuffix(glob, s) {
				archives = append(archives, Pattern{Glob: strings.TrimSuffix(glob, s) + opts.ArchiveSuffix})
				break
			}
		}
	}

	if len(paths) == 0 && glob == "" {
		docs = append(docs, Pattern{Glob: "**/*", Suffixes: opts.Suffixes})
		archives = append(archives, Pattern{Glob: "**/*", Suffixes: archiveSuffixes})
	}
	return docs, archives
}

// Build expands paths and glob into a Plan. Documents come before archive
// members; each group is sorted and de-duplicated. A bad glob pattern is an
// error; an unreadable archive is recorded in Failures.
func Build(paths []string, glob string, opts Options) (*Plan, error) {
	docPatterns, archivePatterns := Patterns(paths, glob, opts)

	files, err := expand(docPatterns)
	if err != nil {
		return nil, err
	}
	plan := &Plan{Files: len(files)}
	for _, f := range files {
		plan.Sources = append(plan.Sources, source.PlainFile{Path: f, MaxBytes: opts.MaxBytes})
	}

	if !opts.IncludeArchives || opts.ArchiveSuffix == "" {
		return plan, nil
	}
	archives, err := expand(archivePatterns)
	if err != nil {
		return nil, err
	}
	plan.Archives = len(archives)
	for _, a := range archives {
		members, err := source.Members(a, opts.Suffixes, opts.Junk, opts.MaxBytes)
		if err != nil {
			plan.Failures = append(plan.Failures, Failure{Label: a, Err: err})
			continue
		}
		plan.Sources = append(plan.Sources, members...)
	}
	return plan, nil
}

// Confine resolves p relative to root and rejects results outside root.
func Confine(root, p string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	resolved := p
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(absRoot, resolved)
	}
	resolved = filepath.Clean(resolved)
	rel, err := filepath.Rel(absRoot, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	return resolved, nil
}

func expand(patterns []Pattern) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		var matches []string
		if isLiteral(pattern.Glob) {
			// A named file is kept even if missing so the read error is reported.
			matches = []string{filepath.Clean(pattern.Glob)}
		} else {
			var err error
			matches, err = doublestar.FilepathGlob(pattern.Glob, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("glob %q: %w", pattern.Glob, err)
			}
		}
		for _, m := range matches {
			if len(pattern.Suffixes) > 0 && !source.HasSuffix(m, pattern.Suffixes) {
				continue
			}
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func isLiteral(pattern string) bool {
	return !strings.ContainsAny(pattern, `*?[{\`)
}
