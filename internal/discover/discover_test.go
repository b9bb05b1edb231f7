package discover

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOptions() Options {
	return Options{
		Suffixes:        []string{".docx"},
		ArchiveSuffix:   ".zip",
		Junk:            "__MACOSX",
		IncludeArchives: true,
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func writeZip(t *testing.T, path string, names ...string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write([]byte("x"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func labels(p *Plan) []string {
	out := make([]string, 0, len(p.Sources))
	for _, s := range p.Sources {
		out = append(out, s.Label())
	}
	return out
}

func TestPatterns(t *testing.T) {
	opts := defaultOptions()
	docx := []string{".docx"}
	zips := []string{".zip"}

	docs, archives := Patterns(nil, "", opts)
	assert.Equal(t, []Pattern{{Glob: "**/*", Suffixes: docx}}, docs)
	assert.Equal(t, []Pattern{{Glob: "**/*", Suffixes: zips}}, archives)

	docs, archives = Patterns([]string{"reports/", "one.docx", "TWO.DOCX", "bundle.zip"}, "", opts)
	assert.Equal(t, []Pattern{
		{Glob: "reports/**/*", Suffixes: docx},
		{Glob: "one.docx"},
		{Glob: "TWO.DOCX"},
	}, docs)
	assert.Equal(t, []Pattern{
		{Glob: "reports/**/*", Suffixes: zips},
		{Glob: "bundle.zip"},
	}, archives)

	docs, archives = Patterns(nil, "letters/**/*.docx", opts)
	assert.Equal(t, []Pattern{{Glob: "letters/**/*.docx"}}, docs)
	assert.Equal(t, []Pattern{{Glob: "letters/**/*.zip"}}, archives)

	opts.Suffixes = []string{".docx", ".md"}
	docs, _ = Patterns([]string{"src"}, "", opts)
	assert.Equal(t, []Pattern{{Glob: "src/**/*", Suffixes: []string{".docx", ".md"}}}, docs)
}

func TestBuild_SuffixesIgnoreCase(t *testing.T) {
	dir := t.TempDir()
	upper := filepath.Join(dir, "Q2.DOCX")
	touch(t, upper)
	touch(t, filepath.Join(dir, "Q2.DOCX.bak"))
	archive := filepath.Join(dir, "Bundle.ZIP")
	writeZip(t, archive, "q3.Docx", "q3.txt")

	plan, err := Build([]string{dir}, "", defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Files)
	assert.Equal(t, 1, plan.Archives)
	assert.Equal(t, []string{upper, "member q3.Docx in " + archive}, labels(plan))
}

func TestBuild_DirectoryTree(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.docx"))
	touch(t, filepath.Join(dir, "sub", "a.docx"))
	touch(t, filepath.Join(dir, "notes.txt"))
	archive := filepath.Join(dir, "sub", "bundle.zip")
	writeZip(t, archive, "inner.docx", "__MACOSX/._inner.docx", "skip.txt")

	plan, err := Build([]string{dir + "/"}, "", defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Files)
	assert.Equal(t, 1, plan.Archives)
	assert.Empty(t, plan.Failures)
	assert.Equal(t, []string{
		filepath.Join(dir, "b.docx"),
		filepath.Join(dir, "sub", "a.docx"),
		"member inner.docx in " + archive,
	}, labels(plan))
}

func TestBuild_Deduplicates(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.docx")
	touch(t, file)

	plan, err := Build([]string{dir, file}, "", defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Files)
	assert.Equal(t, []string{file}, labels(plan))
}

func TestBuild_MissingLiteralFileIsKept(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.docx")
	plan, err := Build([]string{missing}, "", defaultOptions())
	require.NoError(t, err)
	require.Len(t, plan.Sources, 1)
	_, err = plan.Sources[0].Bytes()
	assert.Error(t, err)
}

func TestBuild_CorruptArchiveIsFailure(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.zip")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
	good := filepath.Join(dir, "good.zip")
	writeZip(t, good, "x.docx")

	plan, err := Build([]string{dir}, "", defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Archives)
	require.Len(t, plan.Failures, 1)
	assert.Equal(t, bad, plan.Failures[0].Label)
	assert.Equal(t, []string{"member x.docx in " + good}, labels(plan))
}

func TestBuild_ArchivesDisabled(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "a.zip"), "x.docx")
	opts := defaultOptions()
	opts.IncludeArchives = false

	plan, err := Build([]string{dir}, "", opts)
	require.NoError(t, err)
	assert.Zero(t, plan.Archives)
	assert.Empty(t, plan.Sources)
}

func TestBuild_BadGlob(t *testing.T) {
	_, err := Build(nil, "[unterminated", defaultOptions())
	assert.Error(t, err)
}

func TestConfine(t *testing.T) {
	root := t.TempDir()

	got, err := Confine(root, "docs/a.docx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "docs", "a.docx"), got)

	_, err = Confine(root, "../etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = Confine(root, "/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	got, err = Confine(root, ".")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(root), got)
}
