package cli

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/docgrep/internal/match"
	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docxBytes(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	w := docx.New().WithDefaultTheme()
	for _, p := range paragraphs {
		w.AddParagraph().AddText(p)
	}
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func writeZip(t *testing.T, path string, members map[string][]byte, order ...string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(members[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSearch_FilesAndArchives(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "a.docx")
	require.NoError(t, os.WriteFile(plain, docxBytes(t, "Hello, world!", "unrelated"), 0o644))

	bundle := filepath.Join(dir, "bundle.zip")
	writeZip(t, bundle, map[string][]byte{
		"inner/b.docx":            docxBytes(t, "say hello"),
		"__MACOSX/inner/._b.docx": []byte("junk"),
		"inner/readme.txt":        []byte("hello"),
	}, "inner/b.docx", "__MACOSX/inner/._b.docx", "inner/readme.txt")

	broken := filepath.Join(dir, "broken.zip")
	require.NoError(t, os.WriteFile(broken, []byte("not a zip"), 0o644))

	out, errOut, err := run(t, "-r", "[Hh]ello", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Searched file--> "+plain+"\n\n  1-1-> Hello, world!\n\n===\n\n")
	assert.Contains(t, out, "Searched file--> member inner/b.docx in "+bundle+"\n\n  1-1-> say hello\n\n===\n\n")
	assert.NotContains(t, out, "__MACOSX")
	assert.NotContains(t, out, "readme.txt")
	assert.Contains(t, out, "Searched file--> "+broken)
	assert.Contains(t, errOut, broken)
	assert.Contains(t, out, "Searched 1 files and 2 archives\n")
	assert.Contains(t, out, "  Search parameters: regex: [Hh]ello, paths: "+dir)
}

func TestSearch_Quiet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.docx"), docxBytes(t, "one th", "two th"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.docx"), docxBytes(t, "none"), 0o644))

	out, _, err := run(t, "-q", "-r", "th", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Matched 2 runs")
	assert.Contains(t, out, "No matches found")
	assert.NotContains(t, out, "1-1->")
}

func TestSearch_ContextFlag(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.docx"), docxBytes(t, "abcdef MATCH ghijkl"), 0o644))

	out, _, err := run(t, "-r", "MATCH", "-c", "3", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "  1-1-> ef MATCH gh\n")
}

func TestSearch_ConfigFileAndExt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("abcdef MATCH ghijkl"), 0o644))
	cfgPath := filepath.Join(t.TempDir(), "docgrep.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("context_length: 1\n"), 0o644))

	out, _, err := run(t, "--config", cfgPath, "--ext", ".txt", "-r", "MATCH", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "  1-1->  MATCH \n")
	assert.Contains(t, out, "Searched 1 files and 0 archives")
}

func TestSearch_GlobFlag(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "keep"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "skip"), 0o755))
	kept := filepath.Join(dir, "keep", "a.docx")
	require.NoError(t, os.WriteFile(kept, docxBytes(t, "hit"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip", "b.docx"), docxBytes(t, "hit"), 0o644))

	out, _, err := run(t, "-r", "hit", "-g", filepath.Join(dir, "keep", "**", "*.docx"))
	require.NoError(t, err)
	assert.Contains(t, out, "Searched file--> "+kept)
	assert.NotContains(t, out, "b.docx")
	assert.Contains(t, out, "Searched 1 files and 0 archives")
}

func TestSearch_BadPatternStopsBeforeSearch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.docx"), docxBytes(t, "x"), 0o644))

	out, _, err := run(t, "-r", "(unclosed", dir)
	require.ErrorIs(t, err, match.ErrPattern)
	assert.NotContains(t, out, "Searched")
}

func TestSearch_RegexRequired(t *testing.T) {
	_, _, err := run(t, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regex")
}

func TestSearch_MissingFileReported(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.docx")
	out, errOut, err := run(t, "-r", "x", missing)
	require.NoError(t, err)
	assert.Contains(t, out, "Searched file--> "+missing)
	assert.Contains(t, errOut, "io error")
	assert.Contains(t, out, "Searched 1 files and 0 archives")
}

func TestServe_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "docgrep.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("job_workers: 0\n"), 0o644))
	_, _, err := run(t, "serve", "--config", cfgPath)
	require.Error(t, err)
}
