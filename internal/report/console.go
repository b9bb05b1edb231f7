// Package report renders search results for a terminal.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/docgrep/internal/pipeline"
	"github.com/dgallion1/docgrep/internal/segment"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Console writes one block per source to Out and error details to Err.
// Each block is written with a single call.
type Console struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool

	file   *color.Color
	prompt *color.Color
	hit    *color.Color
	found  *color.Color
	miss   *color.Color
}

// NewConsole returns a Console. Colors are used only when useColor is true.
func NewConsole(out, errOut io.Writer, quiet, useColor bool) *Console {
	c := &Console{
		Out:    out,
		Err:    errOut,
		Quiet:  quiet,
		file:   color.New(color.FgHiRed),
		prompt: color.New(color.FgHiYellow, color.BgBlue),
		hit:    color.New(color.FgRed),
		found:  color.New(color.FgHiGreen, color.BgBlack),
		miss:   color.New(color.FgHiRed, color.BgBlack),
	}
	for _, col := range []*color.Color{c.file, c.prompt, c.hit, c.found, c.miss} {
		if useColor {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

// ColorEnabled reports whether f is a terminal and color has not been
// turned off through NO_COLOR or noColor.
func ColorEnabled(f *os.File, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Report implements pipeline.Sink.
func (c *Console) Report(r pipeline.Result) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Searched file--> %s\n\n", c.file.Sprint(r.Source))

	if r.Err != nil {
		c.Out.Write(buf.Bytes())
		fmt.Fprintf(c.Err, "%s: %v\n\n", r.Source, r.Err)
		return
	}

	if c.Quiet {
		if len(r.Runs) > 0 {
			fmt.Fprintf(&buf, "%s\n\n", c.found.Sprintf("Matched %d runs", len(r.Runs)))
		} else {
			fmt.Fprintf(&buf, "%s\n\n", c.miss.Sprint("No matches found"))
		}
	} else {
		for i, run := range r.Runs {
			for j, t := range run.Triples {
				label := c.prompt.Sprintf("%d-%d", i+1, j+1)
				fmt.Fprintf(&buf, "  %s-> %s\n\n", label, c.triple(t))
			}
		}
	}
	buf.WriteString("===\n\n")
	c.Out.Write(buf.Bytes())
}

func (c *Console) triple(t segment.Triple) string {
	return t.Preamble + c.hit.Sprint(t.Match) + t.Postamble
}

// Summary writes the closing totals.
func (c *Console) Summary(files, archives int, pattern string, paths []string, glob string) {
	fmt.Fprintf(c.Out, "Searched %d files and %d archives\n\n", files, archives)
	var where []string
	if len(paths) > 0 {
		where = append(where, "paths: "+strings.Join(paths, ", "))
	}
	if glob != "" {
		where = append(where, "glob: "+glob)
	}
	if len(where) == 0 {
		where = append(where, "paths: .")
	}
	fmt.Fprintf(c.Out, "  Search parameters: regex: %s, %s\n\n", pattern, strings.Join(where, ", "))
}
