// Package segment cuts bounded context windows around pattern occurrences.
package segment

import (
	"regexp"
	"unicode/utf8"
)

// Triple is the context window around one occurrence of a pattern.
type Triple struct {
	Preamble  string `json:"preamble"`
	Match     string `json:"match"`
	Postamble string `json:"postamble"`
}

// Segment scans run left to right for non-overlapping, leftmost-first
// occurrences of re and returns one Triple per occurrence.
//
// Preamble and postamble hold at most contextLen Unicode code points; a
// negative contextLen leaves them unbounded. Between two occurrences the
// postamble of the first and the preamble of the second are both cut from
// the same gap, so they repeat characters when the gap is short. Empty
// occurrences are ignored. A run without occurrences yields nil.
func Segment(run string, re *regexp.Regexp, contextLen int) []Triple {
	var segs []string
	prevEnd := -1
	for _, loc := range re.FindAllStringIndex(run, -1) {
		start, end := loc[0], loc[1]
		if start == end {
			continue
		}
		if prevEnd < 0 {
			segs = append(segs, tailRunes(run[:start], contextLen))
		} else {
			gap := run[prevEnd:start]
			segs = append(segs, headRunes(gap, contextLen), tailRunes(gap, contextLen))
		}
		segs = append(segs, run[start:end])
		prevEnd = end
	}
	if prevEnd < 0 {
		return nil
	}
	if prevEnd < len(run) {
		segs = append(segs, headRunes(run[prevEnd:], contextLen))
	}
	return group(segs)
}

func group(segs []string) []Triple {
	triples := make([]Triple, 0, (len(segs)+2)/3)
	for i := 0; i < len(segs); i += 3 {
		var t Triple
		t.Preamble = segs[i]
		if i+1 < len(segs) {
			t.Match = segs[i+1]
		}
		if i+2 < len(segs) {
			t.Postamble = segs[i+2]
		}
		triples = append(triples, t)
	}
	return triples
}

// headRunes returns the first n code points of s.
func headRunes(s string, n int) string {
	if n < 0 {
		return s
	}
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// tailRunes returns the last n code points of s.
func tailRunes(s string, n int) string {
	if n < 0 {
		return s
	}
	i := len(s)
	for ; i > 0 && n > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[i:]
}
