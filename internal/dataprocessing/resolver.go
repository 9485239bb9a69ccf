package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// ResolvedCode is the outcome of hierarchy resolution for one row.
// DisplayCode carries the original raw text whenever the code had to be
// rewritten or synthesized; it is empty for rows whose raw code was blank.
type ResolvedCode struct {
	Code        string
	DisplayCode string
	Synthesized bool
}

var (
	reFullCode    = regexp.MustCompile(`^[A-Z](\.\d+)+$`)
	reLetterGlued = regexp.MustCompile(`^[A-Z]\d+(\.\d+)*$`)
	reDigitsOnly  = regexp.MustCompile(`^\d+(\.\d+)*$`)
)

// codeResolver carries the running state of a single forward pass: the most
// recent top-level section letter, the most recent fully-qualified code,
// and a synthesized-suffix counter per parent code.
type codeResolver struct {
	lastTop  string
	lastFull string
	counters map[string]int
}

// ResolveCodes assigns a final hierarchical code to every raw code string,
// in original row order. Order is significant: short or malformed codes
// attach to the most recently seen well-formed ancestor. The function is a
// pure fold over its input; the same sequence always yields the same
// result.
//
// Rows before any lettered code fall back to the placeholder section U.
// This can misfile legitimate early rows, but the source behavior is kept
// as-is rather than guessed at.
func ResolveCodes(raw []string) []ResolvedCode {
	r := &codeResolver{counters: make(map[string]int)}
	out := make([]ResolvedCode, 0, len(raw))
	for _, t := range raw {
		out = append(out, r.resolve(t))
	}
	return out
}

func (r *codeResolver) resolve(raw string) ResolvedCode {
	t := strings.TrimSpace(width.Narrow.String(raw))

	switch {
	case t == "":
		return ResolvedCode{Code: r.synthesize(), Synthesized: true}

	case reFullCode.MatchString(t):
		return r.accept(t, raw)

	case reLetterGlued.MatchString(t):
		// A glued code like B4.3 is a qualified path missing the first
		// separator.
		return r.accept(t[:1]+"."+t[1:], raw)

	case reDigitsOnly.MatchString(t):
		top := r.lastTop
		if top == "" {
			top = "U"
		}
		code := top + "." + t
		r.lastFull = code
		return ResolvedCode{Code: code, DisplayCode: strings.TrimSpace(raw)}

	default:
		return ResolvedCode{
			Code:        r.synthesize(),
			DisplayCode: strings.TrimSpace(raw),
			Synthesized: true,
		}
	}
}

func (r *codeResolver) accept(code, raw string) ResolvedCode {
	r.lastTop = code[:strings.IndexByte(code, '.')]
	r.lastFull = code
	return ResolvedCode{Code: code, DisplayCode: strings.TrimSpace(raw)}
}

// synthesize invents a sub-code under the current context. The counter is
// scoped to the parent so siblings number u1, u2, ... independently of
// synthesized rows elsewhere in the tree.
func (r *codeResolver) synthesize() string {
	parent := r.lastFull
	if parent == "" {
		parent = r.lastTop
	}
	if parent == "" {
		parent = "U"
	}
	r.counters[parent]++
	return parent + ".u" + strconv.Itoa(r.counters[parent])
}

// IsSyntheticSegment reports whether a code segment was invented by the
// resolver (u1, u2, ...) rather than present in the source.
func IsSyntheticSegment(segment string) bool {
	if len(segment) < 2 || segment[0] != 'u' {
		return false
	}
	for _, c := range segment[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
