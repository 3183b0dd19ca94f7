// Package source provides the scan handles and source spans that every
// diagnostic, tree node, and SSA step in the compiler carries.
package source

import "fmt"

// Handle identifies a single source buffer a driver has loaded. Drivers own
// the concrete byte storage; the core only ever needs line slicing and the
// few identifying fields below.
type Handle struct {
	Path       string
	LanguageID string
	data       []byte
	lineStarts []int
}

// NewHandle builds a Handle over the given source text, precomputing line
// start offsets so Line can run in O(log n).
func NewHandle(path, languageID string, data []byte) *Handle {
	h := &Handle{Path: path, LanguageID: languageID, data: data}
	h.lineStarts = []int{0}
	for i, b := range data {
		if b == '\n' {
			h.lineStarts = append(h.lineStarts, i+1)
		}
	}
	return h
}

// Len returns the byte length of the source buffer.
func (h *Handle) Len() int {
	if h == nil {
		return 0
	}
	return len(h.data)
}

// Line returns the raw bytes of the 1-based line n, excluding its trailing
// newline. Returns nil if n is out of range.
func (h *Handle) Line(n int) []byte {
	if h == nil || n < 1 || n > len(h.lineStarts) {
		return nil
	}
	start := h.lineStarts[n-1]
	end := len(h.data)
	if n < len(h.lineStarts) {
		end = h.lineStarts[n] - 1
		if end > 0 && h.data[end-1] == '\r' {
			end--
		}
	}
	if start > end {
		return nil
	}
	return h.data[start:end]
}

// Span is a half-open source range: lines are 1-based, columns are 0-based
// code-unit offsets into the source buffer, matching the convention used
// throughout this codebase's diagnostics.
type Span struct {
	Handle      *Handle
	FirstLine   int
	FirstColumn int
	LastLine    int
	LastColumn  int
}

// Builtin is the span attached to nodes synthesized by the core itself
// (e.g. implicit returns) rather than parsed from any source file.
var Builtin = Span{FirstLine: 0, FirstColumn: 0, LastLine: 0, LastColumn: 0}

// IsBuiltin reports whether a span carries no real source handle.
func (s Span) IsBuiltin() bool {
	return s.Handle == nil
}

// String renders a span as "path:line:col" for diagnostic messages.
func (s Span) String() string {
	if s.IsBuiltin() {
		return "<builtin>"
	}
	path := s.Handle.Path
	if path == "" {
		path = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", path, s.FirstLine, s.FirstColumn)
}

// Join produces the smallest span covering both a and b. A builtin span on
// either side is ignored so `Join` is a safe way to widen a real span by an
// implicit one.
func Join(a, b Span) Span {
	if a.IsBuiltin() {
		return b
	}
	if b.IsBuiltin() {
		return a
	}
	out := a
	if b.FirstLine < out.FirstLine || (b.FirstLine == out.FirstLine && b.FirstColumn < out.FirstColumn) {
		out.FirstLine, out.FirstColumn = b.FirstLine, b.FirstColumn
	}
	if b.LastLine > out.LastLine || (b.LastLine == out.LastLine && b.LastColumn > out.LastColumn) {
		out.LastLine, out.LastColumn = b.LastLine, b.LastColumn
	}
	return out
}
