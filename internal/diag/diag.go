// Package diag implements the diagnostics sink shared by every driver and
// core pass. It accumulates messages attached to source spans and exposes
// phase-boundary exit codes. Rendering lives here too, behind Format, since
// a cthulhu.yaml-less one-shot CLI has nothing else to print with; it stays
// a thin text renderer rather than anything LSP-shaped, matching the
// teacher's own split between computing a diagnosis and a richer client
// (cmd/lsp) turning it into protocol messages.
package diag

import (
	"fmt"
	"io"
	"sort"

	"github.com/cthulhu-project/cthulhu/internal/source"
)

// Level is the severity of a diagnostic message.
type Level int

const (
	Note Level = iota
	Warning
	Error
	Fatal
	Internal
)

func (l Level) String() string {
	switch l {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Annotation is a secondary span attached to a message — either a "note"
// explaining additional context, or a "previous definition" style pointer
// back to an earlier declaration.
type Annotation struct {
	Span source.Span
	Text string
}

// Message is one reported diagnostic.
type Message struct {
	Level    Level
	Code     string // optional error-kind tag, e.g. "TypeMismatch"
	Span     source.Span
	Text     string
	Notes    []Annotation
	Previous *Annotation
}

// Handle lets a caller append further notes to a message it just reported.
type Handle struct {
	sink  *Sink
	index int
}

// Sink accumulates diagnostics for a single compilation. It is not safe for
// concurrent use — per the core's single-threaded scheduling model (see
// internal/lifetime) there is never more than one writer.
type Sink struct {
	messages []Message
	counts   [Internal + 1]int
}

// NewSink constructs an empty diagnostics sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report records a new message and returns a Handle that can be used to
// attach further notes to it.
func (s *Sink) Report(level Level, span source.Span, format string, args ...any) Handle {
	s.messages = append(s.messages, Message{
		Level: level,
		Span:  span,
		Text:  fmt.Sprintf(format, args...),
	})
	s.counts[level]++
	return Handle{sink: s, index: len(s.messages) - 1}
}

// ReportCode is Report with an attached error-kind code, used by the tree
// builder and cookie to tag which invariant from the error taxonomy fired.
func (s *Sink) ReportCode(level Level, code string, span source.Span, format string, args ...any) Handle {
	h := s.Report(level, span, format, args...)
	s.messages[h.index].Code = code
	return h
}

// Append attaches a note to a previously reported message.
func (s *Sink) Append(h Handle, span source.Span, text string) {
	if h.sink != s || h.index < 0 || h.index >= len(s.messages) {
		return
	}
	s.messages[h.index].Notes = append(s.messages[h.index].Notes, Annotation{Span: span, Text: text})
}

// AppendPrevious attaches a "previous definition" style secondary span,
// used by Redefinition diagnostics.
func (s *Sink) AppendPrevious(h Handle, span source.Span, text string) {
	if h.sink != s || h.index < 0 || h.index >= len(s.messages) {
		return
	}
	s.messages[h.index].Previous = &Annotation{Span: span, Text: text}
}

// Messages returns every message reported so far, in report order.
func (s *Sink) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Count returns how many messages of exactly the given level have been
// reported.
func (s *Sink) Count(level Level) int {
	if level < 0 || int(level) >= len(s.counts) {
		return 0
	}
	return s.counts[level]
}

// HasErrors reports whether any Error, Fatal, or Internal diagnostic has
// been reported — the condition a phase must check before proceeding.
func (s *Sink) HasErrors() bool {
	return s.Count(Error) > 0 || s.Count(Fatal) > 0 || s.Count(Internal) > 0
}

// End closes out a named phase and returns the process exit code implied by
// what has been reported so far: 99 if any Internal diagnostic was
// reported, 1 if any Fatal or Error, else 0. The phase name is accepted for
// symmetry with the original mediator's per-region reporting but carries no
// semantic weight here.
func (s *Sink) End(_ string) int {
	switch {
	case s.Count(Internal) > 0:
		return 99
	case s.Count(Fatal) > 0, s.Count(Error) > 0:
		return 1
	default:
		return 0
	}
}

func levelColor(l Level) string {
	switch l {
	case Warning:
		return "33"
	case Error, Fatal, Internal:
		return "31"
	default:
		return "36"
	}
}

func paint(color bool, code, text string) string {
	if !color {
		return text
	}
	return "\x1b[" + code + "m" + text + "\x1b[0m"
}

// Format writes every message reported so far to w, one per line, prefixed
// by its span and level and followed by any notes and previous-definition
// annotation. When color is true (the CLI host decides this with
// mattn/go-isatty, checking whether its output is a terminal) the level
// label is wrapped in an ANSI color escape matching its severity.
func (s *Sink) Format(w io.Writer, color bool) {
	for _, msg := range s.messages {
		label := paint(color, levelColor(msg.Level), msg.Level.String())
		if msg.Code != "" {
			fmt.Fprintf(w, "%s: %s [%s]: %s\n", msg.Span.String(), label, msg.Code, msg.Text)
		} else {
			fmt.Fprintf(w, "%s: %s: %s\n", msg.Span.String(), label, msg.Text)
		}
		for _, note := range msg.Notes {
			fmt.Fprintf(w, "  %s: note: %s\n", note.Span.String(), note.Text)
		}
		if msg.Previous != nil {
			fmt.Fprintf(w, "  %s: previous: %s\n", msg.Previous.Span.String(), msg.Previous.Text)
		}
	}
}

// SortedByLocation returns messages sorted by span (file, line, column),
// builtin spans first. Useful for deterministic golden-file tests and CLI
// output.
func SortedByLocation(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Span, out[j].Span
		if a.IsBuiltin() != b.IsBuiltin() {
			return a.IsBuiltin()
		}
		if a.Handle != b.Handle {
			ap, bp := "", ""
			if a.Handle != nil {
				ap = a.Handle.Path
			}
			if b.Handle != nil {
				bp = b.Handle.Path
			}
			return ap < bp
		}
		if a.FirstLine != b.FirstLine {
			return a.FirstLine < b.FirstLine
		}
		return a.FirstColumn < b.FirstColumn
	})
	return out
}
