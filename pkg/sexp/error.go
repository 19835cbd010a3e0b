package sexp

import "fmt"

// Span identifies a half-open byte range [Start,End) within an original
// source file, used to annotate errors with a highlightable location.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a span over [start,end).
func NewSpan(start, end int) Span {
	return Span{start, end}
}

// Start returns the (inclusive) start of this span.
func (s Span) Start() int { return s.start }

// End returns the (exclusive) end of this span.
func (s Span) End() int { return s.end }

// SyntaxError is a structured error which retains the span of source text
// where an error arose, along with a human-readable message, so that a
// driver can render it against the original source.
type SyntaxError struct {
	span Span
	msg  string
}

// NewSyntaxError constructs a new syntax error.
func NewSyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{span, msg}
}

// Span returns the span of the original text on which this error is reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", p.span.Start(), p.span.End(), p.msg)
}

// SourceMaps associates nodes of type N with the span of source text from
// which they were derived.  Used to translate an internal error about a
// Node back into a SyntaxError anchored at a real source location.
type SourceMaps[N any] struct {
	spans map[any]Span
}

// NewSourceMaps constructs an empty source map.
func NewSourceMaps[N any]() *SourceMaps[N] {
	return &SourceMaps[N]{make(map[any]Span)}
}

// Put records the span associated with a given node.
func (s *SourceMaps[N]) Put(node N, span Span) {
	s.spans[node] = span
}

// SyntaxError constructs a syntax error anchored at the span recorded for
// the given node, falling back to an empty span if none was recorded.
func (s *SourceMaps[N]) SyntaxError(node N, msg string) *SyntaxError {
	span := s.spans[node]
	return NewSyntaxError(span, msg)
}
