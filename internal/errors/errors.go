// Package errors defines the typed diagnostics produced by the tokenizer,
// parser, and MIB loader, plus an accumulating log used to batch them.
package errors

import (
	"fmt"
	"strings"
)

// Location pinpoints a diagnostic in a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IoFailure wraps an I/O error raised by the underlying reader of a CharBuffer.
type IoFailure struct {
	Underlying error
}

func (e *IoFailure) Error() string  { return fmt.Sprintf("io failure: %v", e.Underlying) }
func (e *IoFailure) Unwrap() error  { return e.Underlying }

// LexError reports that the tokenizer could not match any pattern at a
// position, or that it matched a pattern explicitly flagged as an error
// (Message then carries that pattern's ErrMsg, or a generic fallback).
type LexError struct {
	Location
	Char    rune
	Message string
}

func (e *LexError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Location, e.Message)
	}
	return fmt.Sprintf("%s: unexpected character %q", e.Location, e.Char)
}

// SyntaxError reports that the parser saw a token it did not expect.
type SyntaxError struct {
	Location
	Expected []string
	Found    string
}

func (e *SyntaxError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s: unexpected %s", e.Location, e.Found)
	}
	return fmt.Sprintf("%s: unexpected %s, expected one of %s",
		e.Location, e.Found, strings.Join(e.Expected, ", "))
}

// UnexpectedEOFError reports that the parser needed a token but input ended.
type UnexpectedEOFError struct {
	Location
	Expected []string
}

func (e *UnexpectedEOFError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s: unexpected end of input", e.Location)
	}
	return fmt.Sprintf("%s: unexpected end of input, expected one of %s",
		e.Location, strings.Join(e.Expected, ", "))
}

// AnalyzerError wraps a panic or error raised from an Analyzer callback.
type AnalyzerError struct {
	Location
	Underlying error
}

func (e *AnalyzerError) Error() string {
	return fmt.Sprintf("%s: analyzer error: %v", e.Location, e.Underlying)
}
func (e *AnalyzerError) Unwrap() error { return e.Underlying }

// SemanticError reports an unresolved reference or validation failure found
// during MibLoader.Initialize or Validate.
type SemanticError struct {
	Location
	Symbol     string
	Underlying error
	Suggestion string // nearest known name, filled in by internal/fuzzy; may be empty
}

func (e *SemanticError) Error() string {
	msg := fmt.Sprintf("%s: %s: %v", e.Location, e.Symbol, e.Underlying)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}
func (e *SemanticError) Unwrap() error { return e.Underlying }

// GrammarError reports a static defect in a ProductionPattern set, caught
// during Parser.Prepare.
type GrammarError struct {
	Pattern    string
	Underlying error
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("grammar error in %q: %v", e.Pattern, e.Underlying)
}
func (e *GrammarError) Unwrap() error { return e.Underlying }

// Log accumulates diagnostics across a pass (tokenize, parse, initialize,
// validate) so the caller can decide when to bail out rather than aborting
// on the first error.
type Log struct {
	entries []error
}

// Add appends a diagnostic to the log.
func (l *Log) Add(err error) {
	if err != nil {
		l.entries = append(l.entries, err)
	}
}

// Empty reports whether no diagnostics were recorded.
func (l *Log) Empty() bool { return len(l.entries) == 0 }

// Len returns the number of recorded diagnostics.
func (l *Log) Len() int { return len(l.entries) }

// Entries returns the recorded diagnostics in recording order.
func (l *Log) Entries() []error { return l.entries }

// Throw returns the log as an error, or nil if it is empty.
func (l *Log) Throw() error {
	if l.Empty() {
		return nil
	}
	return l
}

// Error implements the error interface by joining every recorded entry.
func (l *Log) Error() string {
	lines := make([]string, len(l.entries))
	for i, e := range l.entries {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
