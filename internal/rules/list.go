package rules

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/hnrobert/lusers/internal/logger"
)

// LineError is a configuration line that was dropped.
type LineError struct {
	Pos  Position
	Line string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// List holds the actions of all configuration sources in read order.
type List struct {
	actions []Action
	rng     *Range
	errs    []*LineError
}

func (l *List) Add(a Action) {
	if a.Kind == KindRange {
		r := a.Range
		l.rng = &r
		return
	}
	l.actions = append(l.actions, a)
}

// Read parses every line of r, logging and skipping malformed ones.
// source names r in positions and diagnostics.
func (l *List) Read(r io.Reader, source string) error {
	s := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	s.Buffer(buf, 1024*1024)
	n := 0
	for s.Scan() {
		n++
		pos := Position{File: source, Line: n}
		a, ok, err := ParseLine(s.Text())
		if err != nil {
			le := &LineError{Pos: pos, Line: s.Text(), Err: err}
			logger.Warn("%v; line skipped", le)
			l.errs = append(l.errs, le)
			continue
		}
		if !ok {
			continue
		}
		a.Pos = pos
		l.Add(a)
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}
	return nil
}

func (l *List) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return l.Read(f, path)
}

// Actions returns all non-range actions in read order.
func (l *List) Actions() []Action { return l.actions }

// Range returns the last range restriction read, if any.
func (l *List) Range() (Range, bool) {
	if l.rng == nil {
		return Range{}, false
	}
	return *l.rng, true
}

// Errors returns the lines dropped while reading.
func (l *List) Errors() []*LineError { return l.errs }

// Explicit returns user and group creations that request an id.
func (l *List) Explicit() []Action {
	return l.filter(func(a Action) bool {
		return (a.Kind == KindUser || a.Kind == KindGroup) && a.ID.Set
	})
}

// Automatic returns user and group creations that leave the id unset.
func (l *List) Automatic() []Action {
	return l.filter(func(a Action) bool {
		return (a.Kind == KindUser || a.Kind == KindGroup) && !a.ID.Set
	})
}

func (l *List) Memberships() []Action {
	return l.filter(func(a Action) bool { return a.Kind == KindMembership })
}

func (l *List) filter(keep func(Action) bool) []Action {
	var out []Action
	for _, a := range l.actions {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
