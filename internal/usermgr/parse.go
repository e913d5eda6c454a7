package usermgr

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type rawLine[T any] struct {
	raw   string
	entry *T
}

type parsedFile[T any] struct {
	lines []rawLine[T]
}

func (pf *parsedFile[T]) entries() []*T {
	out := make([]*T, 0, len(pf.lines))
	for i := range pf.lines {
		if pf.lines[i].entry != nil {
			out = append(out, pf.lines[i].entry)
		}
	}
	return out
}

func (pf *parsedFile[T]) appendEntry(e T) *T {
	pf.lines = append(pf.lines, rawLine[T]{entry: &e})
	return pf.lines[len(pf.lines)-1].entry
}

func (pf *parsedFile[T]) appendRaw(line string) {
	pf.lines = append(pf.lines, rawLine[T]{raw: line})
}

// bytes renders every line in order, formatting entries with format.
func (pf *parsedFile[T]) bytes(format func(*T) string) []byte {
	var buf strings.Builder
	for _, ln := range pf.lines {
		if ln.entry != nil {
			buf.WriteString(format(ln.entry))
		} else {
			buf.WriteString(ln.raw)
		}
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}

func isSkippable(line string) bool {
	trim := strings.TrimSpace(line)
	return trim == "" || strings.HasPrefix(trim, "#")
}

func parseColonLine(line string) []string {
	// Keep trailing empty fields.
	return strings.Split(line, ":")
}

func readLines(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	s.Buffer(buf, 1024*1024)
	var lines []string
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// atoi parses a numeric id field. ctx names the field in the error.
func atoi(field, ctx string) (int, error) {
	n, err := strconv.ParseUint(field, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q in %s: %w", field, ctx, err)
	}
	return int(n), nil
}
