package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hnrobert/lusers/internal/usermgr"
)

var ErrSyntax = errors.New("syntax error")

// fields after the type: name, id, comment, home, shell.
const maxFields = 5

type field struct {
	value string
	set   bool
}

// splitFields tokenizes s into at most limit fields. A double-quoted span
// is taken verbatim; a bare "-" is an unset field.
func splitFields(s string, limit int) ([]field, error) {
	var out []field
	i := 0
	for len(out) < limit {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] == '"' {
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated quote", ErrSyntax)
			}
			out = append(out, field{value: s[i+1 : i+1+end], set: true})
			i += end + 2
			continue
		}
		j := i
		for j < len(s) && !isSpace(s[j]) {
			j++
		}
		tok := s[i:j]
		out = append(out, field{value: tok, set: tok != "-"})
		i = j
	}
	return out, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

// ParseLine parses one configuration line. ok is false for blank and
// comment lines.
func ParseLine(line string) (a Action, ok bool, err error) {
	line = strings.TrimRight(strings.TrimLeft(line, " \t"), "\r\n")
	if line == "" || line[0] == '#' {
		return Action{}, false, nil
	}

	fields, err := splitFields(line, 1+maxFields)
	if err != nil {
		return Action{}, false, err
	}
	if len(fields) == 0 {
		return Action{}, false, nil
	}
	typ := fields[0].value
	if len(typ) != 1 {
		return Action{}, false, fmt.Errorf("%w: unknown directive %q", ErrSyntax, typ)
	}
	var f [maxFields]field
	copy(f[:], fields[1:])

	a.Kind = Kind(typ[0])
	switch a.Kind {
	case KindUser:
		err = parseUser(&a, f)
	case KindGroup:
		err = parseGroup(&a, f)
	case KindMembership:
		err = parseMembership(&a, f)
	case KindRange:
		err = parseRange(&a, f)
	default:
		return Action{}, false, fmt.Errorf("%w: unknown directive %q", ErrSyntax, typ)
	}
	if err != nil {
		return Action{}, false, err
	}
	return a, true, nil
}

func requireName(f field, what string) (string, error) {
	if !f.set {
		return "", fmt.Errorf("%w: missing %s", ErrSyntax, what)
	}
	if !usermgr.ValidName(f.value) {
		return "", fmt.Errorf("%w: invalid %s %q", ErrSyntax, what, f.value)
	}
	return f.value, nil
}

func parseUser(a *Action, f [maxFields]field) error {
	name, err := requireName(f[0], "user name")
	if err != nil {
		return err
	}
	a.Name = name
	if f[1].set {
		uid, gid, pair := strings.Cut(f[1].value, ":")
		if a.ID.ID, err = parseID(uid); err != nil {
			return err
		}
		a.ID.Set = true
		if pair {
			if a.ID.GID, err = parseID(gid); err != nil {
				return err
			}
			a.ID.Pair = true
		}
	}
	if f[2].set {
		if !usermgr.ValidField(f[2].value) {
			return fmt.Errorf("%w: invalid comment %q", ErrSyntax, f[2].value)
		}
		a.Comment = f[2].value
	}
	if a.Home, err = parsePath(f[3], "home"); err != nil {
		return err
	}
	if a.Shell, err = parsePath(f[4], "shell"); err != nil {
		return err
	}
	return nil
}

func parseGroup(a *Action, f [maxFields]field) error {
	name, err := requireName(f[0], "group name")
	if err != nil {
		return err
	}
	a.Name = name
	if f[1].set {
		if a.ID.ID, err = parseID(f[1].value); err != nil {
			return err
		}
		a.ID.Set = true
	}
	return nil
}

func parseMembership(a *Action, f [maxFields]field) error {
	var err error
	if a.Name, err = requireName(f[0], "user name"); err != nil {
		return err
	}
	if a.Group, err = requireName(f[1], "group name"); err != nil {
		return err
	}
	return nil
}

func parseRange(a *Action, f [maxFields]field) error {
	if f[0].set {
		return fmt.Errorf("%w: range takes no name, got %q", ErrSyntax, f[0].value)
	}
	if !f[1].set {
		return fmt.Errorf("%w: missing range", ErrSyntax)
	}
	lo, hi, found := strings.Cut(f[1].value, "-")
	start, err := parseID(lo)
	if err != nil {
		return err
	}
	end := start
	if found {
		if end, err = parseID(hi); err != nil {
			return err
		}
	}
	if start > end {
		return fmt.Errorf("%w: empty range %q", ErrSyntax, f[1].value)
	}
	a.Range = Range{Start: start, End: end}
	return nil
}

func parsePath(f field, what string) (string, error) {
	if !f.set || f.value == "" {
		return "", nil
	}
	if !strings.HasPrefix(f.value, "/") || !usermgr.ValidField(f.value) {
		return "", fmt.Errorf("%w: invalid %s %q", ErrSyntax, what, f.value)
	}
	return f.value, nil
}

// parseID accepts a decimal id below the reserved (uint32)-1.
func parseID(s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 1<<32-1 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrSyntax, s)
	}
	return int(n), nil
}
