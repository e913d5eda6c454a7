package rules

import (
	"fmt"
	"strconv"
)

type Kind byte

const (
	KindUser       Kind = 'u'
	KindGroup      Kind = 'g'
	KindMembership Kind = 'm'
	KindRange      Kind = 'r'
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "create-user"
	case KindGroup:
		return "create-group"
	case KindMembership:
		return "add-membership"
	case KindRange:
		return "set-range"
	default:
		return fmt.Sprintf("kind(%q)", byte(k))
	}
}

// IDSpec is the parsed id field of a u or g line. For users Pair marks the
// "uid:gid" form, in which case GID is set as well.
type IDSpec struct {
	Set  bool
	ID   int
	Pair bool
	GID  int
}

func (s IDSpec) String() string {
	switch {
	case !s.Set:
		return "-"
	case s.Pair:
		return strconv.Itoa(s.ID) + ":" + strconv.Itoa(s.GID)
	default:
		return strconv.Itoa(s.ID)
	}
}

type Range struct {
	Start int
	End   int
}

// Position locates a line in its configuration source.
type Position struct {
	File string
	Line int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("line %d", p.Line)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Action is one parsed directive. Unset optional fields are empty.
type Action struct {
	Kind Kind
	Name string

	// ID is set for KindUser and KindGroup.
	ID IDSpec
	// Group is the target of a KindMembership action.
	Group string
	// Range is set for KindRange.
	Range Range

	Comment string
	Home    string
	Shell   string

	Pos Position
}

func (a Action) String() string {
	switch a.Kind {
	case KindMembership:
		return fmt.Sprintf("%s %s %s", a.Kind, a.Name, a.Group)
	case KindRange:
		return fmt.Sprintf("%s %d-%d", a.Kind, a.Range.Start, a.Range.End)
	default:
		return fmt.Sprintf("%s %s %s", a.Kind, a.Name, a.ID)
	}
}
