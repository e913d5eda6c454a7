package usermgr

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

type GroupFile struct {
	pf parsedFile[GroupEntry]
}

// ParseGroup reads a group(5) database.
func ParseGroup(r io.Reader) (*GroupFile, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var pf parsedFile[GroupEntry]
	for n, line := range lines {
		if isSkippable(line) {
			pf.appendRaw(line)
			continue
		}
		parts := parseColonLine(line)
		if len(parts) < 4 {
			pf.appendRaw(line)
			continue
		}
		gid, err := atoi(parts[2], fmt.Sprintf("group line %d gid", n+1))
		if err != nil {
			return nil, err
		}
		members := []string{}
		for _, m := range strings.Split(parts[3], ",") {
			if m != "" {
				members = append(members, m)
			}
		}
		pf.appendEntry(GroupEntry{Name: parts[0], Passwd: parts[1], GID: gid, Members: members})
	}
	return &GroupFile{pf: pf}, nil
}

func (f *GroupFile) Find(name string) *GroupEntry {
	for _, e := range f.pf.entries() {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (f *GroupFile) FindByGID(gid int) *GroupEntry {
	for _, e := range f.pf.entries() {
		if e.GID == gid {
			return e
		}
	}
	return nil
}

// Memberships returns the names of the groups listing user as a secondary member.
func (f *GroupFile) Memberships(user string) []string {
	var out []string
	for _, e := range f.pf.entries() {
		if e.HasMember(user) {
			out = append(out, e.Name)
		}
	}
	return out
}

func (f *GroupFile) Bytes() []byte {
	return f.pf.bytes(func(e *GroupEntry) string { return e.Line() })
}

// Line renders the entry in group(5) format without a trailing newline.
func (e GroupEntry) Line() string {
	return e.Name + ":" + e.Passwd + ":" + strconv.Itoa(e.GID) + ":" + strings.Join(e.Members, ",")
}
