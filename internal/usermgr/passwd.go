package usermgr

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

type PasswdFile struct {
	pf parsedFile[PasswdEntry]
}

// ParsePasswd reads a passwd(5) database. Lines with fewer than seven
// fields are kept verbatim; a non-numeric uid or gid is an error.
func ParsePasswd(r io.Reader) (*PasswdFile, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var pf parsedFile[PasswdEntry]
	for n, line := range lines {
		if isSkippable(line) {
			pf.appendRaw(line)
			continue
		}
		parts := parseColonLine(line)
		if len(parts) < 7 {
			// Preserve unknown line as-is.
			pf.appendRaw(line)
			continue
		}
		uid, err := atoi(parts[2], fmt.Sprintf("passwd line %d uid", n+1))
		if err != nil {
			return nil, err
		}
		gid, err := atoi(parts[3], fmt.Sprintf("passwd line %d gid", n+1))
		if err != nil {
			return nil, err
		}
		pf.appendEntry(PasswdEntry{
			Name:   parts[0],
			Passwd: parts[1],
			UID:    uid,
			GID:    gid,
			Gecos:  parts[4],
			Home:   parts[5],
			Shell:  parts[6],
		})
	}

	return &PasswdFile{pf: pf}, nil
}

func (f *PasswdFile) Find(name string) *PasswdEntry {
	for _, e := range f.pf.entries() {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (f *PasswdFile) FindByUID(uid int) *PasswdEntry {
	for _, e := range f.pf.entries() {
		if e.UID == uid {
			return e
		}
	}
	return nil
}

func (f *PasswdFile) Bytes() []byte {
	return f.pf.bytes(func(e *PasswdEntry) string { return e.Line() })
}

// Line renders the entry in passwd(5) format without a trailing newline.
func (e PasswdEntry) Line() string {
	return strings.Join([]string{
		e.Name, e.Passwd, strconv.Itoa(e.UID), strconv.Itoa(e.GID), e.Gecos, e.Home, e.Shell,
	}, ":")
}
