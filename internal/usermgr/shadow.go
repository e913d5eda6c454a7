package usermgr

import (
	"io"
	"strings"
)

type ShadowFile struct {
	pf parsedFile[ShadowEntry]
}

// ParseShadow reads a shadow(5) database. Short lines are padded to nine
// fields.
func ParseShadow(r io.Reader) (*ShadowFile, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var pf parsedFile[ShadowEntry]
	for _, line := range lines {
		if isSkippable(line) {
			pf.appendRaw(line)
			continue
		}

		parts := parseColonLine(line)
		if len(parts) < 2 {
			pf.appendRaw(line)
			continue
		}

		for len(parts) < 9 {
			parts = append(parts, "")
		}

		pf.appendEntry(ShadowEntry{
			Name:       parts[0],
			Hash:       parts[1],
			LastChange: parts[2],
			Min:        parts[3],
			Max:        parts[4],
			Warn:       parts[5],
			Inactive:   parts[6],
			Expire:     parts[7],
			Reserved:   parts[8],
		})
	}

	return &ShadowFile{pf: pf}, nil
}

func (f *ShadowFile) Find(name string) *ShadowEntry {
	for _, e := range f.pf.entries() {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Line renders the entry in shadow(5) format without a trailing newline.
func (e ShadowEntry) Line() string {
	return strings.Join([]string{
		e.Name, e.Hash, e.LastChange, e.Min, e.Max, e.Warn, e.Inactive, e.Expire, e.Reserved,
	}, ":")
}
