package usermgr

import (
	"regexp"
	"strings"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_.][A-Za-z0-9_.-]*\$?$`)

const maxNameLen = 32

// ValidName accepts the portable account name set plus a trailing '$'
// for machine accounts.
// Purely numeric names are refused since tools would read them as ids.
func ValidName(name string) bool {
	if len(name) > maxNameLen || name == "." || name == ".." {
		return false
	}
	if strings.Trim(name, "0123456789") == "" {
		return false
	}
	return nameRe.MatchString(name)
}

// ValidField reports whether s can be stored in a colon-separated record.
func ValidField(s string) bool {
	return !strings.ContainsAny(s, ":\n\r")
}
