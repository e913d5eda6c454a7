// Package audit reports the provisioning state of every account without
// changing anything.
package audit

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/GehirnInc/crypt"
	_ "github.com/GehirnInc/crypt/md5_crypt"
	_ "github.com/GehirnInc/crypt/sha256_crypt"
	_ "github.com/GehirnInc/crypt/sha512_crypt"

	"github.com/hnrobert/lusers/internal/hostfs"
	"github.com/hnrobert/lusers/internal/usermgr"
)

type PasswordState string

const (
	PasswordLocked      PasswordState = "locked"
	PasswordEmpty       PasswordState = "empty"
	PasswordHashed      PasswordState = "hashed"
	PasswordUnsupported PasswordState = "unknown-hash"
	PasswordNoShadow    PasswordState = "no-shadow"
)

// ClassifyHash maps a shadow hash field to a PasswordState.
func ClassifyHash(hash string) PasswordState {
	switch {
	case hash == "":
		return PasswordEmpty
	case strings.HasPrefix(hash, "!") || strings.HasPrefix(hash, "*"):
		return PasswordLocked
	case crypt.IsHashSupported(hash):
		return PasswordHashed
	default:
		// Ubuntu commonly uses yescrypt ($y$), which crypt cannot verify.
		return PasswordUnsupported
	}
}

type Account struct {
	Name         string
	UID          int
	GID          int
	PrimaryGroup string
	Groups       []string
	Password     PasswordState
}

// Collect reads the databases under fs and describes every user.
func Collect(fs hostfs.FS) ([]Account, error) {
	read := func(rel string) ([]byte, error) {
		p, err := fs.Path(rel)
		if err != nil {
			return nil, err
		}
		return hostfs.ReadOptional(p)
	}
	pw, err := read(hostfs.EtcPasswdRel)
	if err != nil {
		return nil, err
	}
	gr, err := read(hostfs.EtcGroupRel)
	if err != nil {
		return nil, err
	}
	sh, err := read(hostfs.EtcShadowRel)
	if err != nil {
		return nil, err
	}

	store, err := usermgr.Load(bytes.NewReader(pw), bytes.NewReader(gr))
	if err != nil {
		return nil, err
	}
	shadow, err := usermgr.ParseShadow(bytes.NewReader(sh))
	if err != nil {
		return nil, err
	}
	return describe(store, shadow), nil
}

func describe(store *usermgr.Store, shadow *usermgr.ShadowFile) []Account {
	var out []Account
	for _, u := range store.Users() {
		a := Account{
			Name:     u.Name,
			UID:      u.UID,
			GID:      u.GID,
			Groups:   store.Memberships(u.Name),
			Password: PasswordNoShadow,
		}
		if g := store.FindGroupByID(u.GID); g != nil {
			a.PrimaryGroup = g.Name
		}
		if se := shadow.Find(u.Name); se != nil {
			a.Password = ClassifyHash(se.Hash)
		}
		out = append(out, a)
	}
	return out
}

// Write prints accounts as an aligned table.
func Write(w io.Writer, accounts []Account) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tUID\tGID\tGROUP\tSECONDARY\tPASSWORD")
	for _, a := range accounts {
		primary := a.PrimaryGroup
		if primary == "" {
			primary = "?"
		}
		secondary := strings.Join(a.Groups, ",")
		if secondary == "" {
			secondary = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n", a.Name, a.UID, a.GID, primary, secondary, a.Password)
	}
	return tw.Flush()
}
