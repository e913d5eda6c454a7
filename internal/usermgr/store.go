package usermgr

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrDuplicateName = errors.New("duplicate name")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrUserNotFound  = errors.New("user not found")
	ErrGroupNotFound = errors.New("group not found")
)

// Store is the in-memory account and group database for one run.
// Records keep their load order; inserted records are appended.
type Store struct {
	passwd *PasswdFile
	group  *GroupFile

	passwdChanged bool
	groupChanged  bool
}

// Load parses both databases and rejects duplicate names or ids, which
// indicate a corrupted host rather than something a run can repair.
func Load(passwd, group io.Reader) (*Store, error) {
	pw, err := ParsePasswd(passwd)
	if err != nil {
		return nil, fmt.Errorf("load passwd: %w", err)
	}
	gr, err := ParseGroup(group)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}

	names := map[string]bool{}
	ids := map[int]string{}
	for _, e := range pw.pf.entries() {
		if names[e.Name] {
			return nil, fmt.Errorf("load passwd: %w: user %s", ErrDuplicateName, e.Name)
		}
		if other, ok := ids[e.UID]; ok {
			return nil, fmt.Errorf("load passwd: %w: uid %d used by %s and %s", ErrDuplicateID, e.UID, other, e.Name)
		}
		names[e.Name] = true
		ids[e.UID] = e.Name
	}

	names = map[string]bool{}
	ids = map[int]string{}
	for _, e := range gr.pf.entries() {
		if names[e.Name] {
			return nil, fmt.Errorf("load group: %w: group %s", ErrDuplicateName, e.Name)
		}
		if other, ok := ids[e.GID]; ok {
			return nil, fmt.Errorf("load group: %w: gid %d used by %s and %s", ErrDuplicateID, e.GID, other, e.Name)
		}
		names[e.Name] = true
		ids[e.GID] = e.Name
	}

	return &Store{passwd: pw, group: gr}, nil
}

func (s *Store) Users() []*PasswdEntry { return s.passwd.pf.entries() }

func (s *Store) Groups() []*GroupEntry { return s.group.pf.entries() }

func (s *Store) FindUser(name string) *PasswdEntry { return s.passwd.Find(name) }

func (s *Store) FindUserByID(uid int) *PasswdEntry { return s.passwd.FindByUID(uid) }

func (s *Store) FindGroup(name string) *GroupEntry { return s.group.Find(name) }

func (s *Store) FindGroupByID(gid int) *GroupEntry { return s.group.FindByGID(gid) }

// PrimaryGIDInUse reports whether any user has gid as its primary group id.
func (s *Store) PrimaryGIDInUse(gid int) bool {
	for _, e := range s.passwd.pf.entries() {
		if e.GID == gid {
			return true
		}
	}
	return false
}

// InsertUser appends a new user. Callers check existence first; a
// collision here is a programming error and is reported as such.
func (s *Store) InsertUser(e PasswdEntry) (*PasswdEntry, error) {
	if s.FindUser(e.Name) != nil {
		return nil, fmt.Errorf("%w: user %s", ErrDuplicateName, e.Name)
	}
	if other := s.FindUserByID(e.UID); other != nil {
		return nil, fmt.Errorf("%w: uid %d already used by %s", ErrDuplicateID, e.UID, other.Name)
	}
	s.passwdChanged = true
	return s.passwd.pf.appendEntry(e), nil
}

func (s *Store) InsertGroup(e GroupEntry) (*GroupEntry, error) {
	if s.FindGroup(e.Name) != nil {
		return nil, fmt.Errorf("%w: group %s", ErrDuplicateName, e.Name)
	}
	if other := s.FindGroupByID(e.GID); other != nil {
		return nil, fmt.Errorf("%w: gid %d already used by %s", ErrDuplicateID, e.GID, other.Name)
	}
	if e.Members == nil {
		e.Members = []string{}
	}
	s.groupChanged = true
	return s.group.pf.appendEntry(e), nil
}

// IsMember reports primary or secondary membership of user in group.
func (s *Store) IsMember(user, group string) bool {
	u := s.FindUser(user)
	g := s.FindGroup(group)
	if u == nil || g == nil {
		return false
	}
	return u.GID == g.GID || g.HasMember(user)
}

// AddMember records user as a secondary member of group. It returns false
// when the user already belongs to the group, primary or secondary.
func (s *Store) AddMember(group, user string) (bool, error) {
	g := s.FindGroup(group)
	if g == nil {
		return false, fmt.Errorf("%w: %s", ErrGroupNotFound, group)
	}
	if s.FindUser(user) == nil {
		return false, fmt.Errorf("%w: %s", ErrUserNotFound, user)
	}
	if s.IsMember(user, group) {
		return false, nil
	}
	g.Members = append(g.Members, user)
	s.groupChanged = true
	return true, nil
}

// Changed reports which databases differ from what was loaded.
func (s *Store) Changed() (passwd, group bool) {
	return s.passwdChanged, s.groupChanged
}

// Persist writes both databases in full, existing records first and
// inserted ones after, in the order they were added.
func (s *Store) Persist(passwd, group io.Writer) error {
	if _, err := passwd.Write(s.passwd.Bytes()); err != nil {
		return fmt.Errorf("write passwd: %w", err)
	}
	if _, err := group.Write(s.group.Bytes()); err != nil {
		return fmt.Errorf("write group: %w", err)
	}
	return nil
}

// Memberships returns the groups listing user as a secondary member.
func (s *Store) Memberships(user string) []string { return s.group.Memberships(user) }
