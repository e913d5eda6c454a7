package reconcile

import "github.com/hnrobert/lusers/internal/usermgr"

type Membership struct {
	User  string `yaml:"user"`
	Group string `yaml:"group"`
}

// Drop is an action or configuration line that was not applied.
type Drop struct {
	Pos    string `yaml:"pos"`
	Action string `yaml:"action"`
	Reason string `yaml:"reason"`
}

type Report struct {
	CreatedUsers  []usermgr.PasswdEntry
	CreatedGroups []usermgr.GroupEntry
	Memberships   []Membership
	Dropped       []Drop
}

// Changed reports whether the run modified the store.
func (r *Report) Changed() bool {
	return len(r.CreatedUsers) > 0 || len(r.CreatedGroups) > 0 || len(r.Memberships) > 0
}
