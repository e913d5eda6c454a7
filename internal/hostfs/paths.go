package hostfs

// Well-known locations, relative to the root.
const (
	EtcPasswdRel = "etc/passwd"
	EtcShadowRel = "etc/shadow"
	EtcGroupRel  = "etc/group"
	LockRel      = "etc/.pwd.lock"
)
