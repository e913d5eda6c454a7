package hostfs

// Package hostfs resolves account database paths under a target root
// directory and updates them safely.
//
// With Root = "/" the live system is modified; any other root treats the
// directory as an offline image:
//   <root>/etc/passwd
//   <root>/etc/group
//   <root>/etc/shadow
