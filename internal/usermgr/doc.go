package usermgr

// Package usermgr reads and writes the colon-separated account databases
// (passwd, group, shadow) and holds them in memory as a Store.
//
// Parsing keeps comments, blank lines and lines it does not understand
// verbatim, so a rewritten file differs from the original only in the
// records that were added or changed.
