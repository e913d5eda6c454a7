package rules

// Package rules turns sysusers-style configuration lines into Actions.
//
// Each non-comment line has the form
//
//	TYPE NAME ID COMMENT HOME SHELL
//
// where TYPE is one of u (create user), g (create group), m (add
// membership) or r (restrict the id range). Fields are separated by
// whitespace or enclosed in double quotes; a bare "-" leaves a field unset.
