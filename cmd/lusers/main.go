// lusers creates system users and groups from sysusers.d-style rule files.
//
// It runs once at boot or on demand, reconciles the rules against
// <root>/etc/passwd and <root>/etc/group, and writes the result back in a
// single commit.
package main

import (
	"os"

	"github.com/hnrobert/lusers/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("%v", err)
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}
