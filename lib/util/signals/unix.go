//go:build !windows

package signals

import (
	"os"
	"syscall"
)

var notifySignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}

func kindOf(sig os.Signal) kind {
	switch sig {
	case syscall.SIGHUP:
		return kindReload
	case syscall.SIGINT, syscall.SIGTERM:
		return kindInterrupt
	default:
		return kindUnknown
	}
}
