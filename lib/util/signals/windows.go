//go:build windows

package signals

import (
	"os"
)

// Windows has no SIGHUP; reload handlers only run on explicit triggers.
var notifySignals = []os.Signal{os.Interrupt}

func kindOf(sig os.Signal) kind {
	if sig == os.Interrupt {
		return kindInterrupt
	}
	return kindUnknown
}
