package store

import (
	"os"
	"os/signal"
	"syscall"
)

// maskSignals blocks the termination signals named in spec.md §4.5 for
// the duration of a commit, so a single undo transaction never writes
// partially. The returned func restores default handling.
func maskSignals() func() {
	sigs := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGPIPE, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2}
	ch := make(chan os.Signal, len(sigs))
	signal.Notify(ch, sigs...)
	return func() {
		signal.Stop(ch)
		close(ch)
	}
}
