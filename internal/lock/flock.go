package lock

import (
	"fmt"

	"github.com/gofrs/flock"
)

// FlockAcquire opens path (creating it if absent) and acquires an
// exclusive advisory lock, blocking a second store invocation at file
// open per spec.md §5. Returns a release function that unlocks and
// closes the file.
func FlockAcquire(path string) (func(), error) {
	return flockAcquire(path)
}

func flockAcquire(path string) (func(), error) {
	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring flock on %s: %w", path, err)
	}
	cleanup := func() {
		_ = fl.Unlock()
	}
	return cleanup, nil
}
