// Package lock provides whole-file advisory locking for the task store's
// four on-disk files, acquired in a fixed order and released in reverse
// (spec.md §5 "Sharing").
package lock

import "fmt"

// StoreFiles is the fixed lock acquisition order: pending, completed,
// undo, backlog. Release happens in the reverse order.
var StoreFiles = []string{"pending", "completed", "undo", "backlog"}

// MultiLock holds an ordered set of whole-file advisory locks across the
// store's files. Release always unwinds in reverse acquisition order,
// matching spec.md §5.
type MultiLock struct {
	releasers []func()
}

// AcquireAll locks each path in paths, in order, releasing everything
// acquired so far if any lock fails partway through.
func AcquireAll(paths []string) (*MultiLock, error) {
	m := &MultiLock{}
	for _, p := range paths {
		release, err := FlockAcquire(p)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("lock: acquiring %s: %w", p, err)
		}
		m.releasers = append(m.releasers, release)
	}
	return m, nil
}

// Release unlocks every held file in reverse order of acquisition.
func (m *MultiLock) Release() {
	for i := len(m.releasers) - 1; i >= 0; i-- {
		m.releasers[i]()
	}
	m.releasers = nil
}
