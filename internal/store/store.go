// Package store implements the four-file task store of spec.md §4.5:
// pending, completed, undo, and backlog, with advisory locking, commit,
// revert, and garbage collection.
package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/taskwarrior-go/task/internal/backlog"
	"github.com/taskwarrior-go/task/internal/lock"
	"github.com/taskwarrior-go/task/internal/task"
	"github.com/taskwarrior-go/task/internal/taskerr"
)

const (
	pendingFile   = "pending.data"
	completedFile = "completed.data"
	undoFile      = "undo.data"
	backlogFile   = "backlog.data"
)

// Store holds the in-memory working copy of a task database rooted at a
// data.location directory, mirroring the on-disk files until Commit.
type Store struct {
	dir string

	pending   []*task.Task
	completed []*task.Task

	dirtyPending   bool
	dirtyCompleted bool

	undo     []Transaction
	pendingUndo []Transaction

	locking bool
	mlock   *lock.MultiLock

	clock func() time.Time
}

// Open loads the four files from dir into memory. Missing files are
// treated as empty (a fresh store).
func Open(dir string, locking bool, clock func() time.Time) (*Store, error) {
	s := &Store{dir: dir, locking: locking, clock: clock}
	if clock == nil {
		s.clock = time.Now
	}

	if locking {
		m, err := lock.AcquireAll(s.paths())
		if err != nil {
			return nil, err
		}
		s.mlock = m
	}

	var err error
	s.pending, err = readRecords(filepath.Join(dir, pendingFile))
	if err != nil {
		return nil, err
	}
	s.completed, err = readRecords(filepath.Join(dir, completedFile))
	if err != nil {
		return nil, err
	}
	s.undo, err = readUndoLog(filepath.Join(dir, undoFile))
	if err != nil {
		return nil, err
	}
	assignIDs(s.pending)
	return s, nil
}

func (s *Store) paths() []string {
	return []string{
		filepath.Join(s.dir, pendingFile),
		filepath.Join(s.dir, completedFile),
		filepath.Join(s.dir, undoFile),
		filepath.Join(s.dir, backlogFile),
	}
}

// Close releases any held locks. Safe to call on an unlocked store.
func (s *Store) Close() {
	if s.mlock != nil {
		s.mlock.Release()
		s.mlock = nil
	}
}

func assignIDs(tasks []*task.Task) {
	for i, t := range tasks {
		t.SetId(i + 1)
	}
}

func readRecords(path string) ([]*task.Task, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	defer f.Close()

	var out []*task.Task
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		t, err := task.DecodeV4(line)
		if err != nil {
			return nil, fmt.Errorf("store: decoding %s: %w", path, err)
		}
		out = append(out, t)
	}
	return out, scanner.Err()
}

func writeRecords(path string, tasks []*task.Task) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: writing %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, t := range tasks {
		if _, err := w.WriteString(task.EncodeV4(t) + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// byUUID finds a task by uuid across both pending and completed slices.
func (s *Store) byUUID(uuid string) (*task.Task, bool) {
	for _, t := range s.pending {
		if t.UUID() == uuid {
			return t, true
		}
	}
	for _, t := range s.completed {
		if t.UUID() == uuid {
			return t, true
		}
	}
	return nil, false
}

// GetByUUID copies out the task with the given uuid.
func (s *Store) GetByUUID(uuid string) (*task.Task, error) {
	t, ok := s.byUUID(uuid)
	if !ok {
		return nil, fmt.Errorf("store: uuid %s: %w", uuid, taskerr.ErrNotFound)
	}
	return t.Clone(), nil
}

// GetByID copies out the pending-file task at the given 1-based id.
func (s *Store) GetByID(id int) (*task.Task, error) {
	for _, t := range s.pending {
		if t.Id() == id {
			return t.Clone(), nil
		}
	}
	return nil, fmt.Errorf("store: id %d: %w", id, taskerr.ErrNotFound)
}

// All returns every task currently held (pending and completed).
func (s *Store) All() []*task.Task {
	out := make([]*task.Task, 0, len(s.pending)+len(s.completed))
	out = append(out, s.pending...)
	out = append(out, s.completed...)
	return out
}

// Add validates and records a new task, per spec.md §4.5 add().
func (s *Store) Add(t *task.Task) error {
	if _, exists := s.byUUID(t.UUID()); exists {
		return fmt.Errorf("store: uuid %s already present: %w", t.UUID(), taskerr.ErrConflict)
	}
	deps := func(u string) []string {
		if d, ok := s.byUUID(u); ok {
			return d.Depends()
		}
		return nil
	}
	if _, err := task.Validate(t, deps); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	s.place(t)
	s.pendingUndo = append(s.pendingUndo, Transaction{Time: s.clock(), New: t.Clone()})
	return nil
}

// Modify overwrites the stored task matching t's uuid in place, refusing
// a no-op change and stamping `modified`.
func (s *Store) Modify(t *task.Task) error {
	old, ok := s.byUUID(t.UUID())
	if !ok {
		return fmt.Errorf("store: uuid %s: %w", t.UUID(), taskerr.ErrNotFound)
	}
	oldCopy := old.Clone()
	if task.EncodeV4(oldCopy) == task.EncodeV4(t) {
		return fmt.Errorf("store: no change to %s", t.UUID())
	}
	t.Set("modified", fmt.Sprintf("%d", s.clock().Unix()))
	s.remove(old.UUID())
	s.place(t)
	s.pendingUndo = append(s.pendingUndo, Transaction{Time: s.clock(), Old: oldCopy, New: t.Clone()})
	return nil
}

// place inserts t into pending or completed according to its status,
// marking the destination file dirty.
func (s *Store) place(t *task.Task) {
	if t.InPendingFile() {
		s.pending = append(s.pending, t)
		s.dirtyPending = true
	} else {
		s.completed = append(s.completed, t)
		s.dirtyCompleted = true
	}
}

// ReplaceUndoLog overwrites the in-memory and on-disk undo log wholesale,
// used by internal/merge to install the reconciled transaction set
// (spec.md §4.8 step 6). Callers must still Commit to persist
// pending/completed changes applied alongside it.
func (s *Store) ReplaceUndoLog(txns []Transaction) error {
	s.undo = txns
	s.pendingUndo = nil
	return writeUndoLog(filepath.Join(s.dir, undoFile), txns)
}

// UpsertForMerge replaces or inserts t by uuid without validation or undo
// bookkeeping, used by internal/merge to apply reconciled remote
// transactions directly to pending/completed (spec.md §4.8 step 5).
func (s *Store) UpsertForMerge(t *task.Task) {
	s.remove(t.UUID())
	s.place(t)
}

// UndoLog returns the committed transaction history, used by
// internal/merge to compare this store's history against a remote one.
func (s *Store) UndoLog() []Transaction {
	out := make([]Transaction, len(s.undo))
	copy(out, s.undo)
	return out
}

func (s *Store) remove(uuid string) {
	for i, t := range s.pending {
		if t.UUID() == uuid {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			s.dirtyPending = true
			return
		}
	}
	for i, t := range s.completed {
		if t.UUID() == uuid {
			s.completed = append(s.completed[:i], s.completed[i+1:]...)
			s.dirtyCompleted = true
			return
		}
	}
}

// Commit flushes dirty files, appends the undo log and backlog entries
// accumulated since the last commit, masking termination signals for the
// duration (spec.md §4.5, §5).
func (s *Store) Commit() error {
	unmask := maskSignals()
	defer unmask()

	if s.dirtyPending {
		if err := writeRecords(filepath.Join(s.dir, pendingFile), s.pending); err != nil {
			return err
		}
		assignIDs(s.pending)
		s.dirtyPending = false
	}
	if s.dirtyCompleted {
		if err := writeRecords(filepath.Join(s.dir, completedFile), s.completed); err != nil {
			return err
		}
		s.dirtyCompleted = false
	}
	if len(s.pendingUndo) > 0 {
		if err := appendUndoLog(filepath.Join(s.dir, undoFile), s.pendingUndo); err != nil {
			return err
		}
		s.undo = append(s.undo, s.pendingUndo...)
	}
	bf, err := os.OpenFile(filepath.Join(s.dir, backlogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("store: opening backlog: %w", err)
	}
	defer bf.Close()
	for _, txn := range s.pendingUndo {
		if err := backlog.Append(bf, txn.New); err != nil {
			return err
		}
	}
	s.pendingUndo = nil
	return nil
}

// LastUndo returns the transaction Revert would act on, without popping
// it, so callers can show a confirmation diff first.
func (s *Store) LastUndo() (Transaction, bool) {
	if len(s.undo) == 0 {
		return Transaction{}, false
	}
	return s.undo[len(s.undo)-1], true
}

// Revert pops the last undo transaction and restores the prior record
// state across pending/completed/backlog, per spec.md §4.5 revert(): the
// undo and backlog files are rewritten immediately so a popped
// transaction cannot reappear on a later invocation (each invocation is
// a fresh process; Commit's append-only write never touches either
// file when Revert leaves pendingUndo empty). Callers still must call
// Commit afterward to persist the restored pending/completed records.
func (s *Store) Revert() (*Transaction, error) {
	if len(s.undo) == 0 {
		return nil, fmt.Errorf("store: undo log is empty: %w", taskerr.ErrNotFound)
	}
	last := s.undo[len(s.undo)-1]
	remaining := s.undo[:len(s.undo)-1]

	if err := writeUndoLog(filepath.Join(s.dir, undoFile), remaining); err != nil {
		return nil, err
	}
	if err := backlog.PopLast(filepath.Join(s.dir, backlogFile)); err != nil {
		return nil, err
	}
	s.undo = remaining

	s.remove(last.New.UUID())
	if last.Old != nil {
		s.place(last.Old)
	}
	return &last, nil
}

// GC rewrites pending and completed per spec.md §4.5 gc(): tasks living
// in the wrong file by status are relocated, expired waits are cleared,
// and pending ids are renumbered from load order.
func (s *Store) GC(now time.Time) {
	var stillPending []*task.Task
	for _, t := range s.pending {
		if t.Status() == task.StatusWaiting {
			if w := t.Get("wait"); w != "" {
				if epoch, ok := parseEpoch(w); ok && epoch <= now.Unix() {
					t.Remove("wait")
					t.Set("status", string(task.StatusPending))
				}
			}
		}
		switch t.Status() {
		case task.StatusCompleted, task.StatusDeleted:
			s.completed = append(s.completed, t)
			s.dirtyCompleted = true
		default:
			stillPending = append(stillPending, t)
		}
	}
	s.pending = stillPending

	var stillCompleted []*task.Task
	for _, t := range s.completed {
		switch t.Status() {
		case task.StatusPending, task.StatusRecurring:
			s.pending = append(s.pending, t)
			s.dirtyPending = true
		default:
			stillCompleted = append(stillCompleted, t)
		}
	}
	s.completed = stillCompleted

	sort.SliceStable(s.pending, func(i, j int) bool { return s.pending[i].Id() < s.pending[j].Id() })
	assignIDs(s.pending)
	s.dirtyPending = true
}

func parseEpoch(s string) (int64, bool) {
	epoch, err := strconv.ParseInt(s, 10, 64)
	return epoch, err == nil
}
