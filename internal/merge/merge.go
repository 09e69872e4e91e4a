// Package merge implements the three-way undo-log reconciliation of
// spec.md §4.8: align two divergent undo logs at their common prefix,
// resolve per-uuid conflicts by timestamp, and produce the rewritten
// transaction set.
package merge

import (
	"sort"

	"github.com/taskwarrior-go/task/internal/store"
	"github.com/taskwarrior-go/task/internal/task"
)

// Result is the outcome of merging local against remote.
type Result struct {
	// Merged is the full rewritten undo log: shared prefix followed by
	// the reconciled divergent transactions, sorted by timestamp.
	Merged []store.Transaction
	// ToApply are the remote transactions that must be applied to
	// pending/completed locally, keyed by uuid (last write wins within
	// this set after conflict resolution).
	ToApply []store.Transaction
	// UpToDate is true when neither side diverged — autopush should be
	// skipped (spec.md §4.8 step 7).
	UpToDate bool
}

// Merge reconciles local transaction log L against remote log R.
func Merge(local, remote []store.Transaction) Result {
	shared := commonPrefix(local, remote)
	localDiverged := local[shared:]
	remoteDiverged := remote[shared:]

	if len(localDiverged) == 0 && len(remoteDiverged) == 0 {
		return Result{Merged: local, UpToDate: true}
	}

	localNew := newUUIDs(localDiverged)
	remoteNew := newUUIDs(remoteDiverged)

	// UUIDs new on the left are skipped on the right: drop any
	// remote-diverged transaction whose uuid was freshly created locally.
	var remoteKept []store.Transaction
	for _, txn := range remoteDiverged {
		if localNew[txn.New.UUID()] {
			continue
		}
		remoteKept = append(remoteKept, txn)
	}

	// UUIDs new on the right are added locally outright.
	var toApply []store.Transaction
	for _, txn := range remoteKept {
		if remoteNew[txn.New.UUID()] {
			toApply = append(toApply, txn)
		}
	}

	resolved, history := resolveConflicts(localDiverged, remoteKept)
	toApply = append(toApply, resolved...)
	toApply = dedupByUUID(toApply)

	merged := append(append([]store.Transaction{}, local[:shared]...), localDiverged...)
	merged = append(merged, history...)
	merged = append(merged, toApply...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Time.Before(merged[j].Time) })

	return Result{Merged: merged, ToApply: toApply, UpToDate: false}
}

func commonPrefix(local, remote []store.Transaction) int {
	n := len(local)
	if len(remote) < n {
		n = len(remote)
	}
	i := 0
	for ; i < n; i++ {
		if !sameTransaction(local[i], remote[i]) {
			break
		}
	}
	return i
}

func sameTransaction(a, b store.Transaction) bool {
	if !a.Time.Equal(b.Time) {
		return false
	}
	if a.New.UUID() != b.New.UUID() {
		return false
	}
	return task.EncodeV4(a.New) == task.EncodeV4(b.New)
}

func newUUIDs(txns []store.Transaction) map[string]bool {
	out := map[string]bool{}
	for _, txn := range txns {
		if txn.Old == nil {
			out[txn.New.UUID()] = true
		}
	}
	return out
}

// resolveConflicts walks left-mods newest-first per uuid, deciding which
// of the local/remote mods on that uuid is applied and which are folded
// into undo history only (spec.md §4.8 step 4).
func resolveConflicts(localDiverged, remoteDiverged []store.Transaction) (applied, history []store.Transaction) {
	remoteByUUID := map[string][]store.Transaction{}
	for _, txn := range remoteDiverged {
		u := txn.New.UUID()
		remoteByUUID[u] = append(remoteByUUID[u], txn)
	}

	localByUUID := map[string][]store.Transaction{}
	var order []string
	for _, txn := range localDiverged {
		u := txn.New.UUID()
		if _, seen := localByUUID[u]; !seen {
			order = append(order, u)
		}
		localByUUID[u] = append(localByUUID[u], txn)
	}

	for _, uuid := range order {
		lmods := localByUUID[uuid]
		rmods := remoteByUUID[uuid]
		if len(rmods) == 0 {
			continue
		}
		// Walk newest-first.
		sort.SliceStable(lmods, func(i, j int) bool { return lmods[i].Time.After(lmods[j].Time) })
		sort.SliceStable(rmods, func(i, j int) bool { return rmods[i].Time.Before(rmods[j].Time) })

		newestLocal := lmods[0]
		var winner *store.Transaction
		for i := range rmods {
			if rmods[i].Time.After(newestLocal.Time) {
				r := rmods[i]
				r.Old = newestLocal.New.Clone()
				winner = &r
			} else {
				history = append(history, rmods[i])
			}
		}
		if winner != nil {
			applied = append(applied, *winner)
		}
	}
	return applied, history
}

// Apply pushes the reconciled remote transactions into s's in-memory
// pending/completed view; the caller still calls s.Commit() to persist
// and append undo/backlog entries.
func Apply(result Result, s *store.Store) {
	for _, txn := range result.ToApply {
		s.UpsertForMerge(txn.New)
	}
}

func dedupByUUID(txns []store.Transaction) []store.Transaction {
	last := map[string]int{}
	for i, txn := range txns {
		last[txn.New.UUID()] = i
	}
	var out []store.Transaction
	for i, txn := range txns {
		if last[txn.New.UUID()] == i {
			out = append(out, txn)
		}
	}
	return out
}
