package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/taskwarrior-go/task/internal/backlog"
	"github.com/taskwarrior-go/task/internal/merge"
	"github.com/taskwarrior-go/task/internal/parser"
	"github.com/taskwarrior-go/task/internal/store"
	"github.com/taskwarrior-go/task/internal/task"
)

func (e *env) cmdDenotate(result *parser.Result) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	var needle string
	for _, tok := range result.Misc {
		if needle != "" {
			needle += " "
		}
		needle += tok.Lexeme
	}
	for _, t := range targets {
		original := t.Annotations()
		var kept []task.Annotation
		removed := false
		for _, a := range original {
			if !removed && a.Description == needle {
				removed = true
				continue
			}
			kept = append(kept, a)
		}
		if !removed {
			continue
		}
		for _, a := range original {
			t.Remove(fmt.Sprintf("annotation_%d", a.Entry))
		}
		for _, a := range kept {
			t.AddAnnotation(a.Entry, a.Description)
		}
		if err := e.store.Modify(t); err != nil {
			return err
		}
	}
	return e.store.Commit()
}

// cmdMerge implements spec.md §4.8: reconcile this store's undo history
// with a remote data directory named by the command's first
// miscellaneous argument, then apply and persist the result.
func (e *env) cmdMerge(result *parser.Result) error {
	if len(result.Misc) == 0 {
		return fmt.Errorf("cmd: merge requires a remote data directory")
	}
	remoteDir := result.Misc[0].Lexeme
	remote, err := store.Open(remoteDir, false, time.Now)
	if err != nil {
		return err
	}
	defer remote.Close()

	outcome := merge.Merge(e.store.UndoLog(), remote.UndoLog())
	if outcome.UpToDate {
		fmt.Fprintln(e.out, "Already up to date.")
		return nil
	}
	merge.Apply(outcome, e.store)
	if err := e.store.ReplaceUndoLog(outcome.Merged); err != nil {
		return err
	}
	if err := e.store.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Merged %d remote transaction(s).\n", len(outcome.ToApply))
	return nil
}

// cmdImport loads a JSONL backlog file named by the command's first
// miscellaneous argument and adds every entry as a new task.
func (e *env) cmdImport(result *parser.Result) error {
	if len(result.Misc) == 0 {
		return fmt.Errorf("cmd: import requires a file path")
	}
	f, err := os.Open(result.Misc[0].Lexeme)
	if err != nil {
		return fmt.Errorf("cmd: %w", err)
	}
	defer f.Close()

	entries, err := backlog.ReadAll(f)
	if err != nil {
		return err
	}
	count := 0
	for _, entry := range entries {
		attrs := make(map[string]string, len(entry))
		for k, v := range entry {
			if s, ok := v.(string); ok {
				attrs[k] = s
			}
		}
		t := task.FromAttrs(attrs)
		if t.UUID() == "" {
			continue
		}
		if err := e.store.Add(t); err != nil {
			continue
		}
		count++
	}
	if err := e.store.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Imported %d task(s).\n", count)
	return nil
}

func (e *env) cmdCalendar() error {
	now := time.Now()
	fmt.Fprintf(e.out, "%s %d\n", now.Month(), now.Year())
	fmt.Fprintln(e.out, "Su Mo Tu We Th Fr Sa")
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	pad := int(first.Weekday())
	for i := 0; i < pad; i++ {
		fmt.Fprint(e.out, "   ")
	}
	days := daysInMonth(now.Year(), now.Month())
	for d := 1; d <= days; d++ {
		fmt.Fprintf(e.out, "%2d ", d)
		if (pad+d)%7 == 0 {
			fmt.Fprintln(e.out)
		}
	}
	fmt.Fprintln(e.out)
	return nil
}

func daysInMonth(year int, month time.Month) int {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	lastOfThis := firstOfNext.AddDate(0, 0, -1)
	return lastOfThis.Day()
}
