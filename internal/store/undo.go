package store

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/taskwarrior-go/task/internal/task"
)

// Transaction is one four-line undo-log entry (spec.md §4.5, §6): a
// timestamp, an optional prior record (absent for a creation), and the
// new record.
type Transaction struct {
	Time time.Time
	Old  *task.Task
	New  *task.Task
}

func readUndoLog(path string) ([]Transaction, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	defer f.Close()

	var out []Transaction
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var cur Transaction
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "time "):
			epoch, err := strconv.ParseInt(strings.TrimPrefix(line, "time "), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("store: malformed undo time %q: %w", line, err)
			}
			cur = Transaction{Time: time.Unix(epoch, 0).UTC()}
		case strings.HasPrefix(line, "old "):
			t, err := task.DecodeV4(strings.TrimPrefix(line, "old "))
			if err != nil {
				return nil, fmt.Errorf("store: malformed undo old record: %w", err)
			}
			cur.Old = t
		case strings.HasPrefix(line, "new "):
			t, err := task.DecodeV4(strings.TrimPrefix(line, "new "))
			if err != nil {
				return nil, fmt.Errorf("store: malformed undo new record: %w", err)
			}
			cur.New = t
		case line == "---":
			out = append(out, cur)
			cur = Transaction{}
		}
	}
	return out, scanner.Err()
}

// writeUndoLog truncates and rewrites the whole undo file, used when
// merge installs a reconciled transaction set rather than appending.
func writeUndoLog(path string, txns []Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: rewriting %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, txn := range txns {
		fmt.Fprintf(w, "time %d\n", txn.Time.Unix())
		if txn.Old != nil {
			fmt.Fprintf(w, "old %s\n", task.EncodeV4(txn.Old))
		}
		fmt.Fprintf(w, "new %s\n", task.EncodeV4(txn.New))
		w.WriteString("---\n")
	}
	return w.Flush()
}

func appendUndoLog(path string, txns []Transaction) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("store: opening %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, txn := range txns {
		fmt.Fprintf(w, "time %d\n", txn.Time.Unix())
		if txn.Old != nil {
			fmt.Fprintf(w, "old %s\n", task.EncodeV4(txn.Old))
		}
		fmt.Fprintf(w, "new %s\n", task.EncodeV4(txn.New))
		w.WriteString("---\n")
	}
	return w.Flush()
}
