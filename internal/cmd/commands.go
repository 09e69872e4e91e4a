package cmd

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/go-cmp/cmp"

	"github.com/taskwarrior-go/task/internal/backlog"
	"github.com/taskwarrior-go/task/internal/date"
	"github.com/taskwarrior-go/task/internal/lex"
	"github.com/taskwarrior-go/task/internal/parser"
	"github.com/taskwarrior-go/task/internal/store"
	"github.com/taskwarrior-go/task/internal/task"
)

func parseDateValue(value string, ws date.Weekstart) (time.Time, error) {
	return date.Parse(value, time.Now(), ws, "")
}

func epochOf(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// applyMods walks the modification tokens (plain words, tags, and
// attribute pairs) and folds them into t, returning the accumulated
// free-text description words separately since callers treat the
// description differently for add/log versus modify.
func (e *env) applyMods(t *task.Task, mods []lex.Token) (words []string, err error) {
	for _, tok := range mods {
		switch tok.Type {
		case lex.TypeTag:
			if strings.HasPrefix(tok.Lexeme, "-") {
				t.RemoveTag(strings.TrimPrefix(tok.Lexeme, "-"))
			} else {
				t.AddTag(strings.TrimPrefix(tok.Lexeme, "+"))
			}
		case lex.TypePair:
			name, value, perr := splitModPair(tok.Lexeme)
			if perr != nil {
				return nil, perr
			}
			if value == "" {
				t.Remove(name)
				continue
			}
			t.Set(name, normalizeAttrValue(name, value, e))
		default:
			words = append(words, tok.Lexeme)
		}
	}
	return words, nil
}

func splitModPair(lexeme string) (name, value string, err error) {
	name, value, ok := strings.Cut(lexeme, ":")
	if !ok {
		return "", "", fmt.Errorf("cmd: malformed attribute %q", lexeme)
	}
	if strings.Contains(value, "\"") {
		if unquoted, uerr := strconv.Unquote(value); uerr == nil {
			value = unquoted
		}
	}
	return name, value, nil
}

// normalizeAttrValue converts a user-typed date/duration string into its
// stored epoch-seconds form for the handful of attributes that are
// always date-valued.
func normalizeAttrValue(name, value string, e *env) string {
	if !dateAttrs[name] {
		return value
	}
	ws := weekstartFrom(e.cfg)
	t, err := parseDateValue(value, ws)
	if err != nil {
		d, derr := date.ParseDuration(value)
		if derr != nil {
			return value
		}
		t = d.AddTo(time.Now())
	}
	return strconv.FormatInt(t.Unix(), 10)
}

var dateAttrs = map[string]bool{
	"due": true, "scheduled": true, "wait": true, "until": true,
	"entry": true, "start": true, "end": true,
}

func (e *env) cmdAdd(result *parser.Result) error {
	t := task.New()
	t.Set("status", string(task.StatusPending))
	t.Set("entry", strconv.FormatInt(time.Now().Unix(), 10))
	words, err := e.applyMods(t, result.Mods)
	if err != nil {
		return err
	}
	t.Set("description", strings.Join(words, " "))
	if result.Command.Name == "log" {
		t.Set("status", string(task.StatusCompleted))
		t.Set("end", strconv.FormatInt(time.Now().Unix(), 10))
	}
	if err := e.store.Add(t); err != nil {
		return err
	}
	if err := e.store.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Created task %d.\n", t.Id())
	return nil
}

func (e *env) cmdModify(result *parser.Result) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("cmd: no matching tasks")
	}
	for _, t := range targets {
		words, err := e.applyMods(t, result.Mods)
		if err != nil {
			return err
		}
		if len(words) > 0 {
			t.Set("description", strings.Join(words, " "))
		}
		if err := e.store.Modify(t); err != nil {
			return err
		}
	}
	if err := e.store.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Modified %d task(s).\n", len(targets))
	return nil
}

func (e *env) cmdDone(result *parser.Result) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	now := strconv.FormatInt(time.Now().Unix(), 10)
	for _, t := range targets {
		if t.Status() != task.StatusPending && t.Status() != task.StatusWaiting {
			continue
		}
		t.Set("status", string(task.StatusCompleted))
		t.Set("end", now)
		if err := e.store.Modify(t); err != nil {
			return err
		}
	}
	if err := e.store.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Completed %d task(s).\n", len(targets))
	return nil
}

func (e *env) cmdDelete(result *parser.Result) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	now := strconv.FormatInt(time.Now().Unix(), 10)
	for _, t := range targets {
		if t.Status() == task.StatusDeleted {
			continue
		}
		t.Set("status", string(task.StatusDeleted))
		t.Set("end", now)
		if err := e.store.Modify(t); err != nil {
			return err
		}
	}
	if err := e.store.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Deleted %d task(s).\n", len(targets))
	return nil
}

func (e *env) cmdStartStop(result *parser.Result, starting bool) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if starting {
			if t.Has("start") {
				continue
			}
			t.Set("start", strconv.FormatInt(time.Now().Unix(), 10))
		} else {
			t.Remove("start")
		}
		if err := e.store.Modify(t); err != nil {
			return err
		}
	}
	return e.store.Commit()
}

func (e *env) cmdAnnotate(result *parser.Result) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	var words []string
	for _, tok := range result.Misc {
		words = append(words, tok.Lexeme)
	}
	note := strings.Join(words, " ")
	for _, t := range targets {
		t.AddAnnotation(time.Now().Unix(), note)
		if err := e.store.Modify(t); err != nil {
			return err
		}
	}
	return e.store.Commit()
}

func (e *env) cmdInfo(result *parser.Result) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("cmd: no matching tasks")
	}
	for _, t := range targets {
		fmt.Fprintf(e.out, "Name %-15s Value\n", "")
		names := make([]string, 0, len(t.Attrs()))
		for k := range t.Attrs() {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(e.out, "%-20s %s\n", n, t.Get(n))
		}
		for _, a := range t.Annotations() {
			fmt.Fprintf(e.out, "%-20s %s\n", "Annotation", a.Description)
		}
		if entry, ok := epochOf(t.Get("entry")); ok {
			fmt.Fprintf(e.out, "%-20s %s\n", "Age", humanize.Time(time.Unix(entry, 0)))
		}
		fmt.Fprintln(e.out)
	}
	return nil
}

func (e *env) cmdList(result *parser.Result) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	var visible []*task.Task
	for _, t := range targets {
		if result.Command.Name != "all" && t.Status() != task.StatusPending &&
			t.Status() != task.StatusWaiting && t.Status() != task.StatusRecurring {
			continue
		}
		visible = append(visible, t)
	}
	visible = e.sortedByUrgency(visible)
	if result.Command.Name == "next" {
		const nextLimit = 25
		if len(visible) > nextLimit {
			visible = visible[:nextLimit]
		}
	}
	renderList(e.out, visible)
	fmt.Fprintf(e.out, "\n%d task(s).\n", len(visible))
	return nil
}

func (e *env) cmdCount(result *parser.Result) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, len(targets))
	return nil
}

func (e *env) cmdProjects(result *parser.Result) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	seen := map[string]int{}
	for _, t := range targets {
		if p := t.Get("project"); p != "" {
			seen[p]++
		}
	}
	projects := make([]string, 0, len(seen))
	for p := range seen {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	for _, p := range projects {
		fmt.Fprintf(e.out, "%-30s %d\n", p, seen[p])
	}
	return nil
}

func (e *env) cmdTags(result *parser.Result) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, t := range targets {
		for _, tg := range t.Tags() {
			seen[tg] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for tg := range seen {
		tags = append(tags, tg)
	}
	sort.Strings(tags)
	for _, tg := range tags {
		fmt.Fprintln(e.out, tg)
	}
	return nil
}

// cmdUndo implements spec.md §4.5 undo(): it shows the change about to
// be reverted as a diff and, when rc.confirmation=on, asks before
// acting — matching the original's "are you sure" prompt on a
// destructive, hard-to-reverse operation.
func (e *env) cmdUndo(result *parser.Result) error {
	last, ok := e.store.LastUndo()
	if !ok {
		return fmt.Errorf("store: undo log is empty")
	}
	fmt.Fprintln(e.out, describeUndo(last))
	if diff := diffTransaction(last); diff != "" {
		fmt.Fprintln(e.out, diff)
	}
	if e.cfg.GetBool("confirmation", false) {
		confirmed, err := e.confirm("Proceed with undo?")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(e.out, "Undo not confirmed.")
			return nil
		}
	}

	txn, err := e.store.Revert()
	if err != nil {
		return err
	}
	if err := e.store.Commit(); err != nil {
		return err
	}
	if txn.Old != nil {
		fmt.Fprintf(e.out, "Restored task %s to its previous state.\n", txn.Old.UUID())
	} else {
		fmt.Fprintf(e.out, "Reverted the addition of task %s.\n", txn.New.UUID())
	}
	return nil
}

func describeUndo(txn store.Transaction) string {
	if txn.Old != nil {
		return fmt.Sprintf("The following task will be restored to its previous state:\n%s", txn.Old.Description())
	}
	return fmt.Sprintf("The following task will have its addition reverted:\n%s", txn.New.Description())
}

// diffTransaction renders the old-vs-new record difference that
// prompted this undo entry, used for the confirmation prompt.
func diffTransaction(txn store.Transaction) string {
	diff := cmp.Diff(txn.Old, txn.New, cmp.AllowUnexported(task.Task{}))
	if diff == "" {
		return ""
	}
	return fmt.Sprintf("--- before\n+++ after\n%s", diff)
}

// confirm prints a yes/no prompt and reads a line of response from
// e.in, treating anything but an explicit "y"/"yes" as a decline.
func (e *env) confirm(prompt string) (bool, error) {
	fmt.Fprintf(e.out, "%s (yes/no) ", prompt)
	sc := bufio.NewScanner(e.in)
	if !sc.Scan() {
		return false, sc.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes", nil
}

func (e *env) cmdExport(result *parser.Result) error {
	targets, err := e.matching(result)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, "[")
	for i, t := range targets {
		line, err := backlog.Encode(t)
		if err != nil {
			return err
		}
		if i < len(targets)-1 {
			line += ","
		}
		fmt.Fprintln(e.out, line)
	}
	fmt.Fprintln(e.out, "]")
	return nil
}
