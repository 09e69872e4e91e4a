// Package backlog implements the append-only JSONL backlog of locally
// originated changes (spec.md §4.5, §6), plus a YAML pretty-printer for
// inspecting a segment of it.
package backlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taskwarrior-go/task/internal/date"
	"github.com/taskwarrior-go/task/internal/task"
)

// jsonAnnotation mirrors the wire shape {entry, description}.
type jsonAnnotation struct {
	Entry       string `json:"entry"`
	Description string `json:"description"`
}

// Encode renders t as the JSON object backlog expects: dates as
// ISO-8601 strings (date.DefaultLayout), tags as a JSON array,
// annotations as an array of {entry, description} objects. id and
// urgency are included as a convenience when present on the task.
func Encode(t *task.Task) (string, error) {
	obj := map[string]any{}
	for k, v := range t.Attrs() {
		if v == "" {
			continue
		}
		switch {
		case isDateAttr(k):
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				obj[k] = v
				continue
			}
			obj[k] = formatEpoch(n)
		case k == "tags":
			obj["tags"] = t.Tags()
		case isAnnotation(k):
			// handled in aggregate below
		default:
			obj[k] = v
		}
	}
	if anns := t.Annotations(); len(anns) > 0 {
		out := make([]jsonAnnotation, 0, len(anns))
		for _, a := range anns {
			out = append(out, jsonAnnotation{
				Entry:       formatEpoch(a.Entry),
				Description: a.Description,
			})
		}
		obj["annotations"] = out
	}
	if t.Id() != 0 {
		obj["id"] = t.Id()
	}
	if v, ok := t.CachedUrgency(); ok {
		obj["urgency"] = v
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("encoding backlog entry: %w", err)
	}
	return string(b), nil
}

// formatEpoch renders an epoch-seconds attribute as the wire date string
// spec.md §6 specifies (YYYYMMDDTHHMMSSZ).
func formatEpoch(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(date.DefaultLayout)
}

var dateAttrs = map[string]bool{
	"entry": true, "start": true, "end": true, "due": true, "wait": true,
	"scheduled": true, "until": true, "modified": true,
}

func isDateAttr(name string) bool { return dateAttrs[name] }
func isAnnotation(name string) bool {
	return len(name) > len("annotation_") && name[:len("annotation_")] == "annotation_"
}

// Append writes one encoded backlog line to w.
func Append(w io.Writer, t *task.Task) error {
	line, err := Encode(t)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, line)
	return err
}

// ReadAll reads every line of a backlog file into raw JSON maps,
// preserving file order (oldest first), for push/pull and diagnostics.
func ReadAll(r io.Reader) ([]map[string]any, error) {
	var out []map[string]any
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			return nil, fmt.Errorf("decoding backlog line: %w", err)
		}
		out = append(out, m)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading backlog: %w", err)
	}
	return out, nil
}

// PopLast drops the last line of the backlog file at path, used by
// store.Revert to keep the backlog in step with a popped undo
// transaction (spec.md §4.5 revert() walks pending/completed/backlog
// together). A missing or empty file is not an error.
func PopLast(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading backlog: %w", err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) == 0 || (len(lines) == 1 && lines[0] == "") {
		return nil
	}
	lines = lines[:len(lines)-1]
	out := strings.Join(lines, "\n")
	if len(lines) > 0 {
		out += "\n"
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("rewriting backlog: %w", err)
	}
	return nil
}

// DumpYAML renders a slice of backlog entries as human-readable YAML,
// stably sorted by uuid: entries sharing a uuid keep their input order.
func DumpYAML(entries []map[string]any) (string, error) {
	sorted := append([]map[string]any(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ui, _ := sorted[i]["uuid"].(string)
		uj, _ := sorted[j]["uuid"].(string)
		return ui < uj
	})
	b, err := yaml.Marshal(sorted)
	if err != nil {
		return "", fmt.Errorf("rendering backlog as yaml: %w", err)
	}
	return string(b), nil
}
