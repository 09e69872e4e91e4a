package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/taskwarrior-go/task/internal/applog"
	"github.com/taskwarrior-go/task/internal/config"
	"github.com/taskwarrior-go/task/internal/date"
	"github.com/taskwarrior-go/task/internal/dom"
	"github.com/taskwarrior-go/task/internal/filter"
	"github.com/taskwarrior-go/task/internal/parser"
	"github.com/taskwarrior-go/task/internal/recur"
	"github.com/taskwarrior-go/task/internal/store"
	"github.com/taskwarrior-go/task/internal/task"
	"github.com/taskwarrior-go/task/internal/textview"
	"github.com/taskwarrior-go/task/internal/urgency"
)

// Dispatch loads configuration, runs the parser pipeline, and routes to
// the resolved command's handler. in/out/errw let tests capture output
// and drive confirmation prompts without touching the process streams.
func Dispatch(argv []string, in io.Reader, out, errw io.Writer) error {
	cfg, err := loadConfig(argv)
	if err != nil {
		return asUserError(err)
	}
	reg := buildRegistry(cfg)

	result, err := parser.Parse(argv, cfg, reg)
	if err != nil {
		return asUserError(err)
	}
	for name, value := range result.RCSets {
		cfg.Set(name, value)
	}
	applog.SetVerbose(cfg.GetBool("verbose", false))

	dataDir := cfg.GetString("data.location", defaultDataDir())
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	locking := cfg.GetBool("locking", true)
	s, err := store.Open(dataDir, locking, time.Now)
	if err != nil {
		return err
	}
	defer s.Close()

	if result.Command.DNA.NeedsGC {
		runRecurrenceAndGC(s, cfg)
	}

	env := &env{cfg: cfg, reg: reg, store: s, in: in, out: out, errw: errw}

	switch result.Command.Name {
	case "add", "log":
		return asUserError(env.cmdAdd(result))
	case "modify":
		return asUserError(env.cmdModify(result))
	case "done":
		return asUserError(env.cmdDone(result))
	case "delete":
		return asUserError(env.cmdDelete(result))
	case "start":
		return asUserError(env.cmdStartStop(result, true))
	case "stop":
		return asUserError(env.cmdStartStop(result, false))
	case "annotate":
		return asUserError(env.cmdAnnotate(result))
	case "information":
		return asUserError(env.cmdInfo(result))
	case "list", "next", "all":
		return asUserError(env.cmdList(result))
	case "count":
		return asUserError(env.cmdCount(result))
	case "projects":
		return asUserError(env.cmdProjects(result))
	case "tags":
		return asUserError(env.cmdTags(result))
	case "undo":
		return asUserError(env.cmdUndo(result))
	case "export":
		return asUserError(env.cmdExport(result))
	case "denotate":
		return asUserError(env.cmdDenotate(result))
	case "merge":
		return asUserError(env.cmdMerge(result))
	case "import":
		return asUserError(env.cmdImport(result))
	case "calendar":
		return asUserError(env.cmdCalendar())
	default:
		return fmt.Errorf("cmd: %q is not yet implemented", result.Command.Name)
	}
}

type env struct {
	cfg   *config.Config
	reg   *task.Registry
	store *store.Store
	in    io.Reader
	out   io.Writer
	errw  io.Writer
}

func loadConfig(argv []string) (*config.Config, error) {
	path := ""
	// A leading "rc:<file>" override is consumed by the parser too, but
	// config must load before parsing since the parser consults it; scan
	// argv directly for this one bootstrap case.
	for _, a := range argv[1:] {
		if rest, ok := cutPrefix(a, "rc:"); ok {
			path = rest
			break
		}
	}
	if path == "" {
		if env := os.Getenv("TASKRC"); env != "" {
			path = env
		} else {
			home, _ := os.UserHomeDir()
			path = filepath.Join(home, ".taskrc")
		}
	}
	if _, err := os.Stat(path); err != nil {
		return config.New(), nil
	}
	return config.Load(path)
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".task")
}

func buildRegistry(cfg *config.Config) *task.Registry {
	udas := map[string]task.UDADef{}
	for _, name := range cfg.Keys("uda.") {
		// name is like "priority2.type" / "priority2.default" etc; only
		// react on the ".type" key to avoid building partial entries
		// multiple times.
		const typeSuffix = ".type"
		if len(name) <= len(typeSuffix) || name[len(name)-len(typeSuffix):] != typeSuffix {
			continue
		}
		udaName := name[:len(name)-len(typeSuffix)]
		udas[udaName] = task.UDADef{
			Name:    udaName,
			Type:    task.UDAType(cfg.GetString("uda."+udaName+".type", "string")),
			Default: cfg.GetString("uda."+udaName+".default", ""),
			Label:   cfg.GetString("uda."+udaName+".label", udaName),
		}
	}
	return task.NewRegistry(udas)
}

func runRecurrenceAndGC(s *store.Store, cfg *config.Config) {
	if !cfg.GetBool("gc", true) {
		return
	}
	now := time.Now()
	limit := cfg.GetInt("recurrence.limit", 1)
	for _, t := range s.All() {
		if t.Status() != task.StatusRecurring {
			continue
		}
		children, err := recur.Expand(t, now, limit, func(parentUUID string, imask int) bool {
			for _, other := range s.All() {
				if other.Get("parent") == parentUUID && other.Get("imask") == fmt.Sprintf("%d", imask) {
					return true
				}
			}
			return false
		})
		if err != nil {
			applog.Warnf("recur: %v", err)
			continue
		}
		for _, child := range children {
			_ = s.Add(child)
		}
	}
	s.GC(now)
	_ = s.Commit()
}

// resolverFor builds a dom.Resolver scoped to one task, wiring cross-task
// lookups and is_blocking back through the store.
func (e *env) resolverFor(t *task.Task) dom.Resolver {
	return dom.Resolver{
		Current: t,
		Lookup: func(ref string) *task.Task {
			found, err := e.store.GetByUUID(ref)
			if err != nil {
				byID, err2 := e.storeGetByIDOrUUID(ref)
				if err2 != nil {
					return nil
				}
				return byID
			}
			return found
		},
		Config:  e.cfg.Get,
		Runtime: dom.Runtime{Now: func() string { return fmt.Sprintf("%d", time.Now().Unix()) }},
		IsBlocking: func(uuid string) bool {
			for _, other := range e.store.All() {
				for _, dep := range other.Depends() {
					if dep == uuid && other.InPendingFile() {
						return true
					}
				}
			}
			return false
		},
	}
}

func (e *env) storeGetByIDOrUUID(ref string) (*task.Task, error) {
	if id, ok := parseID(ref); ok {
		return e.store.GetByID(id)
	}
	return e.store.GetByUUID(ref)
}

func parseID(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// matching runs the resolved filter expression against every task in
// scope, returning those that evaluate true.
func (e *env) matching(result *parser.Result) ([]*task.Task, error) {
	opts := filter.Options{
		CaseSensitive: e.cfg.GetBool("search.case.sensitive", false),
		RegexEnabled:  e.cfg.GetBool("regex", false),
		Now:           time.Now(),
		Weekstart:     weekstartFrom(e.cfg),
		DateFormat:    e.cfg.GetString("dateformat", ""),
		Registry:      e.reg,
	}
	// Store.All returns its own live task pointers; command handlers
	// mutate the tasks they match before calling Modify, so hand back
	// clones to avoid the old/new comparison in Modify seeing the same,
	// already-mutated object on both sides.
	var out []*task.Task
	for _, t := range e.store.All() {
		if len(result.Postfix) == 0 {
			out = append(out, t.Clone())
			continue
		}
		ok, err := filter.Eval(result.Postfix, e.resolverFor(t), opts)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func weekstartFrom(cfg *config.Config) date.Weekstart {
	if cfg.GetString("weekstart", "Sunday") == "Monday" {
		return date.WeekstartMonday
	}
	return date.WeekstartSunday
}

func (e *env) sortedByUrgency(tasks []*task.Task) []*task.Task {
	coef := urgencyCoefficients(e.cfg)
	now := time.Now()
	scored := make([]*task.Task, len(tasks))
	copy(scored, tasks)
	sort.SliceStable(scored, func(i, j int) bool {
		ui := urgency.Compute(scored[i], e.resolverFor(scored[i]), coef, now)
		uj := urgency.Compute(scored[j], e.resolverFor(scored[j]), coef, now)
		return ui > uj
	})
	return scored
}

func urgencyCoefficients(cfg *config.Config) urgency.Coefficients {
	c := urgency.DefaultCoefficients()
	c.Priority = cfg.GetReal("urgency.priority.coefficient", c.Priority)
	c.Project = cfg.GetReal("urgency.project.coefficient", c.Project)
	c.Active = cfg.GetReal("urgency.active.coefficient", c.Active)
	c.Scheduled = cfg.GetReal("urgency.scheduled.coefficient", c.Scheduled)
	c.Waiting = cfg.GetReal("urgency.waiting.coefficient", c.Waiting)
	c.Blocked = cfg.GetReal("urgency.blocked.coefficient", c.Blocked)
	c.Blocking = cfg.GetReal("urgency.blocking.coefficient", c.Blocking)
	c.Annotations = cfg.GetReal("urgency.annotations.coefficient", c.Annotations)
	c.Tags = cfg.GetReal("urgency.tags.coefficient", c.Tags)
	c.Next = cfg.GetReal("urgency.next.coefficient", c.Next)
	c.Due = cfg.GetReal("urgency.due.coefficient", c.Due)
	c.Age = cfg.GetReal("urgency.age.coefficient", c.Age)
	c.AgeMax = cfg.GetReal("urgency.age.max", c.AgeMax)
	for _, proj := range cfg.Keys("urgency.user.project.") {
		name, ok := trimSuffixDot(proj, ".coefficient")
		if ok {
			c.PerProject[name] = cfg.GetReal("urgency.user.project."+proj, 0)
		}
	}
	for _, tg := range cfg.Keys("urgency.user.tag.") {
		name, ok := trimSuffixDot(tg, ".coefficient")
		if ok {
			c.PerTag[name] = cfg.GetReal("urgency.user.tag."+tg, 0)
		}
	}
	for _, u := range cfg.Keys("urgency.uda.") {
		name, ok := trimSuffixDot(u, ".coefficient")
		if ok {
			c.PerUDA[name] = cfg.GetReal("urgency.uda."+u, 0)
		}
	}
	return c
}

func trimSuffixDot(s, suffix string) (string, bool) {
	if len(s) <= len(suffix) || s[len(s)-len(suffix):] != suffix {
		return "", false
	}
	return s[:len(s)-len(suffix)], true
}

func renderList(out io.Writer, tasks []*task.Task) {
	tbl := textview.NewTable(
		textview.Column{Name: "ID", Width: 4, Align: textview.AlignRight},
		textview.Column{Name: "Project", Width: 12},
		textview.Column{Name: "Description", Width: 0},
	).AutoSize()
	for _, t := range tasks {
		tbl.AddRow(fmt.Sprintf("%d", t.Id()), t.Get("project"), t.Description())
	}
	fmt.Fprint(out, tbl.Render())
}
