package task

// UDAType is the declared type of a user-defined attribute.
type UDAType string

const (
	UDAString   UDAType = "string"
	UDANumeric  UDAType = "numeric"
	UDADate     UDAType = "date"
	UDADuration UDAType = "duration"
)

// UDADef is one user-defined attribute's declared type and default,
// loaded from rc.uda.<name>.type / .default / .values / .label.
type UDADef struct {
	Name    string
	Type    UDAType
	Default string
	Values  []string
	Label   string
}

// builtinTypes gives the type of every built-in attribute, consulted by
// the expression engine and parser for type-aware comparisons and
// modifier rewrites (spec.md §4.2 rule 10, §4.3).
var builtinTypes = map[string]UDAType{
	"uuid":        UDAString,
	"status":      UDAString,
	"description": UDAString,
	"entry":       UDADate,
	"start":       UDADate,
	"end":         UDADate,
	"due":         UDADate,
	"wait":        UDADate,
	"scheduled":   UDADate,
	"until":       UDADate,
	"modified":    UDADate,
	"recur":       UDADuration,
	"mask":        UDAString,
	"imask":       UDANumeric,
	"parent":      UDAString,
	"project":     UDAString,
	"priority":    UDAString,
	"tags":        UDAString,
	"depends":     UDAString,
}

// Registry resolves an attribute's declared type, consulting the
// built-in table first and falling back to configured UDAs.
type Registry struct {
	udas map[string]UDADef
}

// NewRegistry builds a Registry over the given UDA definitions.
func NewRegistry(udas map[string]UDADef) *Registry {
	if udas == nil {
		udas = map[string]UDADef{}
	}
	return &Registry{udas: udas}
}

// TypeOf returns the declared type of name, defaulting to string for
// unknown attributes — an "orphan" UDA is still usable, just untyped.
func (r *Registry) TypeOf(name string) UDAType {
	if t, ok := builtinTypes[name]; ok {
		return t
	}
	if d, ok := r.udas[name]; ok {
		return d.Type
	}
	return UDAString
}

// IsKnown reports whether name is a built-in attribute or a declared
// UDA (used by the parser's prefix-completion and by validation when
// filling UDA defaults).
func (r *Registry) IsKnown(name string) bool {
	if _, ok := builtinTypes[name]; ok {
		return true
	}
	_, ok := r.udas[name]
	return ok
}

// Names returns every known attribute name, built-in and UDA, used for
// prefix-unique completion (spec.md §4.2 rule 6, §4.10).
func (r *Registry) Names() []string {
	out := make([]string, 0, len(builtinTypes)+len(r.udas))
	for n := range builtinTypes {
		out = append(out, n)
	}
	for n := range r.udas {
		out = append(out, n)
	}
	return out
}

// Default returns the configured default for a UDA, or "" if none/not a UDA.
func (r *Registry) Default(name string) string {
	if d, ok := r.udas[name]; ok {
		return d.Default
	}
	return ""
}

// UDAs exposes the raw UDA map for iteration (e.g. applying defaults).
func (r *Registry) UDAs() map[string]UDADef { return r.udas }
