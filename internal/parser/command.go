package parser

// DNA is a command's static capability declaration (spec.md §4.10).
type DNA struct {
	ReadOnly              bool
	DisplaysID            bool
	NeedsGC               bool
	UsesContext           bool
	AcceptsFilter         bool
	AcceptsModifications  bool
	AcceptsMiscellaneous  bool
}

// Command is one entry in the installed command set.
type Command struct {
	Name string
	DNA  DNA
}

// Commands is the installed command set, each declaring its DNA per
// spec.md §4.10. Names are canonicalized against this table by
// prefix-unique completion.
var Commands = []Command{
	{"add", DNA{AcceptsModifications: true, AcceptsMiscellaneous: false}},
	{"log", DNA{AcceptsModifications: true}},
	{"modify", DNA{AcceptsFilter: true, AcceptsModifications: true, UsesContext: true}},
	{"annotate", DNA{AcceptsFilter: true, AcceptsMiscellaneous: true, UsesContext: true}},
	{"denotate", DNA{AcceptsFilter: true, AcceptsMiscellaneous: true, UsesContext: true}},
	{"done", DNA{AcceptsFilter: true, NeedsGC: true, UsesContext: true}},
	{"delete", DNA{AcceptsFilter: true, NeedsGC: true, UsesContext: true}},
	{"start", DNA{AcceptsFilter: true, UsesContext: true}},
	{"stop", DNA{AcceptsFilter: true, UsesContext: true}},
	{"list", DNA{ReadOnly: true, DisplaysID: true, AcceptsFilter: true, NeedsGC: true, UsesContext: true}},
	{"next", DNA{ReadOnly: true, DisplaysID: true, AcceptsFilter: true, NeedsGC: true, UsesContext: true}},
	{"all", DNA{ReadOnly: true, DisplaysID: true, AcceptsFilter: true, NeedsGC: true, UsesContext: true}},
	{"information", DNA{ReadOnly: true, DisplaysID: true, AcceptsFilter: true, UsesContext: true}},
	{"undo", DNA{}},
	{"merge", DNA{AcceptsMiscellaneous: true}},
	{"export", DNA{ReadOnly: true, AcceptsFilter: true, UsesContext: true}},
	{"import", DNA{AcceptsMiscellaneous: true}},
	{"calendar", DNA{ReadOnly: true}},
	{"count", DNA{ReadOnly: true, AcceptsFilter: true, UsesContext: true}},
	{"projects", DNA{ReadOnly: true, AcceptsFilter: true, UsesContext: true}},
	{"tags", DNA{ReadOnly: true, AcceptsFilter: true, UsesContext: true}},
}

func lookupCommand(name string) (Command, bool) {
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

func commandNames() []string {
	names := make([]string, len(Commands))
	for i, c := range Commands {
		names[i] = c.Name
	}
	return names
}
