package parser

import "github.com/taskwarrior-go/task/internal/lex"

// Tag is a bitmask of the partition categories an argv-derived token can
// carry simultaneously (spec.md §4.2): a token tagged FILTER|ORIGINAL,
// for instance, is a user-typed filter atom eligible for
// parenthesization in step 8.
type Tag int

const (
	TagBinary Tag = 1 << iota
	TagRC
	TagCmd
	TagFilter
	TagModification
	TagMiscellaneous
	TagTerminated
	TagOriginal
)

func (t Tag) has(f Tag) bool { return t&f != 0 }

// Item is one token carrying its partition tags through the pipeline.
type Item struct {
	Token lex.Token
	Tags  Tag
}

func newItem(tok lex.Token, tags Tag) Item { return Item{Token: tok, Tags: tags} }

// Result is the parser's output: a postfix filter expression, the
// modification tokens in argv order, miscellaneous words, and the
// resolved command.
type Result struct {
	Command  Command
	Postfix  []lex.Token
	Mods     []lex.Token
	Misc     []lex.Token
	RCFile   string
	RCSets   map[string]string
	Warnings []string
}
