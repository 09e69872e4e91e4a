// Package parser implements the argv-to-postfix-filter pipeline of
// spec.md §4.2: lexing, alias expansion, command resolution, token
// categorization, desugaring, and shunting-yard conversion.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taskwarrior-go/task/internal/lex"
	"github.com/taskwarrior-go/task/internal/task"
)

// ConfigSource abstracts the bits of configuration the parser consults,
// so it doesn't import internal/config directly and create a cycle risk.
type ConfigSource interface {
	GetString(name, def string) string
	GetInt(name string, def int) int
	Keys(prefix string) []string
}

const maxAliasPasses = 10

// Parse runs the full pipeline against argv (argv[0] is the program
// name) and returns the categorized, desugared result.
func Parse(argv []string, cfg ConfigSource, reg *task.Registry) (*Result, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("parser: empty argv")
	}

	items, rcFile, rcSets := lexArgv(argv)
	items = expandAliases(items, cfg)

	cmdIdx, cmd, found := findCommand(items, reg)

	base := filepath.Base(argv[0])
	if !found && (base == "cal" || base == "calendar") {
		cmd, _ = lookupCommand("calendar")
		found = true
	}

	if !found {
		var err error
		items, cmdIdx, cmd, err = injectDefaultCommand(items, cfg, reg)
		if err != nil {
			return nil, err
		}
	} else {
		items[cmdIdx].Tags |= TagCmd
	}

	items = demote(items, cmd)
	items, pseudo := extractPseudoPairs(items)
	minLen := cfg.GetInt("abbreviation.minimum", 3)
	items = canonicalizeNames(items, reg, minLen)
	items = categorize(items, cmdIdx, cmd)

	filterToks, modToks, miscToks := partition(items)

	filterToks = parenthesizeOriginals(items, filterToks)
	filterToks = injectContextFilter(filterToks, cmd, cfg)

	filterToks = collectSequence(filterToks)
	var err error
	filterToks, err = desugarFilter(filterToks, reg)
	if err != nil {
		return nil, err
	}
	filterToks = insertJunctions(filterToks)

	postfix, err := shuntingYard(filterToks)
	if err != nil {
		return nil, err
	}

	for k, v := range pseudo {
		rcSets[k] = v
	}

	return &Result{
		Command: cmd,
		Postfix: postfix,
		Mods:    modToks,
		Misc:    miscToks,
		RCFile:  rcFile,
		RCSets:  rcSets,
	}, nil
}

// lexArgv performs pipeline step 1: lex every argv entry after the
// binary, tagging each ORIGINAL, honoring "--" (step: TERMINATED) and
// splitting out rc:/rc.<name> overrides.
func lexArgv(argv []string) ([]Item, string, map[string]string) {
	var items []Item
	rcFile := ""
	rcSets := map[string]string{}
	terminated := false

	for _, arg := range argv[1:] {
		if terminated {
			items = append(items, newItem(lex.Token{Lexeme: arg, Type: lex.TypeWord}, TagTerminated|TagOriginal))
			continue
		}
		if arg == "--" {
			terminated = true
			continue
		}
		if rest, ok := strings.CutPrefix(arg, "rc:"); ok {
			rcFile = rest
			continue
		}
		if rest, ok := strings.CutPrefix(arg, "rc."); ok {
			if name, value, ok := cutAny(rest, ":", "="); ok {
				rcSets[name] = value
				continue
			}
		}
		for _, tok := range lex.Lex(arg) {
			items = append(items, newItem(tok, TagOriginal))
		}
	}
	return items, rcFile, rcSets
}

func cutAny(s string, seps ...string) (string, string, bool) {
	for _, sep := range seps {
		if i := strings.Index(s, sep); i >= 0 {
			return s[:i], s[i+len(sep):], true
		}
	}
	return "", "", false
}

// findCommand implements step 3: the first token whose canonical form
// is a command name and isn't an exact attribute-name match.
func findCommand(items []Item, reg *task.Registry) (int, Command, bool) {
	names := commandNames()
	for i, it := range items {
		if it.Token.Type != lex.TypeIdentifier && it.Token.Type != lex.TypeWord {
			continue
		}
		if reg != nil && reg.IsKnown(it.Token.Lexeme) {
			continue
		}
		if canon, ok := canonicalize(it.Token.Lexeme, names, 1); ok {
			cmd, _ := lookupCommand(canon)
			return i, cmd, true
		}
	}
	return -1, Command{}, false
}

// injectDefaultCommand implements step 4.
func injectDefaultCommand(items []Item, cfg ConfigSource, reg *task.Registry) ([]Item, int, Command, error) {
	for _, it := range items {
		if it.Token.Type == lex.TypeUUID || it.Token.Type == lex.TypeNumber {
			cmd, _ := lookupCommand("information")
			return items, -1, cmd, nil
		}
	}
	if def := cfg.GetString("default.command", ""); def != "" {
		toks := lex.Lex(def)
		var inserted []Item
		for _, t := range toks {
			inserted = append(inserted, newItem(t, 0))
		}
		items = append(inserted, items...)
		idx, cmd, found := findCommand(items, reg)
		if found {
			items[idx].Tags |= TagCmd
			return items, idx, cmd, nil
		}
	}
	return nil, -1, Command{}, fmt.Errorf("parser: trivial input")
}

// demote implements step 5: for add/log, "-tag" tokens become words.
func demote(items []Item, cmd Command) []Item {
	if cmd.Name != "add" && cmd.Name != "log" {
		return items
	}
	for i, it := range items {
		if it.Token.Type == lex.TypeTag && strings.HasPrefix(it.Token.Lexeme, "-") {
			items[i].Token.Type = lex.TypeWord
		}
	}
	return items
}

// extractPseudoPairs pulls out pseudo-attribute pairs like "limit:page"
// that configure the command rather than filtering (step 5).
var pseudoAttrs = map[string]bool{"limit": true, "rc": true}

func extractPseudoPairs(items []Item) ([]Item, map[string]string) {
	out := items[:0:0]
	pseudo := map[string]string{}
	for _, it := range items {
		if it.Token.Type == lex.TypePair {
			name, _, value, err := splitPair(it.Token.Lexeme)
			if err == nil && pseudoAttrs[name] {
				pseudo[name] = value
				continue
			}
		}
		out = append(out, it)
	}
	return out, pseudo
}

// canonicalizeNames implements step 6.
func canonicalizeNames(items []Item, reg *task.Registry, minLen int) []Item {
	if reg == nil {
		return items
	}
	names := reg.Names()
	for i, it := range items {
		if it.Token.Type != lex.TypePair {
			continue
		}
		if strings.HasPrefix(it.Token.Lexeme, "rc:") || strings.HasPrefix(it.Token.Lexeme, "rc.") {
			continue
		}
		name, modifier, value, err := splitPair(it.Token.Lexeme)
		if err != nil {
			items[i].Token.Type = lex.TypeWord
			continue
		}
		canon, ok := canonicalize(name, names, minLen)
		if !ok {
			items[i].Token.Type = lex.TypeWord
			continue
		}
		rebuilt := canon
		if modifier != "" {
			rebuilt += "." + modifier
		}
		rebuilt += ":" + value
		items[i].Token.Lexeme = rebuilt
	}
	return items
}

// categorize implements step 7's matrix.
func categorize(items []Item, cmdIdx int, cmd Command) []Item {
	for i := range items {
		if i == cmdIdx {
			continue
		}
		if items[i].Tags.has(TagTerminated) {
			items[i].Tags |= TagMiscellaneous
			continue
		}
		before := cmdIdx < 0 || i < cmdIdx
		tag := classify(cmd.DNA, before)
		items[i].Tags |= tag
	}
	return items
}

func classify(d DNA, before bool) Tag {
	switch {
	case !d.AcceptsFilter && !d.AcceptsModifications && !d.AcceptsMiscellaneous:
		return 0
	case !d.AcceptsFilter && !d.AcceptsModifications && d.AcceptsMiscellaneous:
		return TagMiscellaneous
	case !d.AcceptsFilter && d.AcceptsModifications && !d.AcceptsMiscellaneous:
		return TagModification
	case d.AcceptsFilter && !d.AcceptsModifications && !d.AcceptsMiscellaneous:
		return TagFilter
	case d.AcceptsFilter && !d.AcceptsModifications && d.AcceptsMiscellaneous:
		if before {
			return TagFilter
		}
		return TagMiscellaneous
	case d.AcceptsFilter && d.AcceptsModifications:
		if before {
			return TagFilter
		}
		return TagModification
	default:
		return TagMiscellaneous
	}
}

func partition(items []Item) (filter, mod, misc []lex.Token) {
	for _, it := range items {
		switch {
		case it.Tags.has(TagFilter):
			filter = append(filter, it.Token)
		case it.Tags.has(TagModification):
			mod = append(mod, it.Token)
		case it.Tags.has(TagMiscellaneous):
			misc = append(misc, it.Token)
		}
	}
	return filter, mod, misc
}

// parenthesizeOriginals implements step 8: when any filter item is
// user-typed (FILTER & ORIGINAL), wrap the whole filter stream in one
// matched paren pair.
func parenthesizeOriginals(items []Item, filterToks []lex.Token) []lex.Token {
	hasOriginal := false
	for _, it := range items {
		if it.Tags.has(TagFilter) && it.Tags.has(TagOriginal) {
			hasOriginal = true
			break
		}
	}
	if !hasOriginal || len(filterToks) == 0 {
		return filterToks
	}
	out := make([]lex.Token, 0, len(filterToks)+2)
	out = append(out, lexOneOf("("))
	out = append(out, filterToks...)
	out = append(out, lexOneOf(")"))
	return out
}

// injectContextFilter implements step 9.
func injectContextFilter(filterToks []lex.Token, cmd Command, cfg ConfigSource) []lex.Token {
	if !cmd.DNA.UsesContext {
		return filterToks
	}
	ctx := cfg.GetString("context", "")
	if ctx == "" {
		return filterToks
	}
	if hasIdentity(filterToks) {
		return filterToks
	}
	expr := cfg.GetString("context."+ctx, "")
	if expr == "" {
		return filterToks
	}
	ctxToks := lex.Lex(expr)
	if len(filterToks) == 0 {
		return ctxToks
	}
	return append(append(filterToks, lexOneOf("and")), ctxToks...)
}

func hasIdentity(toks []lex.Token) bool {
	for _, t := range toks {
		switch t.Type {
		case lex.TypeUUID, lex.TypeNumber, lex.TypeSet:
			return true
		}
	}
	return false
}

// collectSequence implements the "sequence" part of step 10: bare
// id/number/set/uuid tokens collapse into one id-or-uuid disjunction at
// the position of the first one found.
func collectSequence(toks []lex.Token) []lex.Token {
	var seqIdx []int
	for i, t := range toks {
		if isBareIdentity(t) {
			seqIdx = append(seqIdx, i)
		}
	}
	if len(seqIdx) == 0 {
		return toks
	}
	var parts []string
	for _, i := range seqIdx {
		t := toks[i]
		switch t.Type {
		case lex.TypeUUID:
			parts = append(parts, fmt.Sprintf("(uuid == %s)", t.Lexeme))
		case lex.TypeSet:
			parts = append(parts, expandSet(t.Lexeme))
		default:
			parts = append(parts, fmt.Sprintf("(id == %s)", t.Lexeme))
		}
	}
	replacement := lex.Lex("(" + strings.Join(parts, " or ") + ")")

	var out []lex.Token
	skip := map[int]bool{}
	for _, i := range seqIdx {
		skip[i] = true
	}
	inserted := false
	for i, t := range toks {
		if skip[i] {
			if !inserted {
				out = append(out, replacement...)
				inserted = true
			}
			continue
		}
		out = append(out, t)
	}
	return out
}

// expandSet implements glossary "Sequence" / §4.2 step 10 for a set token
// such as "1-3" or "1,3-5,9": each comma-separated element becomes an
// id==n clause, or an id>=lo and id<=hi clause for a range, joined by or.
func expandSet(lexeme string) string {
	var clauses []string
	for _, elem := range strings.Split(lexeme, ",") {
		if elem == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(elem, "-"); ok {
			clauses = append(clauses, fmt.Sprintf("(id>=%s and id<=%s)", lo, hi))
		} else {
			clauses = append(clauses, fmt.Sprintf("(id == %s)", elem))
		}
	}
	if len(clauses) == 0 {
		return fmt.Sprintf("(id == %s)", lexeme)
	}
	return "(" + strings.Join(clauses, " or ") + ")"
}

func isBareIdentity(t lex.Token) bool {
	switch t.Type {
	case lex.TypeUUID, lex.TypeNumber, lex.TypeSet:
		return true
	default:
		return false
	}
}
