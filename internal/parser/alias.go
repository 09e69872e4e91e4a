package parser

import "github.com/taskwarrior-go/task/internal/lex"

// expandAliases implements step 2: replace any non-TERMINATED item whose
// raw lexeme matches a configured alias.<name> with that alias's lexed
// tokens, to a fixed point capped at maxAliasPasses.
func expandAliases(items []Item, cfg ConfigSource) []Item {
	for pass := 0; pass < maxAliasPasses; pass++ {
		changed := false
		var out []Item
		for _, it := range items {
			if it.Tags.has(TagTerminated) {
				out = append(out, it)
				continue
			}
			value := cfg.GetString("alias."+it.Token.Lexeme, "")
			if value == "" {
				out = append(out, it)
				continue
			}
			changed = true
			for _, t := range lex.Lex(value) {
				out = append(out, newItem(t, it.Tags))
			}
		}
		items = out
		if !changed {
			break
		}
	}
	return items
}
