package parser

import (
	"fmt"
	"strings"

	"github.com/taskwarrior-go/task/internal/lex"
)

// modifierRewrite maps a canonical modifier name (internal/lex.Modifiers
// values) to the operator and value-wrapping it desugars to, per the
// table in spec.md §4.2 rule 10.
type modifierRewrite struct {
	op       string
	template string // value with %s for the original literal; a template without %s is used as is
}

var modifierRewrites = map[string]modifierRewrite{
	"":           {"=", "%s"},
	"before":     {"<", "%s"},
	"after":      {">", "%s"},
	"none":       {"==", "''"},
	"any":        {"!==", "''"},
	"is":         {"==", "%s"},
	"not":        {"!=", "%s"},
	"isnt":       {"!==", "%s"},
	"has":        {"~", "%s"},
	"hasnt":      {"!~", "%s"},
	"startswith": {"~", "^%s"},
	"endswith":   {"~", "%s$"},
	"word":       {"~", `\b%s\b`},
	"noword":     {"!~", `\b%s\b`},
}

// desugarFilter applies spec.md §4.2 step 10 to a FILTER token stream
// already past sequence collection (handled by collectSequence before
// this runs): tag rewrites, modifier rewrites, and bare-word promotion.
func desugarFilter(toks []lex.Token, reg attrTyper) ([]lex.Token, error) {
	var out []lex.Token
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch tok.Type {
		case lex.TypeTag:
			sign := tok.Lexeme[0]
			name := tok.Lexeme[1:]
			op := "_hastag_"
			if sign == '-' {
				op = "_notag_"
			}
			out = append(out, lexOneOf("tags"), lexOneOf(op), lexOneOf(name))
		case lex.TypePair:
			name, modifier, value, err := splitPair(tok.Lexeme)
			if err != nil {
				return nil, err
			}
			rw, ok := modifierRewrites[modifier]
			if !ok {
				return nil, fmt.Errorf("parser: unknown attribute modifier %q", modifier)
			}
			valueLit := rw.template
			if strings.Contains(rw.template, "%s") {
				valueLit = fmt.Sprintf(rw.template, value)
			}
			out = append(out, lexOneOf(name), lexOneOf(rw.op))
			out = append(out, lex.Lex(valueLit)...)
		case lex.TypePattern:
			out = append(out, lexOneOf("description"), lexOneOf("~"), lexOneOf(stripPatternDelims(tok.Lexeme)))
		case lex.TypeWord:
			if precededByBareValuePosition(out) {
				out = append(out, lexOneOf("description"), lexOneOf("~"), tok)
			} else {
				out = append(out, tok)
			}
		default:
			out = append(out, tok)
		}
	}
	return out, nil
}

type attrTyper interface {
	IsKnown(name string) bool
}

// precededByBareValuePosition reports whether appending a bare word here
// would follow something other than an operator/open-paren — i.e.
// whether it needs promotion to a description match (spec.md §4.2 rule
// 10's "unless preceded by an operator other than ( ) and or xor").
func precededByBareValuePosition(out []lex.Token) bool {
	if len(out) == 0 {
		return true
	}
	last := out[len(out)-1]
	if last.Type != lex.TypeOperator {
		return true
	}
	switch last.Lexeme {
	case "(", ")", "and", "or", "xor":
		return true
	default:
		return false
	}
}

func lexOneOf(s string) lex.Token {
	toks := lex.Lex(s)
	if len(toks) == 0 {
		return lex.Token{Lexeme: s, Type: lex.TypeWord}
	}
	return toks[0]
}

func stripPatternDelims(s string) string {
	if len(s) >= 2 && s[0] == '/' {
		end := len(s) - 1
		for end > 0 && s[end] != '/' {
			end--
		}
		if end > 0 {
			return s[1:end]
		}
	}
	return s
}

// splitPair breaks a raw "name[.mod][:=]value" pair lexeme into its
// three parts.
func splitPair(raw string) (name, modifier, value string, err error) {
	sepIdx := -1
	for i, c := range raw {
		if c == ':' || c == '=' {
			sepIdx = i
			break
		}
	}
	if sepIdx < 0 {
		return "", "", "", fmt.Errorf("parser: malformed pair %q", raw)
	}
	head := raw[:sepIdx]
	value = raw[sepIdx+1:]
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	if dot := indexByte(head, '.'); dot >= 0 {
		name = head[:dot]
		modifier = head[dot+1:]
	} else {
		name = head
		modifier = ""
	}
	return name, modifier, value, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// insertJunctions adds an implicit "and" between any two adjacent filter
// tokens where the left is a value/")" and the right is a value/"("
// (spec.md §4.2 step 11).
func insertJunctions(toks []lex.Token) []lex.Token {
	if len(toks) == 0 {
		return toks
	}
	out := []lex.Token{toks[0]}
	for i := 1; i < len(toks); i++ {
		prev := toks[i-1]
		cur := toks[i]
		if isValueEnd(prev) && isValueStart(cur) {
			out = append(out, lexOneOf("and"))
		}
		out = append(out, cur)
	}
	return out
}

func isValueEnd(t lex.Token) bool {
	if t.Type == lex.TypeOperator {
		return t.Lexeme == ")"
	}
	return true
}

func isValueStart(t lex.Token) bool {
	if t.Type == lex.TypeOperator {
		return t.Lexeme == "("
	}
	return true
}
