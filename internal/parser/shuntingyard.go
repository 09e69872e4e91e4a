package parser

import (
	"fmt"

	"github.com/taskwarrior-go/task/internal/lex"
)

// shuntingYard converts an infix filter token stream to postfix using
// Dijkstra's algorithm and the precedence table of spec.md §4.1.
// Unmatched parentheses are fatal (ErrParse, returned by the caller).
func shuntingYard(infix []lex.Token) ([]lex.Token, error) {
	var output []lex.Token
	var ops []lex.Token

	isOpenParen := func(t lex.Token) bool { return t.Type == lex.TypeOperator && t.Lexeme == "(" }
	isCloseParen := func(t lex.Token) bool { return t.Type == lex.TypeOperator && t.Lexeme == ")" }

	for _, tok := range infix {
		switch {
		case tok.Type != lex.TypeOperator:
			output = append(output, tok)
		case isOpenParen(tok):
			ops = append(ops, tok)
		case isCloseParen(tok):
			found := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if isOpenParen(top) {
					found = true
					break
				}
				output = append(output, top)
			}
			if !found {
				return nil, fmt.Errorf("parser: unmatched closing parenthesis")
			}
		default:
			tok = normalizeOperator(tok)
			p1, a1, ok := lex.Precedence(tok.Lexeme)
			if !ok {
				return nil, fmt.Errorf("parser: unknown operator %q", tok.Lexeme)
			}
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if isOpenParen(top) {
					break
				}
				p2, _, ok := lex.Precedence(top.Lexeme)
				if !ok {
					break
				}
				if p2 > p1 || (p2 == p1 && a1 == lex.AssocLeft) {
					output = append(output, top)
					ops = ops[:len(ops)-1]
					continue
				}
				break
			}
			ops = append(ops, tok)
		}
	}
	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if isOpenParen(top) {
			return nil, fmt.Errorf("parser: unmatched opening parenthesis")
		}
		output = append(output, top)
	}
	return output, nil
}

func parenToken(lexeme string) lex.Token {
	toks := lex.Lex(lexeme)
	return toks[0]
}

// normalizeOperator maps the "not" spelling to the canonical unary "!"
// so it resolves in the precedence table built around spec.md §4.1's
// symbol, not its word alias.
func normalizeOperator(tok lex.Token) lex.Token {
	if tok.Lexeme == "not" {
		toks := lex.Lex("!")
		return toks[0]
	}
	return tok
}
