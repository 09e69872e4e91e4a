package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/taskwarrior-go/task/internal/date"
	"github.com/taskwarrior-go/task/internal/dom"
	"github.com/taskwarrior-go/task/internal/lex"
	"github.com/taskwarrior-go/task/internal/task"
)

// Options controls the evaluator's configuration-dependent semantics.
type Options struct {
	CaseSensitive bool
	RegexEnabled  bool
	Now           time.Time
	Weekstart     date.Weekstart
	DateFormat    string
	Registry      *task.Registry
}

// Eval runs the postfix token stream against resolver's current task,
// returning the final boolean per spec.md §4.3 ("after evaluation,
// exactly one value remains; coerce to boolean").
func Eval(postfix []lex.Token, resolver dom.Resolver, opts Options) (bool, error) {
	var stack []Value
	pop := func() (Value, error) {
		if len(stack) == 0 {
			return Value{}, fmt.Errorf("filter: operand stack underflow")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for _, tok := range postfix {
		if tok.Type == lex.TypeOperator {
			if lex.IsUnary(tok.Lexeme) {
				a, err := pop()
				if err != nil {
					return false, err
				}
				stack = append(stack, boolValue(!ToBool(a)))
				continue
			}
			b, err := pop()
			if err != nil {
				return false, err
			}
			if b.Kind == KindNone && b.Str != "" && tok.Lexeme != "and" && tok.Lexeme != "or" && tok.Lexeme != "xor" {
				// An unresolved name on the right of a comparison is the
				// literal word the user typed (project = home).
				b = stringValue(b.Str)
			}
			a, err := pop()
			if err != nil {
				return false, err
			}
			result, err := applyOp(tok.Lexeme, a, b, opts)
			if err != nil {
				return false, err
			}
			stack = append(stack, result)
			continue
		}
		v := resolveOperand(tok, resolver, opts)
		if v.Kind == KindNone {
			v.Str = tok.Lexeme // kept for the literal fallback above
		}
		stack = append(stack, v)
	}

	if len(stack) != 1 {
		return false, fmt.Errorf("filter: expression did not reduce to a single value (stack depth %d)", len(stack))
	}
	return ToBool(stack[0]), nil
}

func resolveOperand(tok lex.Token, resolver dom.Resolver, opts Options) Value {
	switch tok.Type {
	case lex.TypeNumber:
		n, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return numberValue(n)
	case lex.TypeDuration:
		d, err := date.ParseDuration(tok.Lexeme)
		if err != nil {
			return stringValue(tok.Lexeme)
		}
		return Value{Kind: KindDuration, Num: float64(d.Seconds())}
	case lex.TypeDate:
		t, err := date.Parse(tok.Lexeme, opts.Now, opts.Weekstart, opts.DateFormat)
		if err != nil {
			return stringValue(tok.Lexeme)
		}
		dateOnly := !strings.ContainsAny(tok.Lexeme, "T:")
		return Value{Kind: KindDate, Num: float64(t.Unix()), DateOnly: dateOnly}
	case lex.TypeString, lex.TypePattern, lex.TypeWord:
		return stringValue(tok.Lexeme)
	case lex.TypeIdentifier, lex.TypeUUID, lex.TypeSet:
		return resolveIdentifier(tok.Lexeme, resolver, opts)
	default:
		return stringValue(tok.Lexeme)
	}
}

func resolveIdentifier(name string, resolver dom.Resolver, opts Options) Value {
	raw := resolver.Resolve(name)
	if raw == "" {
		return noneValue()
	}
	typ := task.UDAString
	attr := name
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		attr = name[dot+1:]
	}
	if opts.Registry != nil {
		typ = opts.Registry.TypeOf(attr)
	}
	switch typ {
	case task.UDANumeric:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return numberValue(n)
		}
		return stringValue(raw)
	case task.UDADate:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Value{Kind: KindDate, Num: float64(n)}
		}
		return stringValue(raw)
	case task.UDADuration:
		d, err := date.ParseDuration(raw)
		if err == nil {
			return Value{Kind: KindDuration, Num: float64(d.Seconds())}
		}
		return stringValue(raw)
	default:
		return stringValue(raw)
	}
}

func applyOp(op string, a, b Value, opts Options) (Value, error) {
	switch op {
	case "+":
		return arith(a, b, func(x, y float64) float64 { return x + y })
	case "-":
		return arith(a, b, func(x, y float64) float64 { return x - y })
	case "*":
		return numberValue(a.Num * b.Num), nil
	case "/":
		if b.Num == 0 {
			return Value{}, fmt.Errorf("filter: division by zero")
		}
		return numberValue(a.Num / b.Num), nil
	case "<":
		return boolValue(compareOrdered(a, b) < 0), nil
	case "<=":
		return boolValue(compareOrdered(a, b) <= 0), nil
	case ">":
		return boolValue(compareOrdered(a, b) > 0), nil
	case ">=":
		return boolValue(compareOrdered(a, b) >= 0), nil
	case "=":
		return boolValue(equalTyped(a, b, opts.CaseSensitive)), nil
	case "==":
		return boolValue(AsString(a) == AsString(b)), nil
	case "!=":
		return boolValue(!equalTyped(a, b, opts.CaseSensitive)), nil
	case "!==":
		return boolValue(AsString(a) != AsString(b)), nil
	case "~":
		return matchOp(a, b, opts, false)
	case "!~":
		return matchOp(a, b, opts, true)
	case "_hastag_":
		return boolValue(hasTag(a, b)), nil
	case "_notag_":
		return boolValue(!hasTag(a, b)), nil
	case "and":
		return boolValue(ToBool(a) && ToBool(b)), nil
	case "or":
		return boolValue(ToBool(a) || ToBool(b)), nil
	case "xor":
		return boolValue(ToBool(a) != ToBool(b)), nil
	}
	return Value{}, fmt.Errorf("filter: unknown operator %q", op)
}

func arith(a, b Value, fn func(x, y float64) float64) (Value, error) {
	if a.Kind == KindDate && b.Kind == KindDuration {
		return Value{Kind: KindDate, Num: fn(a.Num, b.Num), DateOnly: a.DateOnly}, nil
	}
	if a.Kind == KindDuration && b.Kind == KindDate {
		return Value{Kind: KindDate, Num: fn(a.Num, b.Num), DateOnly: b.DateOnly}, nil
	}
	return numberValue(fn(a.Num, b.Num)), nil
}

func compareOrdered(a, b Value) int {
	av, bv := a.Num, b.Num
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

// equalTyped implements "=": dates compare by day when either side is a
// bare date literal, by instant otherwise; durations by total seconds;
// strings by value honoring search.case.sensitive; numbers numerically.
func equalTyped(a, b Value, caseSensitive bool) bool {
	if a.Kind == KindDate && b.Kind == KindDate {
		if a.DateOnly || b.DateOnly {
			return sameDay(a.Num, b.Num)
		}
		return a.Num == b.Num
	}
	if a.Kind == KindDuration && b.Kind == KindDuration {
		return a.Num == b.Num
	}
	if a.Kind == KindNumber && b.Kind == KindNumber {
		return a.Num == b.Num
	}
	return equalFold(AsString(a), AsString(b), caseSensitive)
}

func sameDay(a, b float64) bool {
	ta := time.Unix(int64(a), 0).UTC()
	tb := time.Unix(int64(b), 0).UTC()
	y1, m1, d1 := ta.Date()
	y2, m2, d2 := tb.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func matchOp(a, b Value, opts Options, negate bool) (Value, error) {
	haystack := AsString(a)
	pattern := AsString(b)
	pattern = strings.Trim(pattern, "/")
	var matched bool
	if opts.RegexEnabled {
		flags := ""
		if !opts.CaseSensitive {
			flags = "(?i)"
		}
		re, err := regexp.Compile(flags + pattern)
		if err != nil {
			return Value{}, fmt.Errorf("filter: invalid regex %q: %w", pattern, err)
		}
		matched = re.MatchString(haystack)
	} else {
		if opts.CaseSensitive {
			matched = strings.Contains(haystack, pattern)
		} else {
			matched = strings.Contains(strings.ToLower(haystack), strings.ToLower(pattern))
		}
	}
	if negate {
		matched = !matched
	}
	return boolValue(matched), nil
}

func hasTag(tags, tag Value) bool {
	for _, t := range strings.Split(AsString(tags), ",") {
		if t == AsString(tag) {
			return true
		}
	}
	return false
}
