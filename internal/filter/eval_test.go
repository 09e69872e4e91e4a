package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwarrior-go/task/internal/dom"
	"github.com/taskwarrior-go/task/internal/lex"
	"github.com/taskwarrior-go/task/internal/task"
)

func lexOne(s string) lex.Token {
	toks := lex.Lex(s)
	if len(toks) == 0 {
		panic("no tokens for " + s)
	}
	return toks[0]
}

func evalTags(t *testing.T, tg *task.Task, infix ...string) bool {
	t.Helper()
	var postfix []lex.Token
	for _, s := range infix {
		postfix = append(postfix, lexOne(s))
	}
	r := dom.Resolver{Current: tg}
	result, err := Eval(postfix, r, Options{Registry: task.NewRegistry(nil)})
	require.NoError(t, err)
	return result
}

func TestHasTagNotagInvertibility(t *testing.T) {
	tg := task.New()
	tg.AddTag("home")

	assert.True(t, evalTags(t, tg, "tags", "home", "_hastag_"))
	assert.False(t, evalTags(t, tg, "tags", "home", "_notag_"))

	assert.False(t, evalTags(t, tg, "tags", "work", "_hastag_"))
	assert.True(t, evalTags(t, tg, "tags", "work", "_notag_"))
}

func TestEqualityStrict(t *testing.T) {
	tg := task.New()
	tg.Set("project", "Home")

	r := dom.Resolver{Current: tg}
	postfix := []lex.Token{lexOne("project"), lexOne("home"), lexOne("==")}
	ok, err := Eval(postfix, r, Options{Registry: task.NewRegistry(nil)})
	require.NoError(t, err)
	assert.False(t, ok, "== is case-exact, Home != home")
}

func TestEqualityTypeAwareCaseInsensitiveDefault(t *testing.T) {
	tg := task.New()
	tg.Set("project", "Home")

	r := dom.Resolver{Current: tg}
	postfix := []lex.Token{lexOne("project"), lexOne("home"), lexOne("=")}
	ok, err := Eval(postfix, r, Options{Registry: task.NewRegistry(nil)})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBooleanAndOrXor(t *testing.T) {
	tg := task.New()
	tg.Set("priority", "H")
	r := dom.Resolver{Current: tg}
	reg := task.NewRegistry(nil)

	ok, err := Eval([]lex.Token{lexOne("priority"), lexOne("H"), lexOne("="), lexOne("priority"), lexOne("H"), lexOne("="), lexOne("xor")}, r, Options{Registry: reg})
	require.NoError(t, err)
	assert.False(t, ok, "xor of two equal truths is false")
}

func TestNoneIsFalsy(t *testing.T) {
	tg := task.New()
	r := dom.Resolver{Current: tg}
	ok, err := Eval([]lex.Token{lexOne("nosuchattr")}, r, Options{Registry: task.NewRegistry(nil)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnaryNot(t *testing.T) {
	tg := task.New()
	r := dom.Resolver{Current: tg}
	ok, err := Eval([]lex.Token{lexOne("nosuchattr"), lexOne("!")}, r, Options{Registry: task.NewRegistry(nil)})
	require.NoError(t, err)
	assert.True(t, ok)
}
