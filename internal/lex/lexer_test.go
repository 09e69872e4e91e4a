package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexBasicTypes(t *testing.T) {
	cases := []struct {
		in   string
		want Type
	}{
		{"+urgent", TypeTag},
		{"-urgent", TypeTag},
		{"project:home", TypePair},
		{"project.is:home", TypePair},
		{"/foo/", TypePattern},
		{"/foo/bar/", TypeSubstitution},
		{"/foo/bar/g", TypeSubstitution},
		{"1,3-5", TypeSet},
		{"3d", TypeDuration},
		{"weekly", TypeDuration},
		{"today", TypeDate},
		{"eom", TypeDate},
		{"and", TypeOperator},
		{"!==", TypeOperator},
		{"--", TypeSeparator},
		{"description", TypeIdentifier},
	}
	for _, c := range cases {
		toks := Lex(c.in)
		if assert.Lenf(t, toks, 1, "lexing %q", c.in) {
			assert.Equalf(t, c.want, toks[0].Type, "lexing %q", c.in)
		}
	}
}

func TestLexUUID(t *testing.T) {
	toks := Lex("f30cb9c3-3fc0-4437-a619-f939a44327da")
	if assert.Len(t, toks, 1) {
		assert.Equal(t, TypeUUID, toks[0].Type)
	}

	toks = Lex("f30cb9c3")
	if assert.Len(t, toks, 1) {
		assert.Equal(t, TypeUUID, toks[0].Type)
	}
}

func TestLexNumberRequiresBoundary(t *testing.T) {
	toks := Lex("123")
	if assert.Len(t, toks, 1) {
		assert.Equal(t, TypeNumber, toks[0].Type)
	}
}

func TestLexDurationRejectsLargeDays(t *testing.T) {
	toks := Lex("99999999d")
	// Should not classify as a rejected-range duration; falls back to word.
	if assert.Len(t, toks, 1) {
		assert.NotEqual(t, TypeDuration, toks[0].Type)
	}
}

func TestLexIsTotal(t *testing.T) {
	// Every non-empty input produces at least one token; no character
	// silently disappears (property from spec.md §8).
	inputs := []string{"hello world", "a+b", "///", "[]{}", "中文 chars"}
	for _, in := range inputs {
		toks := Lex(in)
		assert.NotEmpty(t, toks, "input %q produced no tokens", in)
	}
}

func TestLexQuotedString(t *testing.T) {
	toks := Lex(`"hello world"`)
	if assert.Len(t, toks, 1) {
		assert.Equal(t, TypeString, toks[0].Type)
		assert.True(t, toks[0].Quoted)
		assert.Equal(t, "hello world", toks[0].Lexeme)
	}
}

func TestLexSeparatorForcesWord(t *testing.T) {
	toks := Lex("-- +tag project:home")
	assert.Equal(t, TypeSeparator, toks[0].Type)
	for _, tk := range toks[1:] {
		assert.Equal(t, TypeWord, tk.Type)
	}
}
