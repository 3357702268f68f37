package macro

import (
	"testing"

	"github.com/ccfront/ccfront/cc/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ident(name string) token.Token {
	return token.Token{Kind: token.Ident, Text: name, Src: name, SpaceBefore: true}
}

func op(text string) token.Token {
	return token.Token{Kind: token.Operator, Text: text, Src: text}
}

func lit(text string) token.Token {
	return token.Token{Kind: token.Literal, LiteralKind: token.Int, Text: text, Src: text}
}

func names(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestObjectLikeExpansion(t *testing.T) {
	table := NewTable()
	table.Define(&Symbol{Name: "FOO", Flags: ObjectLike, Body: []token.Token{lit("42")}})
	engine := NewEngine(table)

	out, err := engine.Expand([]token.Token{ident("FOO")})
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, names(out))
}

func TestObjectLikeSelfReferenceNotReexpanded(t *testing.T) {
	table := NewTable()
	table.Define(&Symbol{Name: "X", Flags: ObjectLike, Body: []token.Token{ident("X"), op("+"), lit("1")}})
	engine := NewEngine(table)

	out, err := engine.Expand([]token.Token{ident("X")})
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "+", "1"}, names(out))
}

func TestFunctionLikeMacroSubstitution(t *testing.T) {
	table := NewTable()
	table.Define(&Symbol{
		Name:   "ADD",
		Flags:  FunctionLike,
		Params: []string{"a", "b"},
		Body:   []token.Token{ident("a"), op("+"), ident("b")},
	})
	engine := NewEngine(table)

	toks := []token.Token{ident("ADD"), op("("), lit("1"), op(","), lit("2"), op(")")}
	out, err := engine.Expand(toks)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "+", "2"}, names(out))
}

func TestStringizeOperator(t *testing.T) {
	table := NewTable()
	table.Define(&Symbol{
		Name:   "STR",
		Flags:  FunctionLike,
		Params: []string{"x"},
		Body:   []token.Token{op("#"), ident("x")},
	})
	engine := NewEngine(table)

	toks := []token.Token{ident("STR"), op("("), ident("hello"), op(")")}
	out, err := engine.Expand(toks)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, `"hello"`, out[0].Text)
}

func TestPasteOperator(t *testing.T) {
	table := NewTable()
	table.Define(&Symbol{
		Name:   "CAT",
		Flags:  FunctionLike,
		Params: []string{"a", "b"},
		Body:   []token.Token{ident("a"), op("##"), ident("b")},
	})
	engine := NewEngine(table)

	toks := []token.Token{ident("CAT"), op("("), ident("foo"), op(","), ident("bar"), op(")")}
	out, err := engine.Expand(toks)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "foobar", out[0].Text)
	assert.Equal(t, token.Ident, out[0].Kind)
}

func TestVariadicMacroExpansion(t *testing.T) {
	table := NewTable()
	table.Define(&Symbol{
		Name:   "LOG",
		Flags:  FunctionLike | Variadic,
		Params: []string{"fmt"},
		Body:   []token.Token{ident("fmt"), op(","), ident("__VA_ARGS__")},
	})
	engine := NewEngine(table)

	toks := []token.Token{
		ident("LOG"), op("("),
		token.Token{Kind: token.Literal, LiteralKind: token.String, Text: "x", Src: `"x"`}, op(","),
		lit("1"), op(","), lit("2"),
		op(")"),
	}
	out, err := engine.Expand(toks)
	require.NoError(t, err)
	assert.Equal(t, []string{`"x"`, ",", "1", ",", "2"}, srcs(out))
}

func TestGnuCommaPasteDeletesCommaWhenVariadicEmpty(t *testing.T) {
	table := NewTable()
	table.Define(&Symbol{
		Name:   "LOG",
		Flags:  FunctionLike | Variadic,
		Params: []string{"fmt"},
		Body: []token.Token{
			ident("fmt"), op(","), op("##"), ident("__VA_ARGS__"),
		},
	})
	engine := NewEngine(table)

	toks := []token.Token{
		ident("LOG"), op("("),
		token.Token{Kind: token.Literal, LiteralKind: token.String, Text: "x", Src: `"x"`},
		op(")"),
	}
	out, err := engine.Expand(toks)
	require.NoError(t, err)
	assert.Equal(t, []string{`"x"`}, srcs(out))
}

func TestUndefRemovesSymbol(t *testing.T) {
	table := NewTable()
	table.Define(&Symbol{Name: "FOO", Flags: ObjectLike, Body: []token.Token{lit("1")}})
	assert.True(t, table.Defined("FOO"))
	assert.True(t, table.Undef("FOO"))
	assert.False(t, table.Defined("FOO"))
	assert.False(t, table.Undef("FOO"))
}

func srcs(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Src
	}
	return out
}
