package macro

import (
	"testing"

	"github.com/ccfront/ccfront/cc/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinFileAndLine(t *testing.T) {
	table := NewTable()
	ctx := &Context{File: "main.c", Line: 7}
	RegisterBuiltins(table, ctx)
	engine := NewEngine(table)

	out, err := engine.Expand([]token.Token{ident("__FILE__")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "main.c", out[0].Text)

	out, err = engine.Expand([]token.Token{ident("__LINE__")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "7", out[0].Text)
}

func TestBuiltinDefined(t *testing.T) {
	table := NewTable()
	table.Define(&Symbol{Name: "FOO", Flags: ObjectLike, Body: []token.Token{lit("1")}})
	ctx := &Context{}
	RegisterBuiltins(table, ctx)
	engine := NewEngine(table)

	toks := []token.Token{ident("defined"), op("("), ident("FOO"), op(")")}
	out, err := engine.Expand(toks)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].Text)

	toks = []token.Token{ident("defined"), op("("), ident("BAR"), op(")")}
	out, err = engine.Expand(toks)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "0", out[0].Text)
}

func TestBuiltinDefinedNoParens(t *testing.T) {
	table := NewTable()
	table.Define(&Symbol{Name: "FOO", Flags: ObjectLike, Body: []token.Token{lit("1")}})
	ctx := &Context{}
	RegisterBuiltins(table, ctx)
	engine := NewEngine(table)

	toks := []token.Token{ident("defined"), ident("FOO")}
	out, err := engine.Expand(toks)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].Text)

	toks = []token.Token{ident("defined"), ident("BAR")}
	out, err = engine.Expand(toks)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "0", out[0].Text)
}

func TestBuiltinHasInclude(t *testing.T) {
	table := NewTable()
	ctx := &Context{
		HasIncludeFn: func(path string, angleBracket, next bool) bool {
			return path == "stdio.h"
		},
	}
	RegisterBuiltins(table, ctx)
	engine := NewEngine(table)

	toks := []token.Token{
		ident("__has_include"), op("("), op("<"),
		token.Token{Kind: token.Ident, Text: "stdio.h", Src: "stdio.h"}, op(">"), op(")"),
	}
	out, err := engine.Expand(toks)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].Text)
}

func TestRegisterBuiltinsMarksBuiltinSet(t *testing.T) {
	table := NewTable()
	RegisterBuiltins(table, &Context{})
	assert.True(t, table.HasBuiltin("__FILE__"))
	assert.True(t, table.HasBuiltin("defined"))
	assert.False(t, table.HasBuiltin("FOO"))
}
