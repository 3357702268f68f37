package constexpr

import (
	"testing"

	"github.com/ccfront/ccfront/cc/token"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	values  map[string]int64
	defines map[string]bool
	headers map[string]bool
}

func (e testEnv) Lookup(name string) (int64, bool) {
	v, ok := e.values[name]
	return v, ok
}

func (e testEnv) Defined(name string) bool {
	return e.defines[name]
}

func (e testEnv) HasInclude(path string, angleBracket bool) bool {
	return e.headers[path]
}

func lit(text string, kind token.LiteralKind) token.Token {
	return token.Token{Kind: token.Literal, LiteralKind: kind, Text: text, Src: text}
}

func ident(name string) token.Token {
	return token.Token{Kind: token.Ident, Text: name, Src: name}
}

func op(text string) token.Token {
	return token.Token{Kind: token.Operator, Text: text, Src: text}
}

func TestParseAndEvalArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 == 7
	toks := []token.Token{
		lit("1", token.Int), op("+"), lit("2", token.Int), op("*"), lit("3", token.Int),
	}
	expr, err := Parse(toks)
	require.NoError(t, err)
	v, err := expr.Eval(testEnv{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

// TestParseBuildsPrecedenceShapedTree pins down the parsed AST's shape
// directly, rather than only its evaluated result: "1 + 2 * 3" must parse
// as addition of 1 and the product subtree, never as (1+2)*3, even though
// a handful of inputs would evaluate to the same number either way.
func TestParseBuildsPrecedenceShapedTree(t *testing.T) {
	toks := []token.Token{
		lit("1", token.Int), op("+"), lit("2", token.Int), op("*"), lit("3", token.Int),
	}
	expr, err := Parse(toks)
	require.NoError(t, err)

	want := BinaryOp{
		Op: "+",
		L:  ConstantInt{Value: 1},
		R:  BinaryOp{Op: "*", L: ConstantInt{Value: 2}, R: ConstantInt{Value: 3}},
	}
	if diff := cmp.Diff(want, expr); diff != "" {
		t.Errorf("Parse(1 + 2 * 3) tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseParentheses(t *testing.T) {
	// (1 + 2) * 3 == 9
	toks := []token.Token{
		op("("), lit("1", token.Int), op("+"), lit("2", token.Int), op(")"), op("*"), lit("3", token.Int),
	}
	expr, err := Parse(toks)
	require.NoError(t, err)
	v, err := expr.Eval(testEnv{})
	require.NoError(t, err)
	assert.Equal(t, int64(9), v)
}

func TestShortCircuitAndOr(t *testing.T) {
	// 0 && (1/0)  -- must not evaluate the divisor
	toks := []token.Token{
		lit("0", token.Int), op("&&"), op("("), lit("1", token.Int), op("/"), lit("0", token.Int), op(")"),
	}
	expr, err := Parse(toks)
	require.NoError(t, err)
	v, err := expr.Eval(testEnv{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestDefinedOperator(t *testing.T) {
	testCases := []struct {
		toks     []token.Token
		defined  map[string]bool
		expected int64
	}{
		{[]token.Token{ident("defined"), ident("FOO")}, map[string]bool{"FOO": true}, 1},
		{[]token.Token{ident("defined"), op("("), ident("FOO"), op(")")}, map[string]bool{}, 0},
	}
	for _, tc := range testCases {
		expr, err := Parse(tc.toks)
		require.NoError(t, err)
		v, err := expr.Eval(testEnv{defines: tc.defined})
		require.NoError(t, err)
		assert.Equal(t, tc.expected, v)
	}
}

func TestUndefinedIdentifierEvaluatesToZero(t *testing.T) {
	expr, err := Parse([]token.Token{ident("UNKNOWN")})
	require.NoError(t, err)
	v, err := expr.Eval(testEnv{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestHexAndOctalLiterals(t *testing.T) {
	testCases := []struct {
		text     string
		expected int64
	}{
		{"0x1F", 31},
		{"010", 8},
		{"0", 0},
		{"42u", 42},
		{"42UL", 42},
	}
	for _, tc := range testCases {
		v, err := parseIntLiteral(tc.text)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, v, tc.text)
	}
}

func TestBitwiseAndShiftPrecedence(t *testing.T) {
	// 1 << 2 | 1 == 5   (shift binds tighter than |)
	toks := []token.Token{
		lit("1", token.Int), op("<<"), lit("2", token.Int), op("|"), lit("1", token.Int),
	}
	expr, err := Parse(toks)
	require.NoError(t, err)
	v, err := expr.Eval(testEnv{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestComparisonAndEquality(t *testing.T) {
	// 3 > 2 == 1
	toks := []token.Token{
		lit("3", token.Int), op(">"), lit("2", token.Int), op("=="), lit("1", token.Int),
	}
	expr, err := Parse(toks)
	require.NoError(t, err)
	v, err := expr.Eval(testEnv{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestUnaryOperators(t *testing.T) {
	// !0 + -5 == -4
	toks := []token.Token{
		op("!"), lit("0", token.Int), op("+"), op("-"), lit("5", token.Int),
	}
	expr, err := Parse(toks)
	require.NoError(t, err)
	v, err := expr.Eval(testEnv{})
	require.NoError(t, err)
	assert.Equal(t, int64(-4), v)
}

func TestHasIncludeOperator(t *testing.T) {
	toks := []token.Token{
		ident("__has_include"), op("("), op("<"), token.Token{Kind: token.Ident, Text: "stdio", Src: "stdio"},
		op("."), token.Token{Kind: token.Ident, Text: "h", Src: "h"}, op(">"), op(")"),
	}
	expr, err := Parse(toks)
	require.NoError(t, err)
	v, err := expr.Eval(testEnv{headers: map[string]bool{"stdio.h": true}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestDivisionByZeroError(t *testing.T) {
	toks := []token.Token{lit("1", token.Int), op("/"), lit("0", token.Int)}
	expr, err := Parse(toks)
	require.NoError(t, err)
	_, err = expr.Eval(testEnv{})
	assert.Error(t, err)
}
