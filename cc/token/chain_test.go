package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ident(name string) Token {
	return Token{Kind: Ident, Text: name}
}

func TestChainPushBackAndTokens(t *testing.T) {
	c := New()
	assert.True(t, c.Empty())
	c.PushBack(ident("a"))
	c.PushBack(ident("b"))
	c.PushBack(ident("c"))
	assert.False(t, c.Empty())
	assert.Equal(t, 3, c.Len())

	var names []string
	for n := range c.All() {
		names = append(names, n.Token.Text)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestChainFromTokens(t *testing.T) {
	c := FromTokens([]Token{ident("x"), ident("y")})
	assert.Equal(t, []Token{ident("x"), ident("y")}, c.Tokens())
}

func TestChainSpliceWithinSameChain(t *testing.T) {
	c := New()
	a := c.PushBack(ident("a"))
	b := c.PushBack(ident("b"))
	_ = b
	c.PushBack(ident("c"))
	d := c.PushBack(ident("d"))

	// move run [b,c] to before d -> a b c d stays a b c d (no-op check)
	// instead move [b] to the front.
	bNode := c.Next(a)
	c.Splice(c.Front(), bNode, bNode)

	names := []string{}
	for n := range c.All() {
		names = append(names, n.Token.Text)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, names)
}

func TestChainSpliceAcrossChains(t *testing.T) {
	src := FromTokens([]Token{ident("1"), ident("2"), ident("3")})
	dst := FromTokens([]Token{ident("x"), ident("y")})

	first := src.Front()
	last := src.Back()
	mark := dst.Front() // insert before "x"
	dst.Splice(mark, first, last)

	assert.Equal(t, []string{"1", "2", "3", "x", "y"}, namesOf(dst))
}

func TestChainSpliceAll(t *testing.T) {
	src := FromTokens([]Token{ident("1"), ident("2")})
	dst := FromTokens([]Token{ident("a")})
	dst.SpliceAll(src)
	assert.Equal(t, []string{"a", "1", "2"}, namesOf(dst))
	assert.True(t, src.Empty())
}

func TestChainInsertBeforeAndRemove(t *testing.T) {
	c := FromTokens([]Token{ident("a"), ident("c")})
	mark := c.Back()
	c.InsertBefore(ident("b"), mark)
	assert.Equal(t, []string{"a", "b", "c"}, namesOf(c))

	c.Remove(c.Front())
	assert.Equal(t, []string{"b", "c"}, namesOf(c))
}

func namesOf(c *Chain) []string {
	var names []string
	for n := range c.All() {
		names = append(names, n.Token.Text)
	}
	return names
}
