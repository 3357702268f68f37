// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package token

import "iter"

// Node is one element of a Chain: a Token plus its links. Nodes are owned
// by exactly one Chain at a time under a single-threaded reference
// discipline (no node is ever shared between two chains simultaneously) —
// splicing a run of nodes out of one Chain and into another transfers
// ownership rather than copying.
type Node struct {
	Token      Token
	prev, next *Node
}

// Chain is a cyclic doubly-linked list of Nodes with one sentinel head per
// chain, giving O(1) PushBack/Splice regardless of chain length, so a run
// of tokens can be cut out of one chain and pasted into another without
// an O(n) copy. The macro engine itself works on []Token slices and does
// not use Chain.
type Chain struct {
	sentinel Node
}

// New returns an empty Chain.
func New() *Chain {
	c := &Chain{}
	c.sentinel.next = &c.sentinel
	c.sentinel.prev = &c.sentinel
	return c
}

// Empty reports whether the chain has no nodes.
func (c *Chain) Empty() bool {
	return c.sentinel.next == &c.sentinel
}

// Front returns the first node, or nil if the chain is empty.
func (c *Chain) Front() *Node {
	if c.Empty() {
		return nil
	}
	return c.sentinel.next
}

// Back returns the last node, or nil if the chain is empty.
func (c *Chain) Back() *Node {
	if c.Empty() {
		return nil
	}
	return c.sentinel.prev
}

// End reports whether n has been fully walked off the chain (i.e. is the
// sentinel), the condition callers use to stop a prev/next walk.
func (c *Chain) End(n *Node) bool {
	return n == &c.sentinel
}

// PushBack appends a new Node wrapping tok and returns it.
func (c *Chain) PushBack(tok Token) *Node {
	n := &Node{Token: tok}
	c.insertBefore(n, &c.sentinel)
	return n
}

// PushFront prepends a new Node wrapping tok and returns it.
func (c *Chain) PushFront(tok Token) *Node {
	n := &Node{Token: tok}
	c.insertBefore(n, c.sentinel.next)
	return n
}

// InsertBefore inserts a new Node wrapping tok immediately before mark and
// returns it. mark must belong to c.
func (c *Chain) InsertBefore(tok Token, mark *Node) *Node {
	n := &Node{Token: tok}
	c.insertBefore(n, mark)
	return n
}

func (c *Chain) insertBefore(n, mark *Node) {
	n.prev = mark.prev
	n.next = mark
	mark.prev.next = n
	mark.prev = n
}

// Remove unlinks n from the chain.
func (c *Chain) Remove(n *Node) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

// Splice cuts the run [first, last] (inclusive, both belonging to src) out
// of src and inserts it into c immediately before mark, in O(1). src and
// mark's chain may be the same Chain or different chains; first/last must
// be a contiguous run reachable from each other via next.
func (c *Chain) Splice(mark *Node, first, last *Node) {
	// unlink [first, last] from its current chain
	first.prev.next = last.next
	last.next.prev = first.prev

	// splice into c before mark
	first.prev = mark.prev
	last.next = mark
	mark.prev.next = first
	mark.prev = last
}

// SpliceAll cuts every node out of src (leaving it empty) and appends it
// to the end of c, in O(1).
func (c *Chain) SpliceAll(src *Chain) {
	if src.Empty() {
		return
	}
	first := src.sentinel.next
	last := src.sentinel.prev
	src.sentinel.next = &src.sentinel
	src.sentinel.prev = &src.sentinel

	c.Splice(&c.sentinel, first, last)
}

// All iterates every token in the chain from front to back.
func (c *Chain) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := c.sentinel.next; n != &c.sentinel; n = n.next {
			if !yield(n) {
				return
			}
		}
	}
}

// Next returns the node after n, or nil if n is the last node.
func (c *Chain) Next(n *Node) *Node {
	if n.next == &c.sentinel {
		return nil
	}
	return n.next
}

// Prev returns the node before n, or nil if n is the first node.
func (c *Chain) Prev(n *Node) *Node {
	if n.prev == &c.sentinel {
		return nil
	}
	return n.prev
}

// Len counts the nodes in the chain; O(n), intended for tests/diagnostics
// rather than hot paths.
func (c *Chain) Len() int {
	n := 0
	for range c.All() {
		n++
	}
	return n
}

// Tokens materializes the chain's tokens into a slice; intended for tests
// and for handing a finished chain to a caller that wants a snapshot.
func (c *Chain) Tokens() []Token {
	toks := make([]Token, 0, c.Len())
	for n := range c.All() {
		toks = append(toks, n.Token)
	}
	return toks
}

// FromTokens builds a new Chain containing one Node per element of toks,
// in order.
func FromTokens(toks []Token) *Chain {
	c := New()
	for _, t := range toks {
		c.PushBack(t)
	}
	return c
}
