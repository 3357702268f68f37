package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileOpenSplitsLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.h", "one\ntwo\nthree")

	f, err := Open(path, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, f.Lines)
	assert.False(t, f.Sys)
	assert.Equal(t, path, f.DisplayName)
}

func TestFileCursorAdvance(t *testing.T) {
	f := FromLines("<define>", []string{"a", "b"})
	line, ok := f.CurrentLine()
	assert.True(t, ok)
	assert.Equal(t, "a", line)
	f.Advance()
	line, ok = f.CurrentLine()
	assert.True(t, ok)
	assert.Equal(t, "b", line)
	f.Advance()
	_, ok = f.CurrentLine()
	assert.False(t, ok)
	assert.True(t, f.AtEOF())
}

func TestStackResolveQuoted(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "a.h", "content-a")
	includedPath := writeFile(t, sub, "b.h", "content-b")

	primary, err := Open(includedPath, false)
	require.NoError(t, err)

	stack := NewStack()
	stack.Push(primary)

	resolved, err := stack.Resolve("a.h", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"content-a"}, resolved.Lines)
}

func TestStackResolveNextSkipsProducingDir(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	writeFile(t, dir1, "h.h", "from-dir1")
	writeFile(t, dir2, "h.h", "from-dir2")

	stack := NewStack()
	stack.AddSystemIncludeDir(dir1)
	stack.AddSystemIncludeDir(dir2)

	first, err := stack.Resolve("h.h", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"from-dir1"}, first.Lines)
	stack.Push(first)

	next, err := stack.ResolveNext("h.h")
	require.NoError(t, err)
	assert.Equal(t, []string{"from-dir2"}, next.Lines)
}

func TestStackDepthAndPrimary(t *testing.T) {
	stack := NewStack()
	assert.Equal(t, 0, stack.Depth())
	assert.Nil(t, stack.Primary())

	f1 := FromLines("primary.c", nil)
	f2 := FromLines("header.h", nil)
	stack.Push(f1)
	stack.Push(f2)
	assert.Equal(t, 2, stack.Depth())
	assert.Equal(t, f1, stack.Primary())
	assert.Equal(t, f2, stack.Top())

	assert.Equal(t, f2, stack.Pop())
	assert.Equal(t, 1, stack.Depth())
}

func TestSameFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "x.h", "x")
	a, err := Open(path, false)
	require.NoError(t, err)
	b, err := Open(path, false)
	require.NoError(t, err)
	assert.True(t, SameFile(a, b))

	other := FromLines("synthetic", nil)
	assert.False(t, SameFile(a, other))
}
