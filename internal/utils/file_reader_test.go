package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderSource = `package shop

//builder:derive
type Order struct {
	//builder(required)
	ID int
}
`

func TestFileReader_ParseGoFileCaching(t *testing.T) {
	path := writeSource(t, "order.go", orderSource)

	reader := NewFileReader()

	first, err := reader.ParseGoFile(path)
	require.NoError(t, err)
	second, err := reader.ParseGoFile(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.NoError(t, os.WriteFile(path, []byte(orderSource+"\ntype Line struct{}\n"), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	third, err := reader.ParseGoFile(path)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Len(t, third.Decls, 2)
}

func TestFileReader_ParseGoFileSharesReadFileContent(t *testing.T) {
	path := writeSource(t, "order.go", orderSource)

	reader := NewFileReader()
	content, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, orderSource, content)

	_, err = reader.ParseGoFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reader.contents.len())
	assert.Equal(t, 1, reader.syntax.len())
}

func TestFileReader_ParseKeepsComments(t *testing.T) {
	path := writeSource(t, "order.go", orderSource)

	file, err := NewFileReader().ParseGoFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, file.Comments)
}

func TestFileReader_InvalidateFile(t *testing.T) {
	path := writeSource(t, "order.go", orderSource)

	reader := NewFileReader()
	first, err := reader.ParseGoFile(path)
	require.NoError(t, err)

	reader.InvalidateFile(path)
	assert.Zero(t, reader.contents.len())
	assert.Zero(t, reader.syntax.len())

	second, err := reader.ParseGoFile(path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestFileReader_InvalidPaths(t *testing.T) {
	reader := NewFileReader()

	_, err := reader.ParseGoFile("")
	assert.ErrorContains(t, err, "file path cannot be empty")

	_, err = reader.ParseGoFile(filepath.Join(t.TempDir(), "missing.go"))
	assert.ErrorContains(t, err, "file does not exist")

	_, err = reader.ReadFile("  ")
	assert.Error(t, err)
}

func TestFileReader_ParseErrors(t *testing.T) {
	reader := NewFileReader()

	file, err := reader.ParseGoSource("inline.go", orderSource)
	require.NoError(t, err)
	assert.Equal(t, "shop", file.Name.Name)

	_, err = reader.ParseGoSource("broken.go", "package shop\nfunc {")
	assert.ErrorContains(t, err, "failed to parse Go source")

	path := writeSource(t, "broken.go", "package shop\nfunc {")
	_, err = reader.ParseGoFile(path)
	assert.ErrorContains(t, err, "failed to parse Go file broken.go")
	assert.Zero(t, reader.syntax.len())
}
