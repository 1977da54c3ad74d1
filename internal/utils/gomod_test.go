package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoModParser_FindModule(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":        "module example.com/shop\n\ngo 1.25\n",
		"orders/x.go":   "package orders",
		"orders/deep/y": "",
	})

	parser := NewGoModParser(NewFileReader())

	info, err := parser.FindModule(filepath.Join(root, "orders", "deep"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", info.Path)
	assert.Equal(t, "1.25", info.GoVersion)

	wantDir, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(info.Dir)
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)

	name, err := parser.ParseModuleName(filepath.Join(root, "go.mod"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", name)
}

func TestGoModParser_Errors(t *testing.T) {
	root := t.TempDir()
	parser := NewGoModParser(NewFileReader())

	_, err := parser.ParseModule(filepath.Join(root, "mod.txt"))
	assert.ErrorContains(t, err, "not a go.mod file")

	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("go 1.25\n"), 0o644))
	_, err = parser.ParseModule(filepath.Join(root, "go.mod"))
	assert.ErrorContains(t, err, "no module declaration")

	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module (\n"), 0o644))
	_, err = parser.ParseModule(filepath.Join(root, "go.mod"))
	assert.ErrorContains(t, err, "failed to parse go.mod")
}
