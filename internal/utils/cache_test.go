package utils

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStampedCache_ServesUnchangedFile(t *testing.T) {
	path := writeSource(t, "model.go", "package model\n")

	cache := newStampedCache[string]()
	cache.store(path, "parsed")

	value, ok := cache.load(path)
	require.True(t, ok)
	assert.Equal(t, "parsed", value)

	cache.forget(path)
	_, ok = cache.load(path)
	assert.False(t, ok)
}

func TestStampedCache_DropsChangedFile(t *testing.T) {
	path := writeSource(t, "model.go", "package model\n")

	cache := newStampedCache[string]()
	cache.store(path, "parsed")

	require.NoError(t, os.WriteFile(path, []byte("package model\n\ntype Order struct{}\n"), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	_, ok := cache.load(path)
	assert.False(t, ok)
	assert.Zero(t, cache.len())
}

func TestStampedCache_DropsSameSizeRewriteWithNewMtime(t *testing.T) {
	path := writeSource(t, "model.go", "package aaaaa\n")

	cache := newStampedCache[int]()
	cache.store(path, 1)

	require.NoError(t, os.WriteFile(path, []byte("package bbbbb\n"), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	_, ok := cache.load(path)
	assert.False(t, ok)
}

func TestStampedCache_MissingFile(t *testing.T) {
	path := writeSource(t, "gone.go", "package gone\n")

	cache := newStampedCache[int]()
	cache.store(path, 1)
	require.NoError(t, os.Remove(path))

	_, ok := cache.load(path)
	assert.False(t, ok)

	cache.store(path, 2)
	assert.Zero(t, cache.len())
}

func TestStampedCache_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 8)
	for i := range paths {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".go")
		require.NoError(t, os.WriteFile(paths[i], []byte("package shop\n"), 0o644))
	}

	cache := newStampedCache[int]()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				path := paths[(n+j)%len(paths)]
				cache.store(path, j)
				cache.load(path)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(paths), cache.len())
}
