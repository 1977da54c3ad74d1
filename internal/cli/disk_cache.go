package cli

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/toyz/buildergen/internal/utils"
)

// bump when CacheEntry or the generated output changes shape
const diskCacheSchemaVersion uint16 = 1

// Digest identifies the inputs of one package generation
type Digest [sha256.Size]byte

// String returns the hex form of the digest
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// CacheEntry is the stored result of generating one package
type CacheEntry struct {
	Schema      uint16
	PackageName string
	Records     []string // records that received a builder, empty when the package has none
	Content     []byte   // formatted generated file
}

// DiskCache stores generation results keyed by the digest of their inputs.
// A nil *DiskCache is a valid, always-missing cache.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache creates the cache directory if needed
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, utils.WrapLoadError("cache directory "+dir, err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// PackageDigest hashes everything that influences the generated file of a
// package: the tool version, the output name and every source file
func PackageDigest(version, outputName string, files map[string][]byte) Digest {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	writeField := func(b []byte) {
		var size [8]byte
		binary.LittleEndian.PutUint64(size[:], uint64(len(b)))
		h.Write(size[:])
		h.Write(b)
	}

	writeField([]byte(version))
	writeField([]byte(outputName))
	for _, name := range names {
		writeField([]byte(filepath.Base(name)))
		writeField(files[name])
	}

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "pkgs", hexKey[:2], hexKey+".mp")
}

// Put serializes and atomically writes an entry
func (c *DiskCache) Put(key Digest, entry *CacheEntry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.Schema = diskCacheSchemaVersion
	data, err := msgpack.Marshal(entry)
	if err != nil {
		return utils.WrapWriteError("cache entry", err)
	}

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return utils.WrapWriteError(p, err)
	}
	return utils.WriteFileAtomic(p, data, 0o644)
}

// Get reads an entry. Entries written by another schema version count as misses.
func (c *DiskCache) Get(key Digest) (*CacheEntry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, utils.WrapLoadError("cache entry", err)
	}

	var entry CacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, false, utils.WrapParseError("cache entry", err)
	}
	if entry.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	return &entry, true, nil
}

// DropAll removes every cached entry
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return os.RemoveAll(filepath.Join(c.dir, "pkgs"))
}
