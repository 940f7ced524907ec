// Package cache provides incremental compilation caching: a sha256
// source-hash table (as the teacher's internal/cache did) extended with
// a gob-encoded blob of the compiled []*vm.FrameTemplate per source
// file, so `cmd/mypl watch` can skip both parsing and code generation
// when a saved file's hash is unchanged.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/CalebLefcort/mypl/pkg/vm"
)

// Cache stores file hashes, and each hash's compiled output, for
// incremental compilation.
type Cache struct {
	Hashes   map[string]string `json:"hashes"`
	Compiled map[string][]byte `json:"compiled"` // hash -> gob-encoded []*vm.FrameTemplate
	path     string
}

// New creates a new cache
func New(cachePath string) *Cache {
	return &Cache{
		Hashes:   make(map[string]string),
		Compiled: make(map[string][]byte),
		path:     cachePath,
	}
}

// Load loads the cache from disk
func Load(cachePath string) (*Cache, error) {
	c := New(cachePath)

	data, err := os.ReadFile(cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil // Empty cache is fine
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	payload := struct {
		Hashes   map[string]string
		Compiled map[string][]byte
	}{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse cache: %w", err)
	}
	if payload.Hashes != nil {
		c.Hashes = payload.Hashes
	}
	if payload.Compiled != nil {
		c.Compiled = payload.Compiled
	}

	return c, nil
}

// Save saves the cache to disk
func (c *Cache) Save() error {
	// Create cache directory if it doesn't exist
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	payload := struct {
		Hashes   map[string]string
		Compiled map[string][]byte
	}{c.Hashes, c.Compiled}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}

	return nil
}

// StoreTemplates gob-encodes templates and associates them with srcPath's
// current content hash, so a later LoadTemplates call for an unchanged
// file skips parse, analyze, and codegen entirely.
func (c *Cache) StoreTemplates(srcPath string, templates map[string]*vm.FrameTemplate) error {
	hash, ok := c.Hashes[srcPath]
	if !ok {
		return fmt.Errorf("no recorded hash for %s; call NeedsRegeneration first", srcPath)
	}
	list := make([]*vm.FrameTemplate, 0, len(templates))
	for _, t := range templates {
		list = append(list, t)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(list); err != nil {
		return fmt.Errorf("failed to encode compiled templates: %w", err)
	}
	if c.Compiled == nil {
		c.Compiled = make(map[string][]byte)
	}
	c.Compiled[hash] = buf.Bytes()
	return nil
}

// LoadTemplates returns the previously cached templates for srcPath's
// current content hash, if its source is unchanged and a compiled blob
// was stored for that hash.
func (c *Cache) LoadTemplates(srcPath string) (map[string]*vm.FrameTemplate, bool) {
	hash, ok := c.Hashes[srcPath]
	if !ok {
		return nil, false
	}
	blob, ok := c.Compiled[hash]
	if !ok {
		return nil, false
	}
	var list []*vm.FrameTemplate
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&list); err != nil {
		return nil, false
	}
	out := make(map[string]*vm.FrameTemplate, len(list))
	for _, t := range list {
		out[t.ID] = t
	}
	return out, true
}

// NeedsRegeneration checks if a file needs to be regenerated
func (c *Cache) NeedsRegeneration(srcPath string) (bool, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return true, err
	}

	hash := sha256.Sum256(data)
	currentHash := hex.EncodeToString(hash[:])

	cached, exists := c.Hashes[srcPath]
	if !exists || cached != currentHash {
		c.Hashes[srcPath] = currentHash
		return true, nil
	}

	return false, nil
}

// UpdateHash updates the hash for a file
func (c *Cache) UpdateHash(srcPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}

	hash := sha256.Sum256(data)
	c.Hashes[srcPath] = hex.EncodeToString(hash[:])
	return nil
}

// Remove removes a file from the cache
func (c *Cache) Remove(srcPath string) {
	delete(c.Hashes, srcPath)
}

// Clear clears all entries from the cache
func (c *Cache) Clear() {
	c.Hashes = make(map[string]string)
}
