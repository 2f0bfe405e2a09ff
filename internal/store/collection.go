package store

import (
	"encoding/json"
	"os"
	"sync"
)

// collection is a file-backed document collection. The backing file is read
// in full on first access and rewritten in full on every mutation. A missing
// or corrupt file is treated as an empty collection. The mutex serializes
// all access: the stores assume one logical writer per record, and callers
// go through this single owner.
type collection[T any] struct {
	mu     sync.Mutex
	path   string
	loaded bool
	items  []T
}

func newCollection[T any](path string) *collection[T] {
	return &collection[T]{path: path}
}

// load populates items from the backing file once. Callers must hold mu.
func (c *collection[T]) load() {
	if c.loaded {
		return
	}
	c.loaded = true

	data, err := os.ReadFile(c.path)
	if err != nil {
		c.items = nil
		return
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.items = nil
		return
	}
	c.items = items
}

// save rewrites the backing file from items. Callers must hold mu.
func (c *collection[T]) save() error {
	data, err := json.MarshalIndent(c.items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// view runs fn with read access to the loaded items.
func (c *collection[T]) view(fn func(items []T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load()
	return fn(c.items)
}

// mutate runs fn against the loaded items and persists the result. fn
// returns the new item slice; a returned error aborts without writing.
func (c *collection[T]) mutate(fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load()
	items, err := fn(c.items)
	if err != nil {
		return err
	}
	c.items = items
	return c.save()
}
