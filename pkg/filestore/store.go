// Package filestore is the in-memory file system behind the FTP stub.
//
// Entries map a flat file name to its bytes. Names keep the order in which
// they were first stored, and an entry is only removed by an explicit Delete.
// A Store is safe for concurrent use: FTP sessions write to it while the test
// goroutine reads from it.
package filestore

import (
	"io"
	"os"
	"slices"
	"sync"
	"time"
)

// FileInfo describes a stored entry.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

type entry struct {
	data    []byte
	modTime time.Time
}

// Store is a concurrency-safe mapping from file name to content.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	now     func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Store creates name or replaces its content with a copy of content.
func (s *Store) Store(name string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(name, slices.Clone(content))
}

func (s *Store) put(name string, data []byte) *entry {
	if data == nil {
		data = []byte{}
	}
	e, ok := s.entries[name]
	if !ok {
		e = &entry{}
		s.entries[name] = e
		s.order = append(s.order, name)
	}
	e.data = data
	e.modTime = s.now()
	return e
}

// Retrieve returns a copy of the content stored under name.
func (s *Store) Retrieve(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(e.data), true
}

// Contains reports whether name has been stored.
func (s *Store) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[name]
	return ok
}

// List returns the stored names in the order they were first stored.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Stat describes the entry stored under name.
func (s *Store) Stat(name string) (FileInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return FileInfo{}, false
	}
	return FileInfo{Name: name, Size: int64(len(e.data)), ModTime: e.modTime}, true
}

// Entries describes every stored entry in List order.
func (s *Store) Entries() []FileInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]FileInfo, 0, len(s.order))
	for _, name := range s.order {
		e := s.entries[name]
		infos = append(infos, FileInfo{Name: name, Size: int64(len(e.data)), ModTime: e.modTime})
	}
	return infos
}

// Delete removes name and reports whether it existed.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return false
	}
	delete(s.entries, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return true
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Create truncates name, creating it if needed, and returns a writer that
// appends to it. Each Write is visible to readers as soon as it returns.
func (s *Store) Create(name string) io.WriteCloser {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(name, nil)
	return &fileWriter{store: s, name: name}
}

// Append returns a writer that appends to name, creating it if needed.
func (s *Store) Append(name string) io.WriteCloser {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		s.put(name, nil)
	}
	return &fileWriter{store: s, name: name}
}

type fileWriter struct {
	store  *Store
	name   string
	closed bool
}

func (w *fileWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[w.name]
	if !ok {
		// Deleted while open.
		e = s.put(w.name, nil)
	}
	e.data = append(e.data, p...)
	e.modTime = s.now()
	return len(p), nil
}

func (w *fileWriter) Close() error {
	if w.closed {
		return os.ErrClosed
	}
	w.closed = true
	return nil
}
