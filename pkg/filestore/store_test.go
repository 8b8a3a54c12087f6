package filestore

import (
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_StoreRetrieve(t *testing.T) {
	s := New()
	s.Store("foo.txt", []byte("cant believe its not bitter\r\n"))

	got, ok := s.Retrieve("foo.txt")
	require.True(t, ok)
	assert.Equal(t, "cant believe its not bitter\r\n", string(got))

	got[0] = 'X'
	again, _ := s.Retrieve("foo.txt")
	assert.Equal(t, byte('c'), again[0], "Retrieve must return a copy")
}

func TestStore_StoreCopiesInput(t *testing.T) {
	s := New()
	buf := []byte("abc")
	s.Store("a", buf)
	buf[0] = 'z'

	got, _ := s.Retrieve("a")
	assert.Equal(t, "abc", string(got))
}

func TestStore_NeverStored(t *testing.T) {
	s := New()

	assert.False(t, s.Contains("missing.txt"))
	got, ok := s.Retrieve("missing.txt")
	assert.False(t, ok)
	assert.Nil(t, got)
	_, ok = s.Stat("missing.txt")
	assert.False(t, ok)
	assert.False(t, s.Delete("missing.txt"))
}

func TestStore_OverwriteKeepsOrder(t *testing.T) {
	s := New()
	s.Store("robot.txt", []byte("one"))
	s.Store("monster.txt", []byte("two"))
	s.Store("robot.txt", []byte("three"))

	assert.Equal(t, []string{"robot.txt", "monster.txt"}, s.List())
	got, _ := s.Retrieve("robot.txt")
	assert.Equal(t, "three", string(got))
	assert.Equal(t, 2, s.Len())
}

func TestStore_EmptyContent(t *testing.T) {
	s := New()
	s.Store("empty", nil)

	got, ok := s.Retrieve("empty")
	require.True(t, ok)
	assert.Empty(t, got)
	assert.True(t, s.Contains("empty"))
}

func TestStore_StatAndEntries(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New()
	s.now = func() time.Time { return fixed }

	s.Store("a.txt", []byte("12345"))
	s.Store("b.txt", []byte(""))

	info, ok := s.Stat("a.txt")
	require.True(t, ok)
	assert.Equal(t, FileInfo{Name: "a.txt", Size: 5, ModTime: fixed}, info)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, "b.txt", entries[1].Name)
	assert.Equal(t, int64(0), entries[1].Size)
}

func TestStore_Delete(t *testing.T) {
	s := New()
	s.Store("a", []byte("1"))
	s.Store("b", []byte("2"))

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Contains("a"))
	assert.Equal(t, []string{"b"}, s.List())
}

func TestStore_CreateTruncatesAndAppends(t *testing.T) {
	s := New()
	s.Store("foo.txt", []byte("old content"))

	w := s.Create("foo.txt")
	got, ok := s.Retrieve("foo.txt")
	require.True(t, ok, "entry exists as soon as Create returns")
	assert.Empty(t, got)

	_, err := io.WriteString(w, "line 1\r\n")
	require.NoError(t, err)
	_, err = io.WriteString(w, "line 2\r\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, _ = s.Retrieve("foo.txt")
	assert.Equal(t, "line 1\r\nline 2\r\n", string(got))

	_, err = w.Write([]byte("late"))
	assert.Error(t, err)
	assert.Error(t, w.Close())
}

func TestStore_Append(t *testing.T) {
	s := New()
	s.Store("log.txt", []byte("a"))

	w := s.Append("log.txt")
	_, _ = io.WriteString(w, "b")
	require.NoError(t, w.Close())

	w = s.Append("new.txt")
	_, _ = io.WriteString(w, "c")
	require.NoError(t, w.Close())

	got, _ := s.Retrieve("log.txt")
	assert.Equal(t, "ab", string(got))
	got, _ = s.Retrieve("new.txt")
	assert.Equal(t, "c", string(got))
}

func TestStore_WriteAfterDelete(t *testing.T) {
	s := New()
	w := s.Create("x")
	s.Delete("x")

	_, err := io.WriteString(w, "data")
	require.NoError(t, err)
	got, ok := s.Retrieve("x")
	require.True(t, ok)
	assert.Equal(t, "data", string(got))
}

func TestStore_ConcurrentWriters(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("file-%d.txt", i)
			w := s.Create(name)
			for range 50 {
				_, _ = io.WriteString(w, "x")
			}
			_ = w.Close()
			_ = s.List()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
	for _, info := range s.Entries() {
		assert.Equal(t, int64(50), info.Size, info.Name)
	}
}
