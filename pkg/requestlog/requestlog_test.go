package requestlog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LogFillsDefaults(t *testing.T) {
	store := NewMemoryStore(10)
	entry := &Entry{Method: "GET", Path: "/address/25"}
	store.Log(entry)

	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.Equal(t, ProtocolHTTP, entry.Protocol)
	assert.Same(t, entry, store.Get(entry.ID))
	assert.Nil(t, store.Get("missing"))
}

func TestMemoryStore_LogNil(t *testing.T) {
	store := NewMemoryStore(10)
	store.Log(nil)
	assert.Equal(t, 0, store.Count())
}

func TestMemoryStore_Eviction(t *testing.T) {
	store := NewMemoryStore(3)
	for i := range 5 {
		store.Log(&Entry{Path: fmt.Sprintf("/r/%d", i)})
	}

	entries := store.List(nil)
	require.Len(t, entries, 3)
	assert.Equal(t, "/r/2", entries[0].Path)
	assert.Equal(t, "/r/4", entries[2].Path)
}

func TestMemoryStore_DefaultCapacity(t *testing.T) {
	store := NewMemoryStore(0)
	assert.Equal(t, DefaultCapacity, store.maxEntries)
}

func TestMemoryStore_ListFilter(t *testing.T) {
	store := NewMemoryStore(10)
	store.Log(&Entry{Protocol: ProtocolHTTP, Method: "GET", Path: "/address/25", MatchedID: "e1", ResponseStatus: 200})
	store.Log(&Entry{Protocol: ProtocolHTTP, Method: "PUT", Path: "/address/45", ResponseStatus: 500})
	store.Log(&Entry{Protocol: ProtocolFTP, Method: "STOR", Path: "foo.txt", ResponseStatus: 226})
	store.Log(&Entry{Protocol: ProtocolHTTP, Method: "GET", Path: "/monitor", MatchedID: "e2", ResponseStatus: 200})

	tests := []struct {
		name   string
		filter *Filter
		want   []string
	}{
		{"nil filter", nil, []string{"/address/25", "/address/45", "foo.txt", "/monitor"}},
		{"protocol", &Filter{Protocol: ProtocolFTP}, []string{"foo.txt"}},
		{"method", &Filter{Method: "GET"}, []string{"/address/25", "/monitor"}},
		{"path prefix", &Filter{Path: "/address"}, []string{"/address/25", "/address/45"}},
		{"matched id", &Filter{MatchedID: "e2"}, []string{"/monitor"}},
		{"unmatched", &Filter{Unmatched: true}, []string{"/address/45"}},
		{"status", &Filter{StatusCode: 226}, []string{"foo.txt"}},
		{"limit keeps newest", &Filter{Limit: 2}, []string{"foo.txt", "/monitor"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var paths []string
			for _, e := range store.List(tt.filter) {
				paths = append(paths, e.Path)
			}
			assert.Equal(t, tt.want, paths)
		})
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore(10)
	store.Log(&Entry{Path: "/a"})
	store.Clear()
	assert.Equal(t, 0, store.Count())
	assert.Empty(t, store.List(nil))
}

func TestEntry_SetBody(t *testing.T) {
	e := &Entry{}
	e.SetBody([]byte("short"))
	assert.Equal(t, "short", e.Body)
	assert.Equal(t, 5, e.BodySize)

	big := []byte(strings.Repeat("x", MaxBodyLog+10))
	e.SetBody(big)
	assert.Len(t, e.Body, MaxBodyLog)
	assert.Equal(t, MaxBodyLog+10, e.BodySize)
}
