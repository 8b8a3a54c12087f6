package requestlog

import "strings"

// Logger is the minimal interface for recording entries. Both stub servers
// accept it, so a test can share one journal between HTTP and FTP.
type Logger interface {
	Log(entry *Entry)
}

// Store is a Logger that can also be queried.
type Store interface {
	Logger

	// Get retrieves a log entry by ID.
	Get(id string) *Entry

	// List returns log entries oldest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all log entries.
	Clear()

	// Count returns the number of log entries.
	Count() int
}

// Filter defines criteria for filtering request logs.
type Filter struct {
	// Protocol filters by protocol (http, ftp).
	Protocol string

	// Method filters by HTTP method or FTP command.
	Method string

	// Path filters by path prefix.
	Path string

	// MatchedID filters by consuming expectation ID.
	MatchedID string

	// Unmatched keeps only HTTP requests no expectation consumed.
	Unmatched bool

	// StatusCode filters by response status or reply code.
	StatusCode int

	// Limit is the maximum number of entries to return.
	Limit int
}

// Matches reports whether entry satisfies every set criterion.
func (f *Filter) Matches(entry *Entry) bool {
	if f == nil {
		return true
	}
	if f.Protocol != "" && entry.Protocol != f.Protocol {
		return false
	}
	if f.Method != "" && entry.Method != f.Method {
		return false
	}
	if f.Path != "" && !strings.HasPrefix(entry.Path, f.Path) {
		return false
	}
	if f.MatchedID != "" && entry.MatchedID != f.MatchedID {
		return false
	}
	if f.Unmatched && (entry.Protocol != ProtocolHTTP || entry.MatchedID != "") {
		return false
	}
	if f.StatusCode != 0 && entry.ResponseStatus != f.StatusCode {
		return false
	}
	return true
}
