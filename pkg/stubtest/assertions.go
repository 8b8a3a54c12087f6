package stubtest

import (
	"strings"
	"testing"

	"github.com/getmockd/stubserver/pkg/expect"
	"github.com/getmockd/stubserver/pkg/ftpstub"
	"github.com/getmockd/stubserver/pkg/httpstub"
)

// AssertCaptured asserts that c fired and holds exactly expected as its body.
func AssertCaptured(t testing.TB, c *expect.Capture, expected string) bool {
	t.Helper()

	if !c.Fired() {
		t.Errorf("expected a request to be captured, but the expectation never fired")
		return false
	}
	if got := c.Body(); got != expected {
		t.Errorf("captured body does not match\nexpected: %q\nactual: %q", expected, got)
		return false
	}
	return true
}

// AssertNotCaptured asserts that c never fired.
func AssertNotCaptured(t testing.TB, c *expect.Capture) bool {
	t.Helper()

	if c.Fired() {
		method, _ := c.Get("method")
		path, _ := c.Get("path")
		t.Errorf("expected no request to be captured, but got %s %s", method, path)
		return false
	}
	return true
}

// AssertFile asserts that srv's store holds name with exactly expected as
// its content.
func AssertFile(t testing.TB, srv *ftpstub.Server, name, expected string) bool {
	t.Helper()

	data, ok := srv.File(name)
	if !ok {
		t.Errorf("expected file %q to be stored, but it was not (have %v)", name, srv.Store().List())
		return false
	}
	if string(data) != expected {
		t.Errorf("file %q does not match\nexpected: %q\nactual: %q", name, expected, string(data))
		return false
	}
	return true
}

// AssertNoFile asserts that srv's store does not hold name.
func AssertNoFile(t testing.TB, srv *ftpstub.Server, name string) bool {
	t.Helper()

	if srv.Store().Contains(name) {
		t.Errorf("expected file %q to not be stored, but it was", name)
		return false
	}
	return true
}

// AssertRequested asserts that srv received at least one request with method
// whose path starts with path.
func AssertRequested(t testing.TB, srv *httpstub.Server, method, path string) bool {
	t.Helper()

	if countRequests(srv, method, path) == 0 {
		t.Errorf("expected %s %s to be requested, but it was not", method, path)
		return false
	}
	return true
}

// AssertRequestedTimes asserts that srv received exactly times requests with
// method whose path starts with path.
func AssertRequestedTimes(t testing.TB, srv *httpstub.Server, method, path string, times int) bool {
	t.Helper()

	count := countRequests(srv, method, path)
	if count != times {
		t.Errorf("expected %s %s to be requested %d times, but was requested %d times",
			method, path, times, count)
		return false
	}
	return true
}

// AssertNotRequested asserts that srv never received method on path.
func AssertNotRequested(t testing.TB, srv *httpstub.Server, method, path string) bool {
	t.Helper()

	if count := countRequests(srv, method, path); count > 0 {
		t.Errorf("expected %s %s to not be requested, but it was requested %d times",
			method, path, count)
		return false
	}
	return true
}

func countRequests(srv *httpstub.Server, method, path string) int {
	count := 0
	for _, entry := range srv.Requests() {
		if entry.Method == method && strings.HasPrefix(entry.Path, path) {
			count++
		}
	}
	return count
}
