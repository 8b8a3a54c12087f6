package expect

import (
	"net/http"
	"sync"
)

// Capture receives a copy of the request that consumed its expectation.
// The zero value is ready to use and it is safe to read while the server
// is still running.
type Capture struct {
	mu     sync.RWMutex
	fired  bool
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

func (c *Capture) record(req *Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fired = true
	c.method = req.Method
	c.path = req.Path
	c.query = req.RawQuery
	c.header = req.Header.Clone()
	c.body = append([]byte(nil), req.Body...)
}

// Fired reports whether the expectation has consumed a request.
func (c *Capture) Fired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fired
}

// Body returns the captured request body.
func (c *Capture) Body() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return string(c.body)
}

// Bytes returns a copy of the captured request body.
func (c *Capture) Bytes() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]byte(nil), c.body...)
}

// Header returns the first value of a captured request header.
func (c *Capture) Header(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.header.Get(name)
}

// Get looks a captured field up by name: "body", "method", "path" or
// "query". ok is false until the capture has fired or for unknown keys.
func (c *Capture) Get(key string) (value string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.fired {
		return "", false
	}
	switch key {
	case "body":
		return string(c.body), true
	case "method":
		return c.method, true
	case "path":
		return c.path, true
	case "query":
		return c.query, true
	}
	return "", false
}

// Reset clears the capture so it can be reused.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fired = false
	c.method, c.path, c.query = "", "", ""
	c.header = nil
	c.body = nil
}
