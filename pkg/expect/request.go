package expect

import (
	"net/http"
	"net/url"
)

// Request is the normalized view of an incoming request that matchers see.
type Request struct {
	Method     string
	Path       string
	RawQuery   string
	Header     http.Header
	Body       []byte
	RemoteAddr string
}

// NewRequest builds a Request from an HTTP request whose body has already
// been read.
func NewRequest(r *http.Request, body []byte) *Request {
	req := &Request{
		Method:     r.Method,
		Header:     r.Header,
		Body:       body,
		RemoteAddr: r.RemoteAddr,
	}
	if r.URL != nil {
		req.Path = r.URL.Path
		req.RawQuery = r.URL.RawQuery
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	return req
}

// Query parses the raw query string. Malformed pairs are dropped.
func (r *Request) Query() url.Values {
	values, _ := url.ParseQuery(r.RawQuery)
	return values
}
