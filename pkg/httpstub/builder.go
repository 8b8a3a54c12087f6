package httpstub

import (
	"fmt"

	"github.com/getmockd/stubserver/pkg/expect"
)

// ExpectationBuilder declares one expectation with a fluent API. Nothing is
// registered until a Return method is called.
type ExpectationBuilder struct {
	server *Server
	exp    *expect.Expectation
	status int
	header map[string]string
	err    error
	done   bool
}

// setError records the first error encountered during building.
func (b *ExpectationBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns the first error encountered during building.
func (b *ExpectationBuilder) Err() error {
	return b.err
}

// WithName labels the expectation in verification reports.
func (b *ExpectationBuilder) WithName(name string) *ExpectationBuilder {
	b.exp.Name = name
	return b
}

// WithBody requires the request body to equal data exactly.
func (b *ExpectationBuilder) WithBody(data string) *ExpectationBuilder {
	b.exp.Matcher.Body = &data
	return b
}

// CaptureBody fills c with the request that consumes this expectation.
func (b *ExpectationBuilder) CaptureBody(c *expect.Capture) *ExpectationBuilder {
	if c == nil {
		b.setError(fmt.Errorf("CaptureBody: nil capture"))
		return b
	}
	b.exp.Capture = c
	return b
}

// WithHeader requires a request header. Values support *wildcards*.
func (b *ExpectationBuilder) WithHeader(name, value string) *ExpectationBuilder {
	if b.exp.Matcher.Headers == nil {
		b.exp.Matcher.Headers = make(map[string]string)
	}
	b.exp.Matcher.Headers[name] = value
	return b
}

// WithQuery requires a query parameter.
func (b *ExpectationBuilder) WithQuery(name, value string) *ExpectationBuilder {
	if b.exp.Matcher.Query == nil {
		b.exp.Matcher.Query = make(map[string]string)
	}
	b.exp.Matcher.Query[name] = value
	return b
}

// WithBodyContains requires the request body to contain substr.
func (b *ExpectationBuilder) WithBodyContains(substr string) *ExpectationBuilder {
	b.exp.Matcher.BodyContains = substr
	return b
}

// WithBodyPattern requires the request body to match a regular expression.
func (b *ExpectationBuilder) WithBodyPattern(pattern string) *ExpectationBuilder {
	b.exp.Matcher.BodyPattern = pattern
	return b
}

// WithBodyJSONPath requires the JSONPath expression to select value.
func (b *ExpectationBuilder) WithBodyJSONPath(path string, value interface{}) *ExpectationBuilder {
	if b.exp.Matcher.BodyJSONPath == nil {
		b.exp.Matcher.BodyJSONPath = make(map[string]interface{})
	}
	b.exp.Matcher.BodyJSONPath[path] = value
	return b
}

// WithBodyXPath requires the XPath expression to select text equal to value.
func (b *ExpectationBuilder) WithBodyXPath(path, value string) *ExpectationBuilder {
	if b.exp.Matcher.BodyXPath == nil {
		b.exp.Matcher.BodyXPath = make(map[string]string)
	}
	b.exp.Matcher.BodyXPath[path] = value
	return b
}

// When requires an expr-lang condition over the request to hold.
func (b *ExpectationBuilder) When(condition string) *ExpectationBuilder {
	b.exp.Matcher.Condition = condition
	return b
}

// WithStatus overrides the 200 sent by content and file responses.
func (b *ExpectationBuilder) WithStatus(code int) *ExpectationBuilder {
	if !expect.ValidStatus(code) {
		b.setError(fmt.Errorf("WithStatus: invalid status code %d", code))
		return b
	}
	b.status = code
	return b
}

// WithResponseHeader adds a header to the response.
func (b *ExpectationBuilder) WithResponseHeader(name, value string) *ExpectationBuilder {
	if b.header == nil {
		b.header = make(map[string]string)
	}
	b.header[name] = value
	return b
}

// AndReturn registers the expectation with resp as its response.
func (b *ExpectationBuilder) AndReturn(resp expect.Response) error {
	if b.err != nil {
		return b.err
	}
	if b.done {
		return fmt.Errorf("%s %s: expectation already registered", b.exp.Matcher.Method, b.exp.Matcher.URLPattern)
	}
	if b.status != 0 {
		resp = resp.WithStatus(b.status)
	}
	for k, v := range b.header {
		resp = resp.WithHeader(k, v)
	}
	b.exp.Response = resp
	if err := b.server.Add(b.exp); err != nil {
		return err
	}
	b.done = true
	return nil
}

// ReturnStatus answers with code and an empty body.
func (b *ExpectationBuilder) ReturnStatus(code int) error {
	return b.AndReturn(expect.StatusResponse(code))
}

// ReturnContent answers with content and mimeType.
func (b *ExpectationBuilder) ReturnContent(content, mimeType string) error {
	return b.AndReturn(expect.ContentResponse(content, mimeType))
}

// ReturnFile answers with the contents of path, read when the request is
// served.
func (b *ExpectationBuilder) ReturnFile(path, mimeType string) error {
	return b.AndReturn(expect.FileResponse(path, mimeType))
}
