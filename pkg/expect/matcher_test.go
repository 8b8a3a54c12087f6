package expect

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newReq(method, path, body string) *Request {
	return &Request{Method: method, Path: path, Header: http.Header{}, Body: []byte(body)}
}

func TestMatcher_Matches(t *testing.T) {
	tests := []struct {
		name    string
		matcher Matcher
		req     *Request
		want    bool
	}{
		{
			name:    "method and anchored pattern",
			matcher: Matcher{Method: "GET", URLPattern: `/address/\d+$`},
			req:     newReq("GET", "/address/25", ""),
			want:    true,
		},
		{
			name:    "method mismatch",
			matcher: Matcher{Method: "GET", URLPattern: `/address/\d+$`},
			req:     newReq("PUT", "/address/25", ""),
			want:    false,
		},
		{
			name:    "unanchored pattern",
			matcher: Matcher{Method: "POST", URLPattern: `address/\d+/inhabitant`},
			req:     newReq("POST", "/address/45/inhabitant", ""),
			want:    true,
		},
		{
			name:    "exact body",
			matcher: Matcher{Method: "POST", URLPattern: `inhabitant`, Body: strPtr(`<inhabitant name="Chris"/>`)},
			req:     newReq("POST", "/address/45/inhabitant", `<inhabitant name="Chris"/>`),
			want:    true,
		},
		{
			name:    "body differs",
			matcher: Matcher{Method: "POST", URLPattern: `inhabitant`, Body: strPtr(`<inhabitant name="Chris"/>`)},
			req:     newReq("POST", "/address/45/inhabitant", `<inhabitant name="Bob"/>`),
			want:    false,
		},
		{
			name:    "empty body constraint",
			matcher: Matcher{Method: "POST", URLPattern: `/`, Body: strPtr("")},
			req:     newReq("POST", "/", "x"),
			want:    false,
		},
		{
			name:    "no body constraint accepts anything",
			matcher: Matcher{Method: "PUT", URLPattern: `/`},
			req:     newReq("PUT", "/address/45", "{'hello': 'world'}"),
			want:    true,
		},
		{
			name:    "json path",
			matcher: Matcher{Method: "PUT", URLPattern: `/`, BodyJSONPath: map[string]interface{}{"$.hello": "world"}},
			req:     newReq("PUT", "/a", `{"hello": "world"}`),
			want:    true,
		},
		{
			name:    "xpath",
			matcher: Matcher{Method: "POST", URLPattern: `/`, BodyXPath: map[string]string{"/inhabitant/@name": "Chris"}},
			req:     newReq("POST", "/a", `<inhabitant name="Chris"/>`),
			want:    true,
		},
		{
			name:    "query",
			matcher: Matcher{Method: "GET", URLPattern: `/search`, Query: map[string]string{"q": "x"}},
			req:     &Request{Method: "GET", Path: "/search", RawQuery: "q=x", Header: http.Header{}},
			want:    true,
		},
		{
			name:    "condition",
			matcher: Matcher{Method: "PUT", URLPattern: `/`, Condition: `len(body) > 3`},
			req:     newReq("PUT", "/a", "ab"),
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.matcher
			require.NoError(t, m.Compile())
			assert.Equal(t, tt.want, m.Matches(tt.req))
		})
	}
}

func TestMatcher_Headers(t *testing.T) {
	m := Matcher{Method: "GET", URLPattern: "/", Headers: map[string]string{"Accept": "text/*"}}
	require.NoError(t, m.Compile())

	req := newReq("GET", "/", "")
	assert.False(t, m.Matches(req))

	req.Header.Set("accept", "text/xml")
	assert.True(t, m.Matches(req))
}

func TestMatcher_UncompiledNeverMatches(t *testing.T) {
	m := Matcher{Method: "GET", URLPattern: "/"}
	assert.False(t, m.Matches(newReq("GET", "/", "")))
}

func TestMatcher_CompileErrors(t *testing.T) {
	m := Matcher{URLPattern: `/address/[`, BodyPattern: `(`, Condition: `method ==`}
	err := m.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method is required")
	assert.Contains(t, err.Error(), "invalid url pattern")
	assert.Contains(t, err.Error(), "invalid body pattern")
	assert.Contains(t, err.Error(), "compile condition")
}

func TestMatcher_Breakdown(t *testing.T) {
	m := Matcher{Method: "POST", URLPattern: `address/\d+/inhabitant`, Body: strPtr(`<inhabitant name="Chris"/>`)}
	require.NoError(t, m.Compile())

	nm := m.Breakdown(newReq("POST", "/address/45/inhabitant", `<inhabitant name="Bob"/>`))
	require.Len(t, nm.Fields, 3)
	assert.True(t, nm.Fields[0].Matched)
	assert.True(t, nm.Fields[1].Matched)
	assert.False(t, nm.Fields[2].Matched)
	assert.Equal(t, "body", nm.Fields[2].Field)
	assert.Contains(t, nm.Reason, "method and urlPattern matched, but body expected exact match")
}

func TestMatcher_BreakdownHeaders(t *testing.T) {
	m := Matcher{Method: "GET", URLPattern: `/`, Headers: map[string]string{"X-Token": "abc"}}
	require.NoError(t, m.Compile())

	nm := m.Breakdown(newReq("GET", "/", ""))
	assert.Equal(t, `method and urlPattern matched, but header X-Token expected "abc", got "(missing)"`, nm.Reason)
}
