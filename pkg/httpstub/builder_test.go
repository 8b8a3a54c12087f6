package httpstub

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/stubserver/pkg/expect"
)

func TestBuilder_FirstErrorWins(t *testing.T) {
	srv := New(0)
	b := srv.Expect("GET", "/").WithStatus(42).CaptureBody(nil)
	require.Error(t, b.Err())
	assert.Contains(t, b.Err().Error(), "WithStatus")

	err := b.ReturnContent("x", "text/plain")
	require.Error(t, err)
	assert.Equal(t, 0, srv.Registry().Len(), "nothing registered on builder error")
}

func TestBuilder_MatcherFields(t *testing.T) {
	srv := New(0)
	var c expect.Capture
	require.NoError(t, srv.Expect("POST", `/address/\d+/inhabitant`).
		WithName("add inhabitant").
		WithHeader("Content-Type", "application/xml").
		WithQuery("dry", "false").
		WithBodyContains("inhabitant").
		WithBodyPattern(`name="\w+"`).
		WithBodyXPath("/inhabitant/@name", "Chris").
		When(`method == "POST"`).
		CaptureBody(&c).
		ReturnStatus(http.StatusNoContent))

	exps := srv.Registry().Expectations()
	require.Len(t, exps, 1)
	e := exps[0]
	assert.Equal(t, "add inhabitant", e.Name)
	assert.Equal(t, "application/xml", e.Matcher.Headers["Content-Type"])
	assert.Equal(t, "false", e.Matcher.Query["dry"])
	assert.Same(t, &c, e.Capture)

	req, err := http.NewRequest("POST", "/address/45/inhabitant?dry=false", strings.NewReader(`<inhabitant name="Chris"/>`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/xml")
	matched, ok := srv.Registry().Match(expect.NewRequest(req, []byte(`<inhabitant name="Chris"/>`)))
	require.True(t, ok)
	assert.Same(t, e, matched)
	assert.True(t, c.Fired())
}

func TestBuilder_JSONPath(t *testing.T) {
	srv := New(0)
	require.NoError(t, srv.Expect("PUT", `/`).WithBodyJSONPath("$.hello", "world").ReturnStatus(http.StatusCreated))

	req := &expect.Request{Method: "PUT", Path: "/a", Header: http.Header{}, Body: []byte(`{"hello": "world"}`)}
	_, ok := srv.Registry().Match(req)
	assert.True(t, ok)
}

func TestBuilder_InvalidCondition(t *testing.T) {
	srv := New(0)
	err := srv.Expect("GET", `/`).When(`method ==`).ReturnStatus(http.StatusOK)
	assert.ErrorIs(t, err, expect.ErrInvalidExpectation)
}

func TestBuilder_InformationalStatusRejected(t *testing.T) {
	srv := New(0)

	b := srv.Expect("GET", "/").WithStatus(102)
	require.Error(t, b.Err())
	require.Error(t, b.ReturnContent("x", "text/plain"))

	err := srv.Expect("GET", "/").ReturnStatus(102)
	assert.ErrorIs(t, err, expect.ErrInvalidExpectation)
	assert.Equal(t, 0, srv.Registry().Len())
}

func TestBuilder_RegistersOnce(t *testing.T) {
	srv := New(0)
	b := srv.Expect("PUT", "/address/45")

	require.NoError(t, b.ReturnStatus(http.StatusCreated))
	err := b.ReturnStatus(http.StatusCreated)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, srv.Registry().Len())
}
