package stubtest

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/secsy/goftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/stubserver/pkg/expect"
	"github.com/getmockd/stubserver/pkg/ftpstub"
	"github.com/getmockd/stubserver/pkg/httpstub"
)

// recordingT collects failures and cleanups instead of acting on them.
type recordingT struct {
	testing.TB
	errors   []string
	cleanups []func()
}

func (r *recordingT) Helper()         {}
func (r *recordingT) Log(args ...any) {}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) Fatalf(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}

func (r *recordingT) Cleanup(f func()) {
	r.cleanups = append(r.cleanups, f)
}

func (r *recordingT) finish() {
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		r.cleanups[i]()
	}
}

func put(t *testing.T, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestNewHTTP_SatisfiedPasses(t *testing.T) {
	rt := &recordingT{}
	srv := NewHTTP(rt)

	var body expect.Capture
	require.NoError(t, srv.Expect("PUT", "^/address/45$").CaptureBody(&body).ReturnStatus(204))

	resp := put(t, srv.URL()+"/address/45", "<address/>")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.True(t, AssertCaptured(rt, &body, "<address/>"))
	assert.True(t, AssertRequested(rt, srv, "PUT", "/address"))
	assert.True(t, AssertRequestedTimes(rt, srv, "PUT", "/address/45", 1))
	assert.True(t, AssertNotRequested(rt, srv, "GET", "/address"))

	rt.finish()
	assert.Empty(t, rt.errors)
}

func TestNewHTTP_UnsatisfiedFails(t *testing.T) {
	rt := &recordingT{}
	srv := NewHTTP(rt)
	require.NoError(t, srv.Expect("GET", "/never").ReturnStatus(200))

	rt.finish()
	require.Len(t, rt.errors, 1)
	assert.Contains(t, rt.errors[0], "/never")
}

func TestNewHTTP_StoppedByTest(t *testing.T) {
	rt := &recordingT{}
	srv := NewHTTP(rt)
	require.NoError(t, srv.Stop())

	rt.finish()
	assert.Empty(t, rt.errors)
}

func TestNewHTTP_Options(t *testing.T) {
	dir := t.TempDir()
	srv := NewHTTP(t, httpstub.WithBaseDir(dir))
	assert.NotZero(t, srv.Port())
	assert.True(t, strings.HasPrefix(srv.URL(), "http://127.0.0.1:"))
}

func TestCaptureAssertions(t *testing.T) {
	rt := &recordingT{}
	var c expect.Capture

	assert.False(t, AssertCaptured(rt, &c, "x"))
	assert.True(t, AssertNotCaptured(rt, &c))
	require.Len(t, rt.errors, 1)
	assert.Contains(t, rt.errors[0], "never fired")

	srv := NewHTTP(t)
	require.NoError(t, srv.Expect("PUT", "/x").CaptureBody(&c).ReturnStatus(200))
	put(t, srv.URL()+"/x", "actual")

	rt.errors = nil
	assert.False(t, AssertCaptured(rt, &c, "expected"))
	assert.False(t, AssertNotCaptured(rt, &c))
	require.Len(t, rt.errors, 2)
	assert.Contains(t, rt.errors[0], `"actual"`)
	assert.Contains(t, rt.errors[1], "PUT /x")
}

func TestRequestAssertions_Failures(t *testing.T) {
	srv := NewHTTP(t)
	require.NoError(t, srv.Expect("GET", "/a").ReturnStatus(200))
	resp, err := http.Get(srv.URL() + "/a")
	require.NoError(t, err)
	resp.Body.Close()

	rt := &recordingT{}
	assert.False(t, AssertRequested(rt, srv, "POST", "/a"))
	assert.False(t, AssertRequestedTimes(rt, srv, "GET", "/a", 2))
	assert.False(t, AssertNotRequested(rt, srv, "GET", "/a"))
	require.Len(t, rt.errors, 3)
	assert.Contains(t, rt.errors[1], "requested 1 times")
}

func TestNewFTP(t *testing.T) {
	srv := NewFTP(t, ftpstub.WithWelcome("stubtest"))
	srv.AddFile("input.txt", "hello")

	client, err := goftp.DialConfig(goftp.Config{User: "u", Password: "p"}, srv.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Store("output.txt", strings.NewReader("done")))

	assert.True(t, AssertFile(t, srv, "input.txt", "hello"))
	assert.True(t, AssertFile(t, srv, "output.txt", "done"))
	assert.True(t, AssertNoFile(t, srv, "missing.txt"))

	rt := &recordingT{}
	assert.False(t, AssertFile(rt, srv, "missing.txt", ""))
	assert.False(t, AssertFile(rt, srv, "output.txt", "other"))
	assert.False(t, AssertNoFile(rt, srv, "output.txt"))
	require.Len(t, rt.errors, 3)
	assert.Contains(t, rt.errors[0], "input.txt")
}

func TestNewFTP_StoppedByTest(t *testing.T) {
	rt := &recordingT{}
	srv := NewFTP(rt)
	require.NoError(t, srv.Stop())

	rt.finish()
	assert.Empty(t, rt.errors)
}
