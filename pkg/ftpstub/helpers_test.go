package ftpstub

import (
	"io"
	"net"
	"net/textproto"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/secsy/goftp"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/stubserver/pkg/logging"
)

// newTestServer starts a server on a free loopback port and stops it when
// the test ends.
func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()

	opts = append([]Option{WithHost("127.0.0.1"), WithLogger(logging.ForTest(t))}, opts...)
	srv := New(0, opts...)
	require.NoError(t, srv.Run())
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			require.ErrorIs(t, err, ErrNotRunning)
		}
	})
	return srv
}

// newClient returns a goftp client logged in to srv.
func newClient(t *testing.T, srv *Server, user, pass string) *goftp.Client {
	t.Helper()

	client, err := goftp.DialConfig(goftp.Config{
		User:     user,
		Password: pass,
		Timeout:  5 * time.Second,
	}, srv.Addr().String())
	require.NoError(t, err, "Couldn't connect")
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// rawConn drives the control connection by hand so tests can check reply
// codes and ASCII-mode bytes exactly.
type rawConn struct {
	t    *testing.T
	conn net.Conn
	tp   *textproto.Conn
}

func dialRaw(t *testing.T, srv *Server) *rawConn {
	t.Helper()

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), 5*time.Second)
	require.NoError(t, err)
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	c := &rawConn{t: t, conn: conn, tp: textproto.NewConn(conn)}
	t.Cleanup(func() { _ = c.tp.Close() })

	c.expect(220)
	return c
}

// send writes one command line and returns the reply code and message.
func (c *rawConn) send(format string, args ...any) (int, string) {
	c.t.Helper()
	require.NoError(c.t, c.tp.PrintfLine(format, args...))
	code, msg, err := c.tp.ReadResponse(0)
	require.NoError(c.t, err)
	return code, msg
}

// sendAndCheck sends a command and requires the expected reply code.
func (c *rawConn) sendAndCheck(expected int, format string, args ...any) string {
	c.t.Helper()
	code, msg := c.send(format, args...)
	require.Equal(c.t, expected, code, "reply to %q: %s", format, msg)
	return msg
}

func (c *rawConn) expect(expected int) string {
	c.t.Helper()
	code, msg, err := c.tp.ReadResponse(0)
	require.NoError(c.t, err)
	require.Equal(c.t, expected, code, msg)
	return msg
}

func (c *rawConn) login(user, pass string) {
	c.t.Helper()
	c.sendAndCheck(331, "USER %s", user)
	c.sendAndCheck(230, "PASS %s", pass)
}

var epsvPort = regexp.MustCompile(`\(\|\|\|(\d+)\|\)`)

// passive negotiates EPSV and dials the data connection.
func (c *rawConn) passive() net.Conn {
	c.t.Helper()
	msg := c.sendAndCheck(229, "EPSV")
	m := epsvPort.FindStringSubmatch(msg)
	require.Len(c.t, m, 2, msg)

	host, _, err := net.SplitHostPort(c.conn.RemoteAddr().String())
	require.NoError(c.t, err)
	data, err := net.DialTimeout("tcp", net.JoinHostPort(host, m[1]), 5*time.Second)
	require.NoError(c.t, err)
	return data
}

// store uploads content with STOR over a passive connection.
func (c *rawConn) store(name, content string) {
	c.t.Helper()
	data := c.passive()
	c.sendAndCheck(150, "STOR %s", name)
	_, err := io.WriteString(data, content)
	require.NoError(c.t, err)
	require.NoError(c.t, data.Close())
	c.expect(226)
}

// retrieve downloads name with RETR over a passive connection.
func (c *rawConn) retrieve(name string) string {
	c.t.Helper()
	return c.readData("RETR %s", name)
}

func (c *rawConn) readData(format string, args ...any) string {
	c.t.Helper()
	data := c.passive()
	defer data.Close()
	c.sendAndCheck(150, format, args...)
	_ = data.SetReadDeadline(time.Now().Add(5 * time.Second))
	got, err := io.ReadAll(data)
	require.NoError(c.t, err)
	c.expect(226)
	return string(got)
}

func lines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '\r' || r == '\n' })
}
