package ftpstub

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/stubserver/pkg/requestlog"
)

// dataConnTimeout bounds how long a transfer waits for the client to open
// the passive data connection, or for an active dial to succeed.
const dataConnTimeout = 10 * time.Second

var errNoDataConn = errors.New("no data connection set up")

func (s *session) handleTYPE(arg string) {
	switch strings.ToUpper(strings.TrimSpace(arg)) {
	case "A", "A N":
		s.transferType = typeASCII
		s.reply(200, "Type set to A.")
	case "I", "L 8":
		s.transferType = typeBinary
		s.reply(200, "Type set to I.")
	default:
		s.reply(504, "Type not supported.")
	}
}

func (s *session) handleMODE(arg string) {
	if strings.ToUpper(strings.TrimSpace(arg)) != "S" {
		s.reply(504, "Only stream mode is supported.")
		return
	}
	s.reply(200, "Mode set to S.")
}

func (s *session) handleSTRU(arg string) {
	if strings.ToUpper(strings.TrimSpace(arg)) != "F" {
		s.reply(504, "Only file structure is supported.")
		return
	}
	s.reply(200, "Structure set to F.")
}

func (s *session) handleREST(arg string) {
	offset, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || offset < 0 {
		s.reply(501, "Invalid offset.")
		return
	}
	s.restartOffset = offset
	s.reply(350, fmt.Sprintf("Restarting at %d. Send STOR or RETR to initiate transfer.", offset))
}

func (s *session) handlePASV(_ string) {
	ln, err := s.listenPassive()
	if err != nil {
		s.server.log.Warn("passive listen failed", "session_id", s.id, "error", err)
		s.reply(425, "Can't open passive connection.")
		return
	}

	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	ipParts := []string{"0", "0", "0", "0"}
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		if ip4 := tcp.IP.To4(); ip4 != nil {
			ipParts = strings.Split(ip4.String(), ".")
		}
	}

	arg := fmt.Sprintf("%s,%d,%d", strings.Join(ipParts, ","), port/256, port%256)
	s.reply(227, "Entering Passive Mode ("+arg+").")
}

func (s *session) handleEPSV(_ string) {
	ln, err := s.listenPassive()
	if err != nil {
		s.server.log.Warn("passive listen failed", "session_id", s.id, "error", err)
		s.reply(425, "Can't open passive connection.")
		return
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	s.reply(229, fmt.Sprintf("Entering Extended Passive Mode (|||%s|)", portStr))
}

// listenPassive replaces any pending passive listener with a new one on the
// control connection's local address.
func (s *session) listenPassive() (net.Listener, error) {
	s.closePassive()
	s.activeAddr = ""

	host, _, err := net.SplitHostPort(s.conn.LocalAddr().String())
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return nil, err
	}
	if !s.server.track(ln) {
		return nil, net.ErrClosed
	}
	s.pasvList = ln
	return ln, nil
}

func (s *session) closePassive() {
	if s.pasvList != nil {
		s.server.untrack(s.pasvList)
		s.pasvList = nil
	}
}

func (s *session) handlePORT(arg string) {
	// h1,h2,h3,h4,p1,p2
	parts := strings.Split(strings.TrimSpace(arg), ",")
	if len(parts) != 6 {
		s.reply(501, "Syntax error in parameters or arguments.")
		return
	}

	p1, err1 := strconv.Atoi(parts[4])
	p2, err2 := strconv.Atoi(parts[5])
	if err1 != nil || err2 != nil || p1 < 0 || p1 > 255 || p2 < 0 || p2 > 255 {
		s.reply(501, "Invalid port number.")
		return
	}

	ip := net.ParseIP(strings.Join(parts[0:4], "."))
	if ip == nil {
		s.reply(501, "Invalid IP address.")
		return
	}
	if !s.validateActiveIP(ip) {
		s.reply(500, "Illegal PORT command.")
		return
	}

	s.closePassive()
	s.activeAddr = net.JoinHostPort(ip.String(), strconv.Itoa(p1*256+p2))
	s.reply(200, "PORT command successful.")
}

func (s *session) handleEPRT(arg string) {
	arg = strings.TrimSpace(arg)
	if len(arg) < 4 {
		s.reply(501, "Syntax error in parameters or arguments.")
		return
	}

	// <d><proto><d><ip><d><port><d>
	parts := strings.Split(arg, string(arg[0]))
	if len(parts) != 5 {
		s.reply(501, "Syntax error in parameters or arguments.")
		return
	}

	proto, ipStr, portStr := parts[1], parts[2], parts[3]
	ip := net.ParseIP(ipStr)
	if ip == nil {
		s.reply(501, "Invalid network address.")
		return
	}
	if proto != "1" && proto != "2" {
		s.reply(522, "Network protocol not supported, use (1,2).")
		return
	}
	if proto == "1" && ip.To4() == nil {
		s.reply(522, "Network protocol not supported, use (2).")
		return
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		s.reply(501, "Invalid port number.")
		return
	}
	if !s.validateActiveIP(ip) {
		s.reply(500, "Illegal EPRT command.")
		return
	}

	s.closePassive()
	s.activeAddr = net.JoinHostPort(ip.String(), strconv.Itoa(port))
	s.reply(200, "EPRT command successful.")
}

// validateActiveIP requires the data connection target to be the control
// connection's peer, which rules out FTP bounce.
func (s *session) validateActiveIP(ip net.IP) bool {
	remote := net.ParseIP(s.remoteIP)
	return remote != nil && ip.Equal(remote)
}

// connData opens the data connection negotiated by PASV, EPSV, PORT or EPRT.
// The negotiation is used up either way.
func (s *session) connData() (net.Conn, error) {
	switch {
	case s.pasvList != nil:
		return s.connPassive()
	case s.activeAddr != "":
		return s.connActive()
	default:
		return nil, errNoDataConn
	}
}

func (s *session) connPassive() (net.Conn, error) {
	ln := s.pasvList
	defer s.closePassive()

	if tcp, ok := ln.(*net.TCPListener); ok {
		_ = tcp.SetDeadline(time.Now().Add(dataConnTimeout))
	}
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	if !s.server.track(conn) {
		return nil, net.ErrClosed
	}
	return conn, nil
}

func (s *session) connActive() (net.Conn, error) {
	addr := s.activeAddr
	s.activeAddr = ""

	s.server.log.Debug("dialing active connection", "session_id", s.id, "addr", addr)
	conn, err := s.server.dialContext(s.server.stopping(), "tcp", addr)
	if err != nil {
		return nil, err
	}
	if !s.server.track(conn) {
		return nil, net.ErrClosed
	}
	return conn, nil
}

// transfer runs fn over a fresh data connection, wrapped in the 150 and 226
// replies. The data connection is closed before 226 so the client has seen
// EOF by the time the transfer is reported complete. It returns the final
// reply code, the bytes fn moved and any error.
func (s *session) transfer(what string, fn func(conn net.Conn) (int64, error)) (int, int64, error) {
	conn, err := s.connData()
	if err != nil {
		s.reply(425, "Can't open data connection.")
		return 425, 0, err
	}

	s.reply(150, fmt.Sprintf("Opening %s mode data connection for %s.", s.modeName(), what))
	n, err := fn(conn)
	s.server.untrack(conn)
	if err != nil {
		s.reply(426, "Connection closed; transfer aborted.")
		return 426, n, err
	}
	s.reply(226, "Transfer complete.")
	return 226, n, nil
}

func (s *session) modeName() string {
	if s.transferType == typeASCII {
		return "ASCII"
	}
	return "BINARY"
}

func (s *session) handleRETR(arg string) {
	start := time.Now()
	name := fileName(arg)
	offset := s.restartOffset
	s.restartOffset = 0

	data, ok := s.server.store.Retrieve(name)
	if !ok {
		s.reply(550, "File not found.")
		s.record("RETR", name, 550, 0, nil, start, errors.New("file not found"))
		return
	}
	data = data[min(offset, int64(len(data))):]

	code, n, err := s.transfer(name, func(conn net.Conn) (int64, error) {
		var dst io.Writer = conn
		if s.transferType == typeASCII {
			dst = newCRLFWriter(conn)
		}
		return io.Copy(dst, bytes.NewReader(data))
	})
	s.record("RETR", name, code, n, nil, start, err)
}

func (s *session) handleSTOR(arg string) {
	s.receive("STOR", arg, false)
}

func (s *session) handleAPPE(arg string) {
	s.receive("APPE", arg, true)
}

// receive stores the data connection's content under arg. The entry is
// created when the data connection opens and grows as lines arrive.
func (s *session) receive(cmd, arg string, appendMode bool) {
	start := time.Now()
	name := fileName(arg)
	offset := s.restartOffset
	s.restartOffset = 0

	if name == "" {
		s.reply(501, "Missing file name.")
		return
	}

	store := s.server.store
	code, n, err := s.transfer(name, func(conn net.Conn) (int64, error) {
		var w io.WriteCloser
		switch {
		case appendMode:
			w = store.Append(name)
		case offset > 0:
			prefix, _ := store.Retrieve(name)
			w = store.Create(name)
			if _, err := w.Write(prefix[:min(offset, int64(len(prefix)))]); err != nil {
				return 0, err
			}
		default:
			w = store.Create(name)
		}
		defer w.Close()

		if s.transferType == typeASCII {
			return copyLines(w, conn)
		}
		return io.Copy(w, conn)
	})

	var body []byte
	if code != 425 {
		body, _ = store.Retrieve(name)
	}
	s.record(cmd, name, code, n, body, start, err)
}

func (s *session) handleLIST(arg string) {
	s.list("LIST", arg, func(w io.Writer, names []string) error {
		for _, name := range names {
			info, ok := s.server.store.Stat(name)
			if !ok {
				continue
			}
			if _, err := fmt.Fprintf(w, "-rw-r--r-- 1 owner group %d %s %s\r\n",
				info.Size, info.ModTime.Format("Jan 02 15:04"), info.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *session) handleNLST(arg string) {
	s.list("NLST", arg, func(w io.Writer, names []string) error {
		for _, name := range names {
			if _, err := fmt.Fprintf(w, "%s\r\n", name); err != nil {
				return err
			}
		}
		return nil
	})
}

// list sends the stored names matching arg's optional glob to write.
func (s *session) list(cmd, arg string, write func(w io.Writer, names []string) error) {
	start := time.Now()
	pattern := listPattern(arg)
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		s.reply(501, "Invalid pattern.")
		return
	}

	var names []string
	for _, name := range s.server.store.List() {
		if pattern == "" {
			names = append(names, name)
			continue
		}
		if ok, _ := doublestar.Match(pattern, name); ok {
			names = append(names, name)
		}
	}

	code, n, err := s.transfer("file list", func(conn net.Conn) (int64, error) {
		cw := &countingWriter{w: conn}
		err := write(cw, names)
		return cw.n, err
	})
	s.record(cmd, pattern, code, n, nil, start, err)
}

// listPattern drops ls-style flags and the root directory from a LIST or
// NLST argument, leaving a glob or "" for everything.
func listPattern(arg string) string {
	var rest []string
	for _, f := range strings.Fields(arg) {
		if strings.HasPrefix(f, "-") {
			continue
		}
		rest = append(rest, f)
	}
	pattern := strings.TrimPrefix(strings.Join(rest, " "), "/")
	if pattern == "." {
		return ""
	}
	return pattern
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// record journals a transfer and logs its outcome.
func (s *session) record(cmd, name string, code int, n int64, body []byte, start time.Time, err error) {
	duration := time.Since(start)
	entry := &requestlog.Entry{
		Protocol:       requestlog.ProtocolFTP,
		Method:         cmd,
		Path:           name,
		RemoteAddr:     s.conn.RemoteAddr().String(),
		ResponseStatus: code,
		DurationMs:     int(duration.Milliseconds()),
		FTP: &requestlog.FTPMeta{
			SessionID:    s.id,
			User:         s.user,
			TransferType: s.transferType,
			Bytes:        n,
		},
	}
	if body != nil {
		entry.SetBody(body)
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.server.requests.Log(entry)

	log := s.server.log
	if err != nil {
		log.Warn("transfer failed", "session_id", s.id, "user", s.user, "cmd", cmd, "path", name, "code", code, "error", err)
		return
	}
	log.Info("transfer complete",
		"session_id", s.id,
		"remote_ip", s.remoteIP,
		"user", s.user,
		"cmd", cmd,
		"path", name,
		"bytes", n,
		"duration_ms", duration.Milliseconds(),
	)
}
