package ftpstub

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/google/uuid"
)

// MaxCommandLength is the longest command line a session accepts.
const MaxCommandLength = 4096

const (
	typeASCII  = "A"
	typeBinary = "I"
)

// session is one client control connection.
type session struct {
	server   *Server
	conn     net.Conn
	reader   *bufio.Reader
	writer   *bufio.Writer
	id       string
	remoteIP string

	user          string
	userSent      bool
	loggedIn      bool
	transferType  string
	restartOffset int64

	pasvList   net.Listener
	activeAddr string
}

// commandHandlers maps FTP commands to their handlers. USER, PASS and QUIT
// are dispatched by handleCommand itself.
var commandHandlers = map[string]func(*session, string){
	// Informational
	"NOOP": (*session).handleNOOP,
	"SYST": (*session).handleSYST,
	"FEAT": (*session).handleFEAT,
	"OPTS": (*session).handleOPTS,
	"HELP": (*session).handleHELP,

	// Navigation
	"PWD":  (*session).handlePWD,
	"XPWD": (*session).handlePWD,
	"CWD":  (*session).handleCWD,
	"XCWD": (*session).handleCWD,
	"CDUP": (*session).handleCDUP,
	"XCUP": (*session).handleCDUP,

	// Transfer parameters
	"TYPE": (*session).handleTYPE,
	"MODE": (*session).handleMODE,
	"STRU": (*session).handleSTRU,
	"PASV": (*session).handlePASV,
	"EPSV": (*session).handleEPSV,
	"PORT": (*session).handlePORT,
	"EPRT": (*session).handleEPRT,
	"REST": (*session).handleREST,

	// Transfers
	"STOR": (*session).handleSTOR,
	"APPE": (*session).handleAPPE,
	"RETR": (*session).handleRETR,
	"LIST": (*session).handleLIST,
	"NLST": (*session).handleNLST,

	// Files
	"SIZE": (*session).handleSIZE,
	"MDTM": (*session).handleMDTM,
	"DELE": (*session).handleDELE,

	"ABOR": (*session).handleABOR,
}

// preLoginCommands may be used before PASS succeeds.
var preLoginCommands = map[string]bool{
	"NOOP": true,
	"SYST": true,
	"FEAT": true,
	"OPTS": true,
	"HELP": true,
}

func newSession(server *Server, conn net.Conn) *session {
	remoteIP, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		remoteIP = conn.RemoteAddr().String()
	}
	return &session{
		server:       server,
		conn:         conn,
		reader:       bufio.NewReaderSize(conn, MaxCommandLength),
		writer:       bufio.NewWriter(conn),
		id:           uuid.NewString(),
		remoteIP:     remoteIP,
		transferType: typeASCII,
	}
}

// serve runs the command loop until the client quits, the connection fails
// or the server stops.
func (s *session) serve() {
	defer s.close()

	log := s.server.log
	log.Info("session started", "session_id", s.id, "remote_ip", s.remoteIP)
	s.reply(220, s.server.welcome)

	for {
		line, err := s.readCommand()
		if errors.Is(err, errCommandTooLong) {
			s.reply(500, "Command line too long.")
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Warn("read error", "session_id", s.id, "remote_ip", s.remoteIP, "user", s.user, "error", err)
			}
			return
		}
		if quit := s.handleCommand(line); quit {
			return
		}
	}
}

var errCommandTooLong = errors.New("command too long")

// readCommand reads one command line. A line longer than MaxCommandLength
// is discarded up to its terminator and reported as errCommandTooLong.
func (s *session) readCommand() (string, error) {
	line, err := s.reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = s.reader.ReadSlice('\n')
		}
		if err != nil {
			return "", err
		}
		return "", errCommandTooLong
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}

func (s *session) close() {
	s.closePassive()
	_ = s.conn.Close()
	s.server.log.Debug("session closed", "session_id", s.id, "remote_ip", s.remoteIP, "user", s.user)
}

// handleCommand parses and dispatches one command line. It reports whether
// the session should end.
func (s *session) handleCommand(line string) bool {
	if line == "" {
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	cmd = strings.ToUpper(cmd)

	logArg := arg
	if cmd == "PASS" {
		logArg = "***"
	}
	s.server.log.Debug("command received", "session_id", s.id, "remote_ip", s.remoteIP, "user", s.user, "cmd", cmd, "arg", logArg)

	switch cmd {
	case "USER":
		s.handleUSER(arg)
		return false
	case "PASS":
		s.handlePASS(arg)
		return false
	case "QUIT":
		s.reply(221, "Service closing control connection.")
		return true
	}

	handler, ok := commandHandlers[cmd]
	if !ok {
		s.reply(502, "Command not implemented.")
		return false
	}
	if !s.loggedIn && !preLoginCommands[cmd] {
		s.reply(530, "Please login with USER and PASS.")
		return false
	}
	handler(s, arg)
	return false
}

func (s *session) handleUSER(arg string) {
	s.user = arg
	s.userSent = true
	s.loggedIn = false
	s.reply(331, "User name okay, need password.")
}

// handlePASS accepts any password once USER has been sent.
func (s *session) handlePASS(_ string) {
	if !s.userSent {
		s.reply(503, "Login with USER first.")
		return
	}
	if s.loggedIn {
		s.reply(230, "Already logged in.")
		return
	}
	s.loggedIn = true
	s.server.log.Info("user logged in", "session_id", s.id, "remote_ip", s.remoteIP, "user", s.user)
	s.reply(230, "User logged in, proceed.")
}

// reply sends a single-line response.
func (s *session) reply(code int, message string) {
	fmt.Fprintf(s.writer, "%d %s\r\n", code, message)
	_ = s.writer.Flush()
}

// replyLines sends a multi-line response: a "code-" header, each line
// indented by one space, and a closing "code " line.
func (s *session) replyLines(code int, header string, lines []string, footer string) {
	fmt.Fprintf(s.writer, "%d-%s\r\n", code, header)
	for _, l := range lines {
		fmt.Fprintf(s.writer, " %s\r\n", l)
	}
	fmt.Fprintf(s.writer, "%d %s\r\n", code, footer)
	_ = s.writer.Flush()
}
