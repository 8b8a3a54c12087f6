package ftpstub

import (
	"strconv"
	"strings"
)

// features are advertised in the FEAT reply.
var features = []string{
	"SIZE",
	"MDTM",
	"PASV",
	"EPSV",
	"REST STREAM",
	"UTF8",
}

// helpCommands are listed in the HELP reply.
var helpCommands = []string{
	"USER PASS QUIT NOOP SYST FEAT OPTS HELP",
	"PWD XPWD CWD XCWD CDUP XCUP",
	"TYPE MODE STRU PASV EPSV PORT EPRT REST",
	"STOR APPE RETR LIST NLST SIZE MDTM DELE ABOR",
}

func (s *session) handleNOOP(_ string) {
	s.reply(200, "OK.")
}

func (s *session) handleSYST(_ string) {
	s.reply(215, "UNIX Type: L8")
}

func (s *session) handleFEAT(_ string) {
	s.replyLines(211, "Features:", features, "End")
}

func (s *session) handleOPTS(arg string) {
	if strings.HasPrefix(strings.ToUpper(arg), "UTF8") {
		s.reply(200, "Always in UTF8 mode.")
		return
	}
	s.reply(501, "Option not understood.")
}

func (s *session) handleHELP(_ string) {
	s.replyLines(214, "The following commands are recognized.", helpCommands, "Help OK.")
}

// The store is flat, so "/" is the only directory.

func (s *session) handlePWD(_ string) {
	s.reply(257, `"/" is the current directory.`)
}

func (s *session) handleCWD(arg string) {
	switch strings.TrimSpace(arg) {
	case "", "/", ".", "..":
		s.reply(250, "Directory successfully changed.")
	default:
		s.reply(550, "No such directory.")
	}
}

func (s *session) handleCDUP(_ string) {
	s.handleCWD("..")
}

func (s *session) handleSIZE(arg string) {
	info, ok := s.server.store.Stat(fileName(arg))
	if !ok {
		s.reply(550, "Could not get file size.")
		return
	}
	s.reply(213, strconv.FormatInt(info.Size, 10))
}

func (s *session) handleMDTM(arg string) {
	info, ok := s.server.store.Stat(fileName(arg))
	if !ok {
		s.reply(550, "Could not get file modification time.")
		return
	}
	s.reply(213, info.ModTime.UTC().Format("20060102150405"))
}

func (s *session) handleDELE(arg string) {
	name := fileName(arg)
	if !s.server.store.Delete(name) {
		s.reply(550, "File not found.")
		return
	}
	s.server.log.Info("file deleted", "session_id", s.id, "user", s.user, "path", name)
	s.reply(250, "File deleted.")
}

// handleABOR replies 226 because transfers complete before the next command
// is read. Any pending passive listener is dropped.
func (s *session) handleABOR(_ string) {
	s.closePassive()
	s.activeAddr = ""
	s.restartOffset = 0
	s.reply(226, "ABOR command successful; no transfer in progress.")
}

// fileName maps a client path onto a store key. The store is flat, so a
// leading slash is dropped.
func fileName(arg string) string {
	return strings.TrimPrefix(strings.TrimSpace(arg), "/")
}
