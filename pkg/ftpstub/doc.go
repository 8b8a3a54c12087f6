// Package ftpstub provides a minimal FTP server for tests.
//
// The server keeps its files in a filestore.Store instead of on disk and
// accepts any credentials. It speaks enough of RFC 959 for ordinary clients
// to log in, upload with STOR, download with RETR and list with LIST or
// NLST, using passive (PASV, EPSV) or active (PORT, EPRT) data connections.
//
//	srv := ftpstub.New(0)
//	if err := srv.Run(); err != nil {
//	    t.Fatal(err)
//	}
//	defer srv.Stop()
//	srv.AddFile("foo.txt", "seeded content")
//	// ... client stores bar.txt ...
//	got := srv.Files("bar.txt") // "" if never stored
//
// Transfers default to ASCII mode, as RFC 959 specifies. In ASCII mode STOR
// stores every received line with a CRLF terminator and RETR sends bare LF
// as CRLF. After TYPE I both directions move bytes unchanged.
//
// Each session is handled on its own goroutine and commands on one session
// run one at a time, so a transfer occupies its session until it completes.
package ftpstub
