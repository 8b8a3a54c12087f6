// Package logging provides structured logging configuration for the stub
// servers and the stubserver CLI.
//
// Library code never logs unless given a logger. Servers accept a
// *slog.Logger through their WithLogger option and default to Nop(). Tests
// that want to see stub traffic can pass ForTest(t):
//
//	srv := httpstub.New(0, httpstub.WithLogger(logging.ForTest(t)))
//
// The CLI builds its logger from flags:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.ParseFormat("json"),
//	})
package logging
