// Package cli provides the stubserver command-line interface.
//
// Commands:
//   - serve: run the HTTP and FTP stubs described by a definition file until
//     interrupted or until --duration elapses, then verify the HTTP
//     expectations and exit non-zero if any were never consumed
//   - validate: parse and validate a definition file without starting anything
//   - version: show build information
//
// Usage:
//
//	stubserver serve --config stubs.yaml
//	stubserver serve --config stubs.yaml --http-port 0 --duration 30s
//	stubserver validate stubs.yaml --json
package cli
