// Package httpstub runs a real HTTP server whose answers are declared by the
// test that owns it.
//
// Declare expectations, run, exercise the client, stop, then verify:
//
//	srv := httpstub.New(8998)
//	err := srv.Expect("GET", `/address/\d+$`).ReturnFile("./data.txt", "text/xml")
//	if err := srv.Run(); err != nil { ... }
//	// client code talks to http://localhost:8998
//	srv.Stop()
//	if err := srv.Verify(); err != nil { ... } // lists unconsumed expectations
//
// URL patterns are RE2 expressions searched anywhere in the request path, so
// a pattern that must match the whole path anchors itself with ^ and $.
// Each expectation answers exactly one request. A request no expectation
// accepts gets a 500 response whose JSON body names the method, the path and
// the closest near misses.
//
// Lifecycle misuse (running twice, stopping twice, verifying before stop)
// returns the sentinel errors in errors.go, which are distinct from the
// *expect.VerificationError returned by Verify.
package httpstub
