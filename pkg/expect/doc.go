// Package expect holds the expectation engine shared by the stub servers.
//
// An Expectation pairs a request Matcher with a synthetic Response. A
// Registry keeps expectations in declaration order and hands each incoming
// request to the first unsatisfied expectation that matches it. Every
// expectation is single-use: once a request consumes it, it never matches
// again, so declaring the same call twice means expecting it twice.
//
// After the server has stopped, Registry.Verify reports every expectation no
// request consumed as a *VerificationError.
//
// A Capture lets a test see what the client sent:
//
//	var got expect.Capture
//	reg.Add(&expect.Expectation{
//	    Matcher:  expect.Matcher{Method: "PUT", URLPattern: `/address/\d+$`},
//	    Capture:  &got,
//	    Response: expect.StatusResponse(201),
//	})
//	...
//	got.Body() // exact request body
package expect
