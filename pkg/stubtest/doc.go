// Package stubtest wires the HTTP and FTP stub servers into Go tests.
//
// NewHTTP and NewFTP start a stub on an ephemeral port and register cleanup
// with the test. The HTTP cleanup stops the server and fails the test when
// any expectation was never consumed:
//
//	func TestClientUpdatesAddress(t *testing.T) {
//	    srv := stubtest.NewHTTP(t)
//	    var body expect.Capture
//	    srv.Expect("PUT", "^/address/45$").CaptureBody(&body).ReturnStatus(204)
//
//	    client := NewClient(srv.URL())
//	    client.UpdateAddress(45, "<address/>")
//
//	    stubtest.AssertCaptured(t, &body, "<address/>")
//	}
//
// FTP stubs expose their file store for assertions:
//
//	srv := stubtest.NewFTP(t)
//	srv.AddFile("input.csv", "a,b\r\n")
//	runJob(srv.Addr().String())
//	stubtest.AssertFile(t, srv, "output.csv", "ok\r\n")
//
// Assertions report through t.Errorf and return whether they passed, so a
// test can keep going and collect every failure.
package stubtest
