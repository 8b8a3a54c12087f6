package stubtest

import (
	"errors"
	"testing"

	"github.com/getmockd/stubserver/pkg/ftpstub"
	"github.com/getmockd/stubserver/pkg/httpstub"
	"github.com/getmockd/stubserver/pkg/logging"
)

// NewHTTP starts an HTTP stub on a random loopback port. Traffic is logged
// through t. When the test finishes the server is stopped and verified, and
// unconsumed expectations fail the test.
func NewHTTP(t testing.TB, opts ...httpstub.Option) *httpstub.Server {
	t.Helper()

	base := []httpstub.Option{
		httpstub.WithHost("127.0.0.1"),
		httpstub.WithLogger(logging.ForTest(t)),
	}
	srv := httpstub.New(0, append(base, opts...)...)
	if err := srv.Run(); err != nil {
		t.Fatalf("failed to start HTTP stub: %v", err)
	}

	t.Cleanup(func() {
		if err := srv.Stop(); err != nil && !errors.Is(err, httpstub.ErrNotRunning) {
			t.Errorf("failed to stop HTTP stub: %v", err)
		}
		if err := srv.Verify(); err != nil {
			t.Errorf("%v", err)
		}
	})
	return srv
}

// NewFTP starts an FTP stub on a random loopback port and stops it when the
// test finishes.
func NewFTP(t testing.TB, opts ...ftpstub.Option) *ftpstub.Server {
	t.Helper()

	base := []ftpstub.Option{
		ftpstub.WithHost("127.0.0.1"),
		ftpstub.WithLogger(logging.ForTest(t)),
	}
	srv := ftpstub.New(0, append(base, opts...)...)
	if err := srv.Run(); err != nil {
		t.Fatalf("failed to start FTP stub: %v", err)
	}

	t.Cleanup(func() {
		if err := srv.Stop(); err != nil && !errors.Is(err, ftpstub.ErrNotRunning) {
			t.Errorf("failed to stop FTP stub: %v", err)
		}
	})
	return srv
}
