package httpstub

import "errors"

// Lifecycle errors.
var (
	// ErrAlreadyRunning is returned by Run on a server that is serving.
	ErrAlreadyRunning = errors.New("httpstub: server is already running")

	// ErrNotRunning is returned by Stop on a server that is not serving.
	ErrNotRunning = errors.New("httpstub: server is not running")

	// ErrVerifyBeforeStop is returned by Verify unless the server has been
	// stopped, because expectations could still be consumed.
	ErrVerifyBeforeStop = errors.New("httpstub: verify called before stop")
)
