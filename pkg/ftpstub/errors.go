package ftpstub

import "errors"

// Lifecycle errors.
var (
	// ErrAlreadyRunning is returned by Run on a server that is serving.
	ErrAlreadyRunning = errors.New("ftpstub: server is already running")

	// ErrNotRunning is returned by Stop on a server that is not serving.
	ErrNotRunning = errors.New("ftpstub: server is not running")
)
