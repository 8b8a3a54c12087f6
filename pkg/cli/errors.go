package cli

import "errors"

// Common CLI errors
var (
	ErrUnsatisfied = errors.New("expectations not satisfied")
	ErrNoServers   = errors.New("definition file configures no servers")
)
