package pushhttp

import "errors"

var (
	ErrStart    = errors.New("pushhttp: failed to start server")
	ErrShutdown = errors.New("pushhttp: server shutdown failed")
)
