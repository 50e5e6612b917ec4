package storage

import "errors"

// ErrShutdown is returned by Set after the storage was shut down.
var ErrShutdown = errors.New("storage: shut down")
