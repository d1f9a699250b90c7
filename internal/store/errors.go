package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

// unavailable marks err as a connectivity failure of the named backend.
func unavailable(backend string, err error) error {
	return fmt.Errorf("%s: %w: %v", backend, core.ErrDirectoryUnavailable, err)
}

// isConnectivityError reports whether err means the backend could not be reached
// (as opposed to the backend rejecting the operation).
func isConnectivityError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
