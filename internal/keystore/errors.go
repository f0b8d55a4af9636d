package keystore

import "errors"

var (
	// ErrNoProject is returned by [New] in REST mode when no project id is
	// configured and none can be derived from the ambient credentials.
	ErrNoProject = errors.New("no Google Cloud project id configured or found in credentials")

	// ErrClosed is returned by operations on a closed KeyStore.
	ErrClosed = errors.New("keystore is closed")
)
