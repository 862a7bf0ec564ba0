package loader

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// loaderBackend fetches raw payloads by name. Concrete implementations (httpLoaderBackendImpl,
// fsLoaderBackendImpl) decide what a name means.
type loaderBackend interface {
	// Fetch reads the whole payload stored under name.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - name: the resource name, relative to the backend root
	//
	// Returns:
	//   - []byte: the payload
	//   - error: error if the resource cannot be read
	Fetch(ctx context.Context, name string) ([]byte, error)

	// Resolve turns a URI found inside the document named doc into a name Fetch accepts.
	Resolve(doc, ref string) (string, error)
}

// parseRef parses a URI found inside a document. Root-relative references are rejected.
func parseRef(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", ref, ErrInvalidURI)
	}
	if !u.IsAbs() && strings.HasPrefix(ref, "/") {
		return nil, fmt.Errorf("%q: %w", ref, ErrInvalidURI)
	}
	return u, nil
}
