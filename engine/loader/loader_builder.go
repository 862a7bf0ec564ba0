package loader

import (
	"io/fs"
	"net/http"
	"net/url"

	"github.com/qmuntal/gltf"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFS is an option builder that sets the file system read by BackendTypeFS.
//
// Parameters:
//   - fsys: the file system root
//
// Returns:
//   - LoaderBuilderOption: a function that applies the file system option to a loader
func WithFS(fsys fs.FS) LoaderBuilderOption {
	return func(l *loader) {
		l.fsys = fsys
	}
}

// WithBaseURL is an option builder that sets the URL BackendTypeHTTP resolves names against.
//
// Parameters:
//   - base: the base URL, usually ending in a slash
//
// Returns:
//   - LoaderBuilderOption: a function that applies the base URL option to a loader
func WithBaseURL(base *url.URL) LoaderBuilderOption {
	return func(l *loader) {
		l.baseURL = base
	}
}

// WithHTTPClient is an option builder that sets the client used by BackendTypeHTTP.
//
// Parameters:
//   - client: the HTTP client
//
// Returns:
//   - LoaderBuilderOption: a function that applies the client option to a loader
func WithHTTPClient(client *http.Client) LoaderBuilderOption {
	return func(l *loader) {
		l.client = client
	}
}

// WithWorkers is an option builder that sets how many buffers LoadBuffers fetches at once.
//
// Parameters:
//   - n: the worker count, ignored if not positive
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithDocument is an option builder that pre-populates the document cache.
//
// Parameters:
//   - name: the cache key for the document
//   - doc: the document to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the document option to a loader
func WithDocument(name string, doc *gltf.Document) LoaderBuilderOption {
	return func(l *loader) {
		l.documentCache[name] = doc
	}
}
