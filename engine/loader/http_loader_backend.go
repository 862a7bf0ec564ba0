package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// httpLoaderBackendImpl fetches resources with GET requests relative to a base URL.
type httpLoaderBackendImpl struct {
	client *http.Client
	base   *url.URL
}

var _ loaderBackend = &httpLoaderBackendImpl{}

func newHTTPLoaderBackend(client *http.Client, base *url.URL) loaderBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpLoaderBackendImpl{client: client, base: base}
}

func (b *httpLoaderBackendImpl) Fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := b.resolve(name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", u, err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s: %w", u, resp.Status, ErrFetch)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: failed to read body: %w", u, err)
	}
	return data, nil
}

// Resolve resolves ref against the URL of doc and returns the absolute URL, keeping ref's escaping.
func (b *httpLoaderBackendImpl) Resolve(doc, ref string) (string, error) {
	u, err := parseRef(ref)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return ref, nil
	}
	docURL, err := b.resolve(doc)
	if err != nil {
		return "", err
	}
	return docURL.ResolveReference(u).String(), nil
}

func (b *httpLoaderBackendImpl) resolve(name string) (*url.URL, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", name, ErrInvalidURI)
	}
	if b.base == nil {
		if !ref.IsAbs() {
			return nil, fmt.Errorf("%q is relative and no base URL is set: %w", name, ErrInvalidURI)
		}
		return ref, nil
	}
	return b.base.ResolveReference(ref), nil
}
