package loader

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
)

// fsLoaderBackendImpl reads resources from a file system. Names are slash-separated paths relative
// to the file system root.
type fsLoaderBackendImpl struct {
	fsys fs.FS
}

var _ loaderBackend = &fsLoaderBackendImpl{}

func newFSLoaderBackend(fsys fs.FS) loaderBackend {
	return &fsLoaderBackendImpl{fsys: fsys}
}

func (b *fsLoaderBackendImpl) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(p) {
		return nil, fmt.Errorf("%q: %w", name, ErrInvalidURI)
	}
	data, err := fs.ReadFile(b.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// Resolve percent-decodes ref and joins it to the directory of doc. Absolute URLs are returned as-is
// and fail in Fetch.
func (b *fsLoaderBackendImpl) Resolve(doc, ref string) (string, error) {
	u, err := parseRef(ref)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return ref, nil
	}
	p, err := url.PathUnescape(ref)
	if err != nil {
		return "", fmt.Errorf("%q: %w", ref, ErrInvalidURI)
	}
	return path.Join(path.Dir(doc), p), nil
}
