package loader

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/qmuntal/gltf"
)

// Common errors returned by the loader.
var (
	ErrFetch              = errors.New("fetch failed")
	ErrInvalidURI         = errors.New("invalid URI")
	ErrInvalidGLB         = errors.New("invalid GLB container")
	ErrUnsupportedVersion = errors.New("unsupported glTF version")
	ErrBufferSizeMismatch = errors.New("buffer shorter than its byteLength")
	ErrNotImage           = errors.New("payload is not a supported image")
	ErrOutOfRange         = errors.New("index out of range")
)

// LoaderBackendType identifies where the loader fetches resources from.
type LoaderBackendType int

const (
	// BackendTypeFS reads from a file system, the working directory unless WithFS is given.
	BackendTypeFS LoaderBackendType = iota
	// BackendTypeHTTP issues GET requests relative to the URL given with WithBaseURL.
	BackendTypeHTTP
)

const defaultWorkers = 4

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	backend loaderBackend
	pool    worker.DynamicWorkerPool
	workers int

	fsys    fs.FS
	client  *http.Client
	baseURL *url.URL

	documentCache map[string]*gltf.Document
}

// Loader fetches glTF documents, their binary buffers and images, and caches fully loaded
// documents by name.
type Loader interface {
	// ReadGLTF fetches name and parses it as a glTF document. JSON and GLB payloads are told apart
	// by the GLB magic. The asset version must be 2.x. For GLB the binary chunk becomes the data of
	// the first buffer; external buffers are left unloaded (see LoadBuffers).
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - name: the document name
	//
	// Returns:
	//   - *gltf.Document: the parsed document
	//   - error: error if the fetch or parse fails
	ReadGLTF(ctx context.Context, name string) (*gltf.Document, error)

	// ReadGLTFBin fetches name as a raw binary payload.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - name: the resource name
	//
	// Returns:
	//   - []byte: the payload
	//   - error: error if the fetch fails
	ReadGLTFBin(ctx context.Context, name string) ([]byte, error)

	// ReadImage fetches name and decodes it as an image (see DecodeImage).
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - name: the resource name
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error if the fetch or decode fails
	ReadImage(ctx context.Context, name string) (image.Image, error)

	// DocumentImage decodes doc.Images[index], reading it from a buffer view, a data URI or a
	// resource relative to name.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - name: the name doc was read from
	//   - doc: the document, with buffers loaded
	//   - index: the image index
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error wrapping ErrOutOfRange for bad indices, or the fetch/decode error
	DocumentImage(ctx context.Context, name string, doc *gltf.Document, index int) (image.Image, error)

	// LoadBuffers fills Data for every buffer of doc that has none. External URIs are resolved
	// relative to name. Fetches run concurrently on the loader's worker pool; all of them finish
	// before LoadBuffers returns.
	//
	// Parameters:
	//   - ctx: cancels the fetches
	//   - name: the name doc was read from
	//   - doc: the document to fill
	//
	// Returns:
	//   - error: the joined errors of every failed buffer
	LoadBuffers(ctx context.Context, name string, doc *gltf.Document) error

	// Load reads name with ReadGLTF, loads its buffers and caches the result.
	// If the document is already cached, the cached version is returned.
	//
	// Parameters:
	//   - ctx: cancels the fetches
	//   - name: the document name
	//
	// Returns:
	//   - *gltf.Document: the loaded document
	//   - error: error if loading fails
	Load(ctx context.Context, name string) (*gltf.Document, error)

	// Get retrieves a cached document by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *gltf.Document: the cached document or nil
	Get(name string) *gltf.Document

	// Documents returns a copy of the document cache.
	//
	// Returns:
	//   - map[string]*gltf.Document: all cached documents keyed by name
	Documents() map[string]*gltf.Document

	// Evict removes name from the cache so the next Load fetches it again.
	//
	// Parameters:
	//   - name: the cache key to remove
	Evict(name string)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: where resources are fetched from (BackendTypeFS or BackendTypeHTTP)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:            sync.RWMutex{},
		workers:       defaultWorkers,
		documentCache: make(map[string]*gltf.Document),
	}

	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeHTTP:
		l.backend = newHTTPLoaderBackend(l.client, l.baseURL)
	default:
		if l.fsys == nil {
			l.fsys = os.DirFS(".")
		}
		l.backend = newFSLoaderBackend(l.fsys)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)

	return l
}

func (l *loader) ReadGLTF(ctx context.Context, name string) (*gltf.Document, error) {
	data, err := l.backend.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return doc, nil
}

func (l *loader) ReadGLTFBin(ctx context.Context, name string) ([]byte, error) {
	return l.backend.Fetch(ctx, name)
}

func (l *loader) ReadImage(ctx context.Context, name string) (image.Image, error) {
	data, err := l.backend.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	img, _, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return img, nil
}

func (l *loader) DocumentImage(ctx context.Context, name string, doc *gltf.Document, index int) (image.Image, error) {
	if index < 0 || index >= len(doc.Images) {
		return nil, fmt.Errorf("image %d (have %d): %w", index, len(doc.Images), ErrOutOfRange)
	}
	src := doc.Images[index]

	var data []byte
	switch {
	case src.BufferView != nil:
		bv, err := bufferViewBytes(doc, *src.BufferView)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", index, err)
		}
		data = bv
	case isDataURI(src.URI):
		d, err := decodeDataURI(src.URI)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", index, err)
		}
		data = d
	default:
		ref, err := l.backend.Resolve(name, src.URI)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", index, err)
		}
		return l.ReadImage(ctx, ref)
	}

	img, _, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", index, err)
	}
	return img, nil
}

func (l *loader) LoadBuffers(ctx context.Context, name string, doc *gltf.Document) error {
	errs := make([]error, len(doc.Buffers))
	var wg sync.WaitGroup

	for i, buf := range doc.Buffers {
		if len(buf.Data) > 0 || (buf.URI == "" && buf.ByteLength == 0) {
			continue
		}
		if buf.URI == "" {
			errs[i] = fmt.Errorf("buffer %d has no URI and no GLB binary chunk: %w", i, ErrInvalidURI)
			continue
		}

		wg.Add(1)
		idx, b := i, buf
		l.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				data, err := l.fetchBuffer(ctx, name, b)
				if err != nil {
					errs[idx] = fmt.Errorf("buffer %d: %w", idx, err)
					return nil, errs[idx]
				}
				b.Data = data
				return nil, nil
			},
		})
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (l *loader) fetchBuffer(ctx context.Context, name string, buf *gltf.Buffer) ([]byte, error) {
	var data []byte
	if isDataURI(buf.URI) {
		d, err := decodeDataURI(buf.URI)
		if err != nil {
			return nil, err
		}
		data = d
	} else {
		ref, err := l.backend.Resolve(name, buf.URI)
		if err != nil {
			return nil, err
		}
		if data, err = l.backend.Fetch(ctx, ref); err != nil {
			return nil, err
		}
	}
	if len(data) < buf.ByteLength {
		return nil, fmt.Errorf("have %d of %d bytes: %w", len(data), buf.ByteLength, ErrBufferSizeMismatch)
	}
	return data[:buf.ByteLength], nil
}

func (l *loader) Load(ctx context.Context, name string) (*gltf.Document, error) {
	l.mu.RLock()
	if cached, ok := l.documentCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	doc, err := l.ReadGLTF(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := l.LoadBuffers(ctx, name, doc); err != nil {
		return nil, fmt.Errorf("failed to load buffers of %s: %w", name, err)
	}

	l.mu.Lock()
	l.documentCache[name] = doc
	l.mu.Unlock()

	log.Printf("[Loader] loaded %s: %d nodes, %d meshes, %d buffers", name, len(doc.Nodes), len(doc.Meshes), len(doc.Buffers))
	return doc, nil
}

func (l *loader) Get(name string) *gltf.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.documentCache[name]
}

func (l *loader) Documents() map[string]*gltf.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*gltf.Document, len(l.documentCache))
	for k, v := range l.documentCache {
		result[k] = v
	}
	return result
}

func (l *loader) Evict(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.documentCache, name)
}

// bufferViewBytes returns the bytes of a buffer view from a document with loaded buffers.
func bufferViewBytes(doc *gltf.Document, index int) ([]byte, error) {
	if index < 0 || index >= len(doc.BufferViews) {
		return nil, fmt.Errorf("bufferView %d (have %d): %w", index, len(doc.BufferViews), ErrOutOfRange)
	}
	bv := doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("bufferView %d buffer %d (have %d): %w", index, bv.Buffer, len(doc.Buffers), ErrOutOfRange)
	}
	data := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("bufferView %d [%d, %d) of %d bytes: %w", index, bv.ByteOffset, end, len(data), ErrOutOfRange)
	}
	return data[bv.ByteOffset:end], nil
}
