// Package wgpubackend uploads glTF buffer views and textures to WebGPU through the same
// renderer.BufferContext and renderer.TextureContext calls the GL backends accept, so SliceScene and
// MakeTexture can target a wgpu device unchanged.
package wgpubackend

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// Common errors returned by the wgpu context.
var (
	ErrUnknownHandle = errors.New("unknown handle")
	ErrNoData        = errors.New("nothing uploaded for handle")
)

// Context emulates the GL buffer and texture binding model on a wgpu device. Each handle owns the
// wgpu object created by its most recent BufferData or TexImage2D.
type Context interface {
	renderer.BufferContext
	renderer.TextureContext

	// Buffer returns the wgpu buffer uploaded for handle.
	//
	// Parameters:
	//   - handle: a handle returned by CreateBuffer
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: error wrapping ErrUnknownHandle or ErrNoData
	Buffer(handle common.Buffer) (*wgpu.Buffer, error)

	// TextureView returns a view of the texture uploaded for handle.
	//
	// Parameters:
	//   - handle: a handle returned by CreateTexture
	//
	// Returns:
	//   - *wgpu.TextureView: the view
	//   - error: error wrapping ErrUnknownHandle or ErrNoData
	TextureView(handle common.Texture) (*wgpu.TextureView, error)

	// Sampler builds a sampler from the parameters set on handle with TexParameteri.
	//
	// Parameters:
	//   - handle: a handle returned by CreateTexture
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	//   - error: error wrapping ErrUnknownHandle, or the device error
	Sampler(handle common.Texture) (*wgpu.Sampler, error)

	// Release destroys every wgpu object created through the context. A device created by
	// NewHeadlessContext is released too.
	Release()
}

type bufferEntry struct {
	buffer *wgpu.Buffer
}

type textureEntry struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	params  map[renderer.Enum]int32
}

type wgpuContextImpl struct {
	mu *sync.Mutex

	instance  *wgpu.Instance
	adapter   *wgpu.Adapter
	device    *wgpu.Device
	queue     *wgpu.Queue
	ownDevice bool

	next          uint32
	buffers       map[common.Buffer]*bufferEntry
	textures      map[common.Texture]*textureEntry
	boundBuffers  map[renderer.Enum]common.Buffer
	boundTextures map[renderer.Enum]common.Texture
}

var _ Context = &wgpuContextImpl{}

// NewContext wraps an existing device.
//
// Parameters:
//   - device: the wgpu device to allocate on
//
// Returns:
//   - Context: the context
func NewContext(device *wgpu.Device) Context {
	c := newContext()
	c.device = device
	c.queue = device.GetQueue()
	return c
}

// NewHeadlessContext requests an adapter and device without a surface, for uploads that never reach
// a window.
//
// Parameters:
//   - forceFallbackAdapter: request the software adapter
//
// Returns:
//   - Context: the context
//   - error: error if no adapter or device is available
func NewHeadlessContext(forceFallbackAdapter bool) (Context, error) {
	runtime.LockOSThread()
	c := newContext()
	c.instance = wgpu.CreateInstance(nil)

	a, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		c.instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	c.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{Label: "glTF Upload Device"})
	if err != nil {
		a.Release()
		c.instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	c.device = d
	c.queue = d.GetQueue()
	c.ownDevice = true
	return c, nil
}

func newContext() *wgpuContextImpl {
	return &wgpuContextImpl{
		mu:            &sync.Mutex{},
		buffers:       make(map[common.Buffer]*bufferEntry),
		textures:      make(map[common.Texture]*textureEntry),
		boundBuffers:  make(map[renderer.Enum]common.Buffer),
		boundTextures: make(map[renderer.Enum]common.Texture),
	}
}

func (c *wgpuContextImpl) CreateBuffer() common.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	h := common.Buffer(c.next)
	c.buffers[h] = &bufferEntry{}
	return h
}

func (c *wgpuContextImpl) BindBuffer(target renderer.Enum, buffer common.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boundBuffers[target] = buffer
}

func (c *wgpuContextImpl) BufferData(target renderer.Enum, data []byte, _ renderer.Enum) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := c.boundBuffers[target]
	entry, ok := c.buffers[h]
	if !ok {
		log.Printf("[WGPU] BufferData: no buffer bound to 0x%X", uint32(target))
		return
	}
	if entry.buffer != nil {
		entry.buffer.Release()
		entry.buffer = nil
	}

	padded := align4(data)
	buf, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            fmt.Sprintf("glTF Buffer %d", h),
		Size:             uint64(len(padded)),
		Usage:            bufferUsage(target) | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		log.Printf("[WGPU] BufferData: %v", err)
		return
	}
	if len(padded) > 0 {
		c.queue.WriteBuffer(buf, 0, padded)
	}
	entry.buffer = buf
}

func (c *wgpuContextImpl) CreateTexture() common.Texture {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	h := common.Texture(c.next)
	c.textures[h] = &textureEntry{params: make(map[renderer.Enum]int32)}
	return h
}

func (c *wgpuContextImpl) BindTexture(target renderer.Enum, texture common.Texture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boundTextures[target] = texture
}

func (c *wgpuContextImpl) TexImage2D(target renderer.Enum, level int32, _ renderer.Enum, width, height int32, format, typ renderer.Enum, pixels []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := c.boundTextures[target]
	entry, ok := c.textures[h]
	if !ok {
		log.Printf("[WGPU] TexImage2D: no texture bound to 0x%X", uint32(target))
		return
	}
	if level != 0 {
		log.Printf("[WGPU] TexImage2D: mip level %d ignored", level)
		return
	}
	rgba, err := expandRGBA(pixels, int(width), int(height), format, typ)
	if err != nil {
		log.Printf("[WGPU] TexImage2D: %v", err)
		return
	}
	entry.releaseImage()

	extent := wgpu.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         fmt.Sprintf("glTF Texture %d", h),
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          extent,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		log.Printf("[WGPU] TexImage2D: %v", err)
		return
	}

	c.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		rgba,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(width) * 4,
			RowsPerImage: uint32(height),
		},
		&extent,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		log.Printf("[WGPU] TexImage2D: %v", err)
		return
	}
	entry.texture = tex
	entry.view = view
}

func (c *wgpuContextImpl) TexParameteri(target, pname renderer.Enum, param int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.textures[c.boundTextures[target]]
	if !ok {
		return
	}
	entry.params[pname] = param
	if entry.sampler != nil {
		entry.sampler.Release()
		entry.sampler = nil
	}
}

func (c *wgpuContextImpl) Buffer(handle common.Buffer) (*wgpu.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.buffers[handle]
	if !ok {
		return nil, fmt.Errorf("buffer %d: %w", handle, ErrUnknownHandle)
	}
	if entry.buffer == nil {
		return nil, fmt.Errorf("buffer %d: %w", handle, ErrNoData)
	}
	return entry.buffer, nil
}

func (c *wgpuContextImpl) TextureView(handle common.Texture) (*wgpu.TextureView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.textures[handle]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", handle, ErrUnknownHandle)
	}
	if entry.view == nil {
		return nil, fmt.Errorf("texture %d: %w", handle, ErrNoData)
	}
	return entry.view, nil
}

func (c *wgpuContextImpl) Sampler(handle common.Texture) (*wgpu.Sampler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.textures[handle]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", handle, ErrUnknownHandle)
	}
	if entry.sampler != nil {
		return entry.sampler, nil
	}
	desc := samplerDescriptor(entry.params)
	desc.Label = fmt.Sprintf("glTF Sampler %d", handle)
	samp, err := c.device.CreateSampler(&desc)
	if err != nil {
		return nil, err
	}
	entry.sampler = samp
	return samp, nil
}

func (c *wgpuContextImpl) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for h, entry := range c.buffers {
		if entry.buffer != nil {
			entry.buffer.Release()
		}
		delete(c.buffers, h)
	}
	for h, entry := range c.textures {
		entry.releaseImage()
		if entry.sampler != nil {
			entry.sampler.Release()
		}
		delete(c.textures, h)
	}
	if c.ownDevice {
		c.device.Release()
		c.adapter.Release()
		c.instance.Release()
		c.ownDevice = false
	}
}

func (e *textureEntry) releaseImage() {
	if e.view != nil {
		e.view.Release()
		e.view = nil
	}
	if e.texture != nil {
		e.texture.Release()
		e.texture = nil
	}
}

func bufferUsage(target renderer.Enum) wgpu.BufferUsage {
	if target == renderer.ElementArrayBuffer {
		return wgpu.BufferUsageIndex
	}
	return wgpu.BufferUsageVertex
}

// align4 pads data to the 4-byte multiple WriteBuffer requires.
func align4(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	padded := make([]byte, (len(data)+3)&^3)
	copy(padded, data)
	return padded
}
