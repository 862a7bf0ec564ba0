package main

import (
	"context"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/wgpubackend"
	"github.com/Carmen-Shannon/oxy-gl/engine/resolver"
)

// runHeadless uploads the model's buffer views and images to a wgpu device without opening a
// window, then reports what reached the GPU. With Watch set it repeats on every change until ctx ends.
func runHeadless(ctx context.Context, cfg config) error {
	wctx, err := wgpubackend.NewHeadlessContext(false)
	if err != nil {
		return err
	}
	defer wctx.Release()

	l, name, err := newLoader(cfg)
	if err != nil {
		return err
	}
	if err := uploadOnce(ctx, cfg, wctx, l, name); err != nil {
		return err
	}
	if !cfg.Watch || cfg.BaseURL != "" {
		return nil
	}

	changed, err := watchFile(ctx, cfg.Model)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			l.Evict(name)
			if err := uploadOnce(ctx, cfg, wctx, l, name); err != nil {
				log.Printf("[Viewer] reload %s: %v", name, err)
			}
		}
	}
}

func uploadOnce(ctx context.Context, cfg config, wctx wgpubackend.Context, l loader.Loader, name string) error {
	m, err := loadModel(ctx, l, name, cfg.Scene)
	if err != nil {
		return err
	}
	if err := printOutline(cfg.Outline, m); err != nil {
		log.Printf("[Viewer] outline: %v", err)
	}
	if err := renderer.SliceScene(wctx, m.scene, m.buffers()); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	buffers, bytes, err := gpuBuffers(wctx, m.scene)
	if err != nil {
		return err
	}
	textures := uploadImages(ctx, wctx, l, m)
	for _, tex := range textures {
		if _, err := wctx.TextureView(tex); err != nil {
			return err
		}
		if _, err := wctx.Sampler(tex); err != nil {
			return err
		}
	}

	log.Printf("[Viewer] %s: %d GPU buffers (%d bytes), %d textures", name, buffers, bytes, len(textures))
	return nil
}

// gpuBuffers counts the distinct GPU buffers behind the scene's buffer views and their total size.
func gpuBuffers(wctx wgpubackend.Context, scene *resolver.Scene) (int, uint64, error) {
	seen := make(map[common.Buffer]bool)
	var total uint64
	for _, a := range scene.Accessors() {
		if a.BufferView == nil || seen[a.BufferView.GLBuffer] {
			continue
		}
		b, err := wctx.Buffer(a.BufferView.GLBuffer)
		if err != nil {
			return 0, 0, fmt.Errorf("bufferView %d: %w", a.BufferView.Index, err)
		}
		seen[a.BufferView.GLBuffer] = true
		total += b.GetSize()
	}
	return len(seen), total, nil
}
