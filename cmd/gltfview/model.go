package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/output"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/resolver"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// model is a loaded document and the scene picked from it.
type model struct {
	name  string
	doc   *gltf.Document
	scene *resolver.Scene
	// sceneIndex is the index scene was resolved from.
	sceneIndex int
}

// newLoader builds a loader for cfg and returns the name the model is fetched under.
// Local models are read from a file system rooted at their directory.
func newLoader(cfg config) (loader.Loader, string, error) {
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("base URL: %w", err)
		}
		return loader.NewLoader(loader.BackendTypeHTTP,
			loader.WithBaseURL(base),
			loader.WithWorkers(cfg.Workers),
		), cfg.Model, nil
	}

	abs, err := filepath.Abs(cfg.Model)
	if err != nil {
		return nil, "", err
	}
	return loader.NewLoader(loader.BackendTypeFS,
		loader.WithFS(os.DirFS(filepath.Dir(abs))),
		loader.WithWorkers(cfg.Workers),
	), filepath.Base(abs), nil
}

// loadModel loads name through l and resolves scene index, or the default scene when index is negative.
func loadModel(ctx context.Context, l loader.Loader, name string, index int) (*model, error) {
	doc, err := l.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	r := resolver.NewResolver(doc)
	if index < 0 {
		index = 0
		if doc.Scene != nil {
			index = *doc.Scene
		}
	}
	scene, err := r.ResolveSceneIndex(index)
	if err != nil {
		return nil, fmt.Errorf("%s scene %d: %w", name, index, err)
	}
	return &model{name: name, doc: doc, scene: scene, sceneIndex: index}, nil
}

// buffers returns the loaded data of every document buffer, indexed like doc.Buffers.
func (m *model) buffers() [][]byte {
	out := make([][]byte, len(m.doc.Buffers))
	for i, b := range m.doc.Buffers {
		out[i] = b.Data
	}
	return out
}

// primitives counts the primitives drawn for one frame of the scene.
func (m *model) primitives() int {
	count := 0
	_ = m.scene.Walk(func(n *resolver.Node, _ mgl32.Mat4) error {
		if n.Mesh != nil {
			count += len(n.Mesh.Primitives)
		}
		return nil
	})
	return count
}

// printOutline writes the scene outline to stdout and, if configured, to an HTML file.
func printOutline(cfg outlineConfig, m *model) error {
	o := output.NewOutliner()
	if !cfg.Quiet {
		o.AddSink(output.WriterSink(os.Stdout))
	}
	if cfg.HTML != "" {
		f, err := os.Create(cfg.HTML)
		if err != nil {
			return err
		}
		defer f.Close()
		o.AddSink(output.HTMLSink(f))
	}

	if err := o.Output(0, fmt.Sprintf("%s (glTF %s)", m.name, m.doc.Asset.Version)); err != nil {
		return err
	}
	return output.DescribeScene(o, m.scene)
}

// uploadImages decodes every document image and uploads it with MakeTexture, resized to power of
// two dimensions. Images that fail are logged and skipped.
func uploadImages(ctx context.Context, tctx renderer.TextureContext, l loader.Loader, m *model) []common.Texture {
	textures := make([]common.Texture, 0, len(m.doc.Images))
	for i := range m.doc.Images {
		img, err := l.DocumentImage(ctx, m.name, m.doc, i)
		if err != nil {
			log.Printf("[Viewer] %s: %v", m.name, err)
			continue
		}
		tex, err := renderer.MakeTexture(tctx, img, renderer.Texture2D, renderer.UnsignedByte, renderer.WithPowerOfTwo(true))
		if err != nil {
			log.Printf("[Viewer] %s image %d: %v", m.name, i, err)
			continue
		}
		textures = append(textures, tex)
	}
	return textures
}
