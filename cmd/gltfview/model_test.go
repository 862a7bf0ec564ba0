package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleGLTF is one triangle with an embedded buffer: three float VEC3 positions.
const triangleGLTF = `{
	"asset": {"version": "2.0"},
	"scene": 1,
	"scenes": [{"name": "empty"}, {"name": "main", "nodes": [0]}],
	"nodes": [{"name": "tri", "mesh": 0}],
	"meshes": [{"name": "triangle", "primitives": [{"attributes": {"POSITION": 0}}]}],
	"accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3",
		"min": [0, 0, 0], "max": [1, 1, 0]}],
	"bufferViews": [{"buffer": 0, "byteLength": 36}],
	"buffers": [{"byteLength": 36, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAA"}]
}`

func TestLoadModelDefaultScene(t *testing.T) {
	p := writeFile(t, t.TempDir(), "tri.gltf", triangleGLTF)
	cfg := defaultConfig()
	cfg.Model = p
	require.NoError(t, cfg.finalize())

	l, name, err := newLoader(cfg)
	require.NoError(t, err)
	assert.Equal(t, "tri.gltf", name)

	m, err := loadModel(context.Background(), l, name, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, m.sceneIndex)
	assert.Equal(t, "main", m.scene.Name)
	require.Len(t, m.buffers(), 1)
	assert.Len(t, m.buffers()[0], 36)

	lo, hi, ok := m.scene.Bounds()
	require.True(t, ok)
	assert.Equal(t, float32(1), hi.X())
	assert.Equal(t, float32(0), lo.Y())

	m, err = loadModel(context.Background(), l, name, 0)
	require.NoError(t, err)
	assert.Empty(t, m.scene.Nodes)

	_, err = loadModel(context.Background(), l, name, 5)
	assert.Error(t, err)
}

func TestPrintOutlineHTML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "tri.gltf", triangleGLTF)
	cfg := defaultConfig()
	cfg.Model = p
	require.NoError(t, cfg.finalize())

	l, name, err := newLoader(cfg)
	require.NoError(t, err)
	m, err := loadModel(context.Background(), l, name, -1)
	require.NoError(t, err)

	htmlPath := filepath.Join(dir, "outline.html")
	require.NoError(t, printOutline(outlineConfig{Quiet: true, HTML: htmlPath}, m))

	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, "<h1>-tri.gltf (glTF 2.0)</h1>"), out)
	assert.Contains(t, out, `scene &#34;main&#34;`)
	assert.Contains(t, out, "POSITION")
}

func TestWatchFileSignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "tri.gltf", triangleGLTF)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed, err := watchFile(ctx, p)
	require.NoError(t, err)

	writeFile(t, dir, "other.gltf", "{}")
	writeFile(t, dir, "tri.gltf", triangleGLTF)

	assert.Eventually(t, func() bool {
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}
