//go:build js && wasm

// Command gltfweb draws a glTF model into a WebGL canvas from WebAssembly.
//
// The page provides a canvas with id "gltf" and names the model in the "model" query parameter,
// resolved against the page URL.
package main

import (
	"context"
	"log"
	"net/url"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/output"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/webglbackend"
	"github.com/Carmen-Shannon/oxy-gl/engine/resolver"
	"github.com/go-gl/mathgl/mgl32"
)

const vertexShader = `attribute vec3 a_position;
uniform mat4 u_mvp;
varying float v_depth;
void main() {
	gl_Position = u_mvp * vec4(a_position, 1.0);
	v_depth = gl_Position.z / gl_Position.w;
}
`

const fragmentShader = `precision mediump float;
varying float v_depth;
void main() {
	float shade = 1.0 - 0.5 * clamp(v_depth * 0.5 + 0.5, 0.0, 1.0);
	gl_FragColor = vec4(vec3(0.85, 0.8, 0.7) * shade, 1.0);
}
`

func main() {
	doc := js.Global().Get("document")
	canvas := doc.Call("getElementById", "gltf")
	if canvas.IsNull() {
		log.Fatal("[Web] no canvas with id gltf")
	}

	page, err := url.Parse(js.Global().Get("location").Get("href").String())
	if err != nil {
		log.Fatalf("[Web] %v", err)
	}
	name := page.Query().Get("model")
	if name == "" {
		log.Fatal("[Web] no model query parameter")
	}

	glc, err := webglbackend.NewContext(canvas)
	if err != nil {
		log.Fatalf("[Web] %v", err)
	}
	program, err := renderer.CreateProgram(glc, vertexShader, fragmentShader)
	if err != nil {
		log.Fatalf("[Web] %v", err)
	}

	ctx := context.Background()
	l := loader.NewLoader(loader.BackendTypeHTTP, loader.WithBaseURL(page))
	gdoc, err := l.Load(ctx, name)
	if err != nil {
		log.Fatalf("[Web] %v", err)
	}
	scene, err := resolver.NewResolver(gdoc).ResolveDefault()
	if err != nil {
		log.Fatalf("[Web] %v", err)
	}

	buffers := make([][]byte, len(gdoc.Buffers))
	for i, b := range gdoc.Buffers {
		buffers[i] = b.Data
	}
	if err := renderer.SliceScene(glc, scene, buffers); err != nil {
		log.Fatalf("[Web] %v", err)
	}
	if err := output.DescribeScene(output.NewOutliner(output.WithSink(output.LogSink(nil))), scene); err != nil {
		log.Printf("[Web] outline: %v", err)
	}

	width, height := canvas.Get("width").Int(), canvas.Get("height").Int()
	glc.Viewport(int32(width), int32(height))
	cam := camera.NewCamera()
	cam.SetAspect(float32(width) / float32(max(height, 1)))
	if lo, hi, ok := scene.Bounds(); ok {
		cam.Frame(lo, hi)
	}

	opts := renderer.DrawOptions{PositionAttribute: "a_position", MVPUniform: "u_mvp"}
	var frame js.Func
	frame = js.FuncOf(func(js.Value, []js.Value) any {
		cam.Orbit(0.01, 0)
		glc.Clear(mgl32.Vec4{0.1, 0.1, 0.12, 1})
		if err := renderer.DrawScene(glc, program, scene, cam.ViewProjection(), opts); err != nil {
			log.Printf("[Web] draw: %v", err)
			frame.Release()
			return nil
		}
		js.Global().Call("requestAnimationFrame", frame)
		return nil
	})
	js.Global().Call("requestAnimationFrame", frame)

	select {}
}
