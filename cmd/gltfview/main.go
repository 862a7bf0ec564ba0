// Command gltfview loads a glTF 2.0 model, prints an outline of its scene and draws its
// geometry with a flat shader.
//
// Usage:
//
//	gltfview [-config viewer.toml] [-backend gl|wgpu] [-watch] [-profile] [-html out.html] [model.gltf]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
)

func main() {
	configPath := flag.String("config", "", "TOML or YAML config file")
	backend := flag.String("backend", "", "gl (window) or wgpu (headless upload)")
	watch := flag.Bool("watch", false, "reload the model when it changes on disk")
	html := flag.String("html", "", "also write the outline as HTML to this file")
	profile := flag.Bool("profile", false, "log frame statistics every second")
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			log.Fatalf("[Viewer] %v", err)
		}
	}
	if flag.NArg() > 0 {
		cfg.Model = flag.Arg(0)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *watch {
		cfg.Watch = true
	}
	if *profile {
		cfg.Profile = true
	}
	if *html != "" {
		cfg.Outline.HTML = *html
	}
	if err := cfg.finalize(); err != nil {
		log.Fatalf("[Viewer] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cfg.Backend {
	case "wgpu":
		err = runHeadless(ctx, cfg)
	default:
		err = runWindow(ctx, cfg)
	}
	if err != nil {
		log.Fatalf("[Viewer] %v", err)
	}
}
