package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ayusman/wavegest/internal/app"
	"github.com/ayusman/wavegest/internal/capture"
	"github.com/ayusman/wavegest/internal/config"
	"github.com/ayusman/wavegest/internal/gesture"
	"github.com/ayusman/wavegest/internal/plugin"
	"github.com/ayusman/wavegest/internal/server"
	"github.com/ayusman/wavegest/internal/tray"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		addr       = flag.String("addr", "", "listen address (overrides config)")
		device     = flag.Int("device", -1, "camera device index (overrides config)")
		file       = flag.String("file", "", "read frames from a video file instead of the camera")
		debug      = flag.Bool("debug", false, "log notifications and serve the annotated stream")
		withTray   = flag.Bool("tray", false, "show a system tray menu")
		autoStart  = flag.Bool("start", true, "start detection immediately")
	)
	flag.Parse()

	fmt.Println("Wave - Hand Wave Gesture Detection")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *device >= 0 {
		cfg.Capture.Device = *device
	}
	if *file != "" {
		cfg.Capture.Source = config.SourceFile
		cfg.Capture.File = *file
	}
	if *debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Plugins
	pluginDir := cfg.PluginDir
	if pluginDir == "" {
		pluginDir = defaultDataDir("plugins")
	}
	plugins := plugin.NewManager(pluginDir)
	if err := plugins.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	dispatcher, err := plugin.NewDispatcher(plugins, plugin.NewExecutor(plugin.DefaultTimeout), cfg.Bindings)
	if err != nil {
		log.Fatalf("Invalid bindings: %v", err)
	}
	defer dispatcher.Close()

	// Sinks and app
	hub := server.NewHub()
	var t *tray.Tray
	sinks := gesture.MultiSink{hub, dispatcher}

	camera := capture.NewCamera(capture.OptionsFromConfig(cfg.Capture))
	a := app.New(*cfg, camera, nil)
	if *withTray {
		t = tray.New(a)
		sinks = append(sinks, t)
	}
	a.SetSink(sinks)
	defer a.Stop()

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		fmt.Printf("Serving static files from: %s\n", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		App:       a,
		Hub:       hub,
		Plugins:   plugins,
		Debug:     cfg.Debug,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		errCh <- srv.Serve(ctx, cfg.Server.Addr)
	}()

	// Start failures stay visible through /api/status for clients that
	// connect after the notification went out.
	if *autoStart {
		if err := a.Start(); err != nil {
			log.Printf("Detection not started: %v", err)
		}
	}

	if t != nil {
		t.OnQuit(stop)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
	}

	if err := <-errCh; err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		candidate := defaultDataDir("config.yaml")
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				cfg := config.DefaultConfig()
				return &cfg, nil
			}
			return nil, err
		}
		path = candidate
	}
	return config.Load(path)
}

// defaultDataDir returns ~/.wavegest/<name>, or <name> if the home directory
// cannot be determined.
func defaultDataDir(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, ".wavegest", name)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.wavegest/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := defaultDataDir("web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
