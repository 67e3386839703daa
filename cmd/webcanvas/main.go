// Package main runs the webcanvas daemon: it hosts a browser rendering a
// node-based canvas application, keeps the backing canvas JSON document
// synchronized with the live embedded views, and exposes the daemon's
// commands over a local HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/webcanvas/pkg/api"
	"github.com/entrhq/webcanvas/pkg/automation"
	"github.com/entrhq/webcanvas/pkg/canvas"
	appconfig "github.com/entrhq/webcanvas/pkg/config"
	"github.com/entrhq/webcanvas/pkg/host"
	"github.com/entrhq/webcanvas/pkg/intercept"
	"github.com/entrhq/webcanvas/pkg/logging"
	canvassync "github.com/entrhq/webcanvas/pkg/sync"
)

const version = "0.1.0"

// Flags holds the command line configuration. Everything else lives in the
// config file.
type Flags struct {
	ConfigPath   string
	DocumentPath string
	CanvasURL    string
	ListenAddr   string
	ShowVersion  bool
}

func parseFlags() Flags {
	var f Flags
	flag.StringVar(&f.ConfigPath, "config", "", "Config file path (default ~/.webcanvas/config.json)")
	flag.StringVar(&f.DocumentPath, "doc", "", "Canvas document path (overrides config)")
	flag.StringVar(&f.CanvasURL, "canvas-url", "", "Canvas application URL (overrides config)")
	flag.StringVar(&f.ListenAddr, "listen", "127.0.0.1:7474", "Control API listen address")
	flag.BoolVar(&f.ShowVersion, "version", false, "Show version and exit")
	flag.Parse()
	return f
}

func main() {
	flags := parseFlags()
	if flags.ShowVersion {
		fmt.Printf("webcanvas v%s\n", version)
		return
	}

	if err := run(flags); err != nil {
		log.Fatalf("webcanvas: %v", err)
	}
}

func run(flags Flags) error {
	if err := appconfig.Initialize(flags.ConfigPath); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Materialize the config file with defaults on first run.
	if err := appconfig.Global().SaveAll(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, logErr := logging.NewLogger("main")
	if logErr != nil {
		log.Printf("file logging unavailable: %v", logErr)
	}
	defer logger.Close()
	logger.Infof("webcanvas v%s starting (session %s)", version, logger.SessionID())

	browserCfg := appconfig.GetBrowser()
	syncCfg := appconfig.GetSync()
	autoCfg := appconfig.GetAutomation()
	interceptCfg := appconfig.GetIntercept()

	documentPath := flags.DocumentPath
	if documentPath == "" {
		documentPath = browserCfg.DocumentPath()
	}
	if documentPath == "" {
		return errors.New("no canvas document configured (set -doc or browser.document_path)")
	}
	canvasURL := flags.CanvasURL
	if canvasURL == "" {
		canvasURL = browserCfg.CanvasURL()
	}
	if canvasURL == "" {
		return errors.New("no canvas URL configured (set -canvas-url or browser.canvas_url)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Infof("shutdown signal received")
		cancel()
	}()

	// Browser and canvas surface.
	browser, err := host.LaunchBrowser(browserCfg.BrowserOptions())
	if err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	defer func() {
		if err := browser.Shutdown(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	}()

	if err := browser.Open(canvasURL); err != nil {
		return fmt.Errorf("canvas page: %w", err)
	}

	surface, err := host.NewPageSurface(browser.Page(), host.SurfaceOptions{
		NodeSelector:  syncCfg.NodeSelector(),
		SelectedClass: syncCfg.SelectedClass(),
	})
	if err != nil {
		return fmt.Errorf("surface: %w", err)
	}

	// Automation scripts.
	manifest := automation.DefaultManifest()
	if path := autoCfg.ManifestPath(); path != "" {
		manifest, err = automation.LoadManifest(path)
		if err != nil {
			return fmt.Errorf("script manifest: %w", err)
		}
	}

	store := canvas.NewFileStore(documentPath)
	dispatcher := automation.NewDispatcher(surface, automation.DispatcherOptions{
		Tolerance: syncCfg.Tolerance(),
		Manifest:  manifest,
	})

	// Deletion interceptor; its predicate also drives the engine's
	// intercept marking.
	var interceptor *intercept.Interceptor
	var predicate func(string) bool
	if interceptCfg.Enabled() {
		interceptor, err = intercept.New(surface, store, dispatcher, interceptCfg.Options())
		if err != nil {
			return fmt.Errorf("interceptor: %w", err)
		}
		predicate = interceptor.MatchesAddress
	}

	engine := canvassync.New(store, surface, canvassync.Options{
		Tolerance:          syncCfg.Tolerance(),
		InterceptPredicate: predicate,
	})

	var trigger canvassync.Trigger
	switch syncCfg.Trigger() {
	case appconfig.TriggerWatch:
		trigger = &canvassync.WatchTrigger{Path: documentPath}
	default:
		trigger = &canvassync.TickerTrigger{Interval: syncCfg.Interval()}
	}

	go func() {
		err := trigger.Run(ctx, func(passCtx context.Context) {
			if err := engine.RunPass(passCtx); err != nil {
				logger.Errorf("reconciliation: %v", err)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("trigger stopped: %v", err)
			cancel()
		}
	}()

	if interceptor != nil {
		go func() {
			if err := interceptor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("interceptor stopped: %v", err)
			}
		}()
	}

	// Control API.
	handler := api.NewHandler(store, engine, dispatcher, api.HandlerOptions{
		RenderDelay:   autoCfg.RenderDelay(),
		Params:        autoCfg.Params,
		Snapshot:      surface,
		NodeClass:     trimLeadingDot(syncCfg.NodeSelector()),
		SelectedClass: syncCfg.SelectedClass(),
	})
	server := &http.Server{
		Addr:              flags.ListenAddr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("control API listening on %s", flags.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("control API: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("control API shutdown: %v", err)
	}
	logger.Infof("webcanvas stopped")
	return nil
}

// trimLeadingDot converts a class selector like ".canvas-node" into the
// bare class name snapshot parsing expects.
func trimLeadingDot(selector string) string {
	if len(selector) > 0 && selector[0] == '.' {
		return selector[1:]
	}
	return selector
}
