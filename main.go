// Package main provides the entry point for the cv-npr desktop application.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cv-npr/internal/app"
	"cv-npr/internal/capability"
	"cv-npr/internal/clipboard"
	"cv-npr/internal/examples"
	"cv-npr/internal/filter"
	"cv-npr/internal/offline"
	"cv-npr/internal/stage"
	"cv-npr/internal/version"
	"cv-npr/internal/vision"
	"cv-npr/ui/mainwindow"
	"cv-npr/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
)

const appID = "io.github.cv-npr"

func main() {
	appPrefs := prefs.Load()
	logger := app.NewLogger(os.Stderr, appPrefs.StringWithFallback(prefs.KeyLogLevel, "info"))
	logger.Info("starting", "version", version.String())

	ctx := context.Background()

	variant := capability.Resolve(capability.HostProber{})
	if name := appPrefs.String(prefs.KeyVariant); name != "" {
		if v, ok := capability.Parse(name); ok {
			variant = v
		} else {
			logger.Warn("unknown engine variant in preferences", "variant", name)
		}
	}

	engine, err := vision.Load(ctx, variant, logger)
	if err != nil {
		logger.Error("failed to load vision engine", "err", err)
		os.Exit(1)
	}

	client := setupOffline(ctx, appPrefs, variant, logger)

	state := app.NewState(logger, app.NewQueueScheduler())
	defer state.Close()

	catalog := examples.NewCatalog()
	filters := stage.NewFilterStage(state, engine, filter.Builtin(), nil)
	if id := appPrefs.String(prefs.KeyLastFilter); id != "" {
		if err := filters.SelectFilter(id); err != nil {
			logger.Warn("ignoring saved filter", "id", id, "err", err)
		}
	}
	resolver := &stage.Resolver{URLs: state.URLs, Examples: catalog, Client: client}
	load := stage.NewLoadStage(state, filters, resolver, clipboard.System{Client: client})

	fyneApp := fyneapp.NewWithID(appID)
	win := mainwindow.New(fyneApp, state, mainwindow.Components{
		Load:     load,
		Filters:  filters,
		Examples: catalog,
		Prefs:    appPrefs,
		Variant:  variant,
	})

	// Handle command line arguments
	if len(os.Args) > 1 {
		url := os.Args[1]
		go func() {
			if err := load.LoadImage(ctx, url); err != nil {
				logger.Error("failed to load image from command line", "url", url, "err", err)
			}
		}()
	}

	setupHotReload(win, logger)

	win.ShowAndRun()
	win.SavePreferences()
}

// setupOffline opens the asset cache, returns a client that reads through it and
// refreshes the cache in the background.
func setupOffline(ctx context.Context, p *prefs.Prefs, variant capability.Variant, logger *slog.Logger) *http.Client {
	cache, err := offline.Open(filepath.Join(prefs.Dir(), "cache"), offline.Version, logger)
	if err != nil {
		logger.Warn("offline cache unavailable", "err", err)
		return http.DefaultClient
	}
	client := &http.Client{
		Transport: &offline.Transport{Cache: cache, Next: http.DefaultTransport},
		Timeout:   30 * time.Second,
	}

	manifest := offline.Manifest(p.String(prefs.KeyAssetBaseURL), variant.AssetPath(), p.Strings(prefs.KeyOfflineAssets))
	if len(manifest) == 0 {
		return client
	}
	go func() {
		fetcher := &http.Client{Timeout: 2 * time.Minute}
		if err := cache.Install(ctx, fetcher, manifest); err != nil {
			logger.Warn("offline install failed", "err", err)
			return
		}
		if err := cache.Activate(); err != nil {
			logger.Warn("failed to remove stale caches", "err", err)
		}
	}()
	return client
}

// setupHotReload offers a restart when the binary is recompiled.
func setupHotReload(win *mainwindow.MainWindow, logger *slog.Logger) {
	reloader, err := app.NewExecutableReloader(2*time.Second, logger)
	if err != nil {
		logger.Debug("hot reload unavailable", "err", err)
		return
	}
	logger.Debug("hot reload: watching", "path", reloader.Path())

	reloader.OnNewBinary(func() {
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				win.SavePreferences()
				if err := reloader.Restart(); err != nil {
					logger.Error("hot reload: restart failed", "err", err)
				}
			}, win)
	})
	reloader.Start()
}
