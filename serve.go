// ABOUTME: Serve mode: content endpoint over a directory of markdown pages
// ABOUTME: Runs the HTTP server and a directory watcher until interrupted

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"scrollspy/content"
	"scrollspy/contentsrv"
)

// ServeOptions configures serve mode
type ServeOptions struct {
	Addr     string
	Dir      string
	Workers  int
	AllowAll bool
	DebugLog bool
}

// RunServe loads the directory and serves it until SIGINT/SIGTERM
func RunServe(opts ServeOptions) error {
	if opts.DebugLog {
		if err := SetupDebugLog(debugLogFile); err != nil {
			return err
		}
	}

	pages, err := content.LoadDir(opts.Dir, opts.Workers)
	if err != nil {
		// Pages that parsed are still served
		log.Printf("Warning: %v", err)
	}

	fmt.Printf("Serving %d pages from %s on %s\n", len(pages), opts.Dir, opts.Addr)

	lib := contentsrv.NewLibrary(pages)

	cfg := contentsrv.Config{Addr: opts.Addr, AllowAll: opts.AllowAll}
	if debugLog != nil {
		cfg.Logger = debugLog
	}

	srv := contentsrv.New(cfg, lib, debugf)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, opts.Dir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(ctx)
	})

	g.Go(func() error {
		return watchDir(ctx, watcher, func() {
			pages, err := content.LoadDir(opts.Dir, opts.Workers)
			if err != nil {
				debugf("[WATCHER] Reload: %v", err)
			}
			lib.Replace(pages)
			debugf("[WATCHER] Reloaded %d pages", len(pages))
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// watchTree adds dir and every directory below it to the watcher
func watchTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}

		return nil
	})
}

// watchDir calls reload after markdown changes settle, until ctx is done
func watchDir(ctx context.Context, watcher *fsnotify.Watcher, reload func()) error {
	const settle = 200 * time.Millisecond

	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}

			// New directories need their own watch for pages created inside them
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := watchTree(watcher, event.Name); err != nil {
						debugf("[WATCHER] %v", err)
					}
				}
			}

			// Debounce bursts from editors writing via temp files
			timer.Reset(settle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Log error but continue watching
			debugf("[WATCHER] Error: %v", err)

		case <-timer.C:
			reload()
		}
	}
}
