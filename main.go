// ABOUTME: Entry point for scrollspy
// ABOUTME: Handles command-line parsing, profiling, and routing to reader, sweep or serve modes

// Package main provides the entry point for scrollspy, a terminal reader whose section tabs follow the scroll position.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"scrollspy/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	debug := flag.Bool("debug", false, "enable debug logging to "+debugLogFile)
	configPath := flag.String("config", "", "config file (default ./scrollspy.toml or ~/.config/scrollspy/config.toml)")
	mode := flag.String("mode", "", "override the resolver mode: container or page")
	url := flag.String("url", "", "read the page from a content endpoint at this base URL")
	sweep := flag.Bool("sweep", false, "print the active section for every scroll offset and exit")
	width := flag.Int("width", 80, "sweep: document width in cells")
	height := flag.Int("height", 24, "sweep: visible document rows")
	serve := flag.String("serve", "", "serve a directory of markdown pages on this address (e.g. :8080)")
	dir := flag.String("dir", ".", "serve: directory of markdown pages")
	workers := flag.Int("workers", 0, "serve: parser workers (default NumCPU)")
	allowAll := flag.Bool("cors-all", false, "serve: allow all CORS origins")
	flag.Parse()

	if *cpuprofile != "" {
		stopCPUProfile := setupCPUProfile(*cpuprofile)
		defer stopCPUProfile()
	}

	if *memprofile != "" {
		defer writeMemoryProfile(*memprofile)
	}

	if *serve != "" {
		if err := RunServe(ServeOptions{
			Addr:     *serve,
			Dir:      *dir,
			Workers:  *workers,
			AllowAll: *allowAll,
			DebugLog: *debug,
		}); err != nil {
			log.Printf("Serve error: %v", err)

			return 1
		}

		return 0
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: scrollspy [flags] <file.md | page-slug>")
		fmt.Println("Example: scrollspy README.md")
		fmt.Println("         scrollspy -url http://localhost:8080 guide")
		fmt.Println("         scrollspy -serve :8080 -dir docs")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()

		return 1
	}

	opts := RunOptions{
		Target:     args[0],
		URL:        *url,
		ConfigPath: *configPath,
		Mode:       *mode,
		DebugLog:   *debug,
	}

	if *sweep {
		if err := RunSweep(opts, SweepOptions{Width: *width, Height: *height}); err != nil {
			log.Printf("Sweep error: %v", err)

			return 1
		}

		return 0
	}

	if err := runReader(opts); err != nil {
		log.Printf("TUI error: %v", err)

		return 1
	}

	return 0
}

// runReader starts the interactive reader
func runReader(opts RunOptions) error {
	if opts.DebugLog {
		if err := SetupDebugLog(debugLogFile); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	engOpts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	watchPath := ""
	if opts.URL == "" {
		watchPath = opts.Target
	}

	return tui.Run(tui.Options{
		Title:         sourceTitle(opts),
		Source:        newSource(opts),
		WatchPath:     watchPath,
		Engine:        engOpts,
		FrameInterval: cfg.FrameInterval(),
		ScrollStep:    cfg.ScrollStep,
	}, debugf)
}

// setupCPUProfile starts CPU profiling, returns cleanup function
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes memory profile to file
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
