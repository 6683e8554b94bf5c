// ABOUTME: Shared initialization code for all modes (reader, sweep, serve)
// ABOUTME: Provides debug logging, config loading and content source selection

package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"scrollspy/config"
	"scrollspy/content"
)

const debugLogFile = "scrollspy-debug.log"

var debugLog *log.Logger

// RunOptions contains command-line options for all modes
type RunOptions struct {
	Target     string // Markdown file, or page slug with URL
	URL        string // Content endpoint base URL
	ConfigPath string
	Mode       string // Overrides the configured mode when set
	DebugLog   bool
}

// SetupDebugLog initializes debug logging
func SetupDebugLog(filename string) error {
	if err := InitDebugLog(filename); err != nil {
		return fmt.Errorf("failed to initialize debug log: %w", err)
	}

	if isTTY(os.Stdout) {
		fmt.Printf("Debug logging enabled: %s\n", filename)
	}

	return nil
}

// InitDebugLog initializes debug logging
func InitDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// debugf logs debug messages if enabled
func debugf(format string, args ...interface{}) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}

// isTTY checks if the given file is a terminal
func isTTY(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}

	return (stat.Mode() & os.ModeCharDevice) != 0
}

// loadConfig reads the config file, applying a mode override from the command line
func loadConfig(opts RunOptions) (config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		// Defaults are usable; a broken file should not block reading
		debugf("[CONFIG] %v, using defaults", err)
	}

	if opts.Mode != "" {
		cfg.Mode = opts.Mode
	}

	if _, err := cfg.EngineOptions(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// newSource picks the content source for the target
func newSource(opts RunOptions) content.Source {
	if opts.URL != "" {
		return content.HTTPSource{BaseURL: opts.URL, Page: opts.Target}
	}

	return content.FileSource{Path: opts.Target}
}

// sourceTitle is the title shown for the target
func sourceTitle(opts RunOptions) string {
	if opts.URL != "" {
		return strings.TrimRight(opts.URL, "/") + "/" + opts.Target
	}

	return opts.Target
}
