// ABOUTME: Sweep mode: non-interactive scroll sweep over a laid-out document
// ABOUTME: Prints which section the engine activates at each scroll offset

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"scrollspy/content"
	"scrollspy/engine"
	"scrollspy/tui"
)

// SweepOptions sizes the simulated terminal
type SweepOptions struct {
	Width  int
	Height int // Visible document rows
	Engine engine.Options
}

// SweepRow is a run of scroll offsets that share an active section
type SweepRow struct {
	From, To int
	Active   int
	ID       string
	Title    string
}

// syncFrames runs every frame immediately
var syncFrames = engine.FrameSourceFunc(func(fire func()) func() {
	fire()
	return func() {}
})

// Sweep scrolls a laid-out document from top to bottom, one line at a time
func Sweep(sections []content.Section, opts SweepOptions) ([]SweepRow, error) {
	pane := &tui.Pane{
		Doc:    tui.LayoutDocument(sections, opts.Width),
		Height: opts.Height,
		Screen: opts.Height,
	}

	eng, err := engine.New(content.Keys(sections), opts.Engine, engine.Dependencies{
		Probe:  tui.DocumentProbe{Pane: pane, Mode: opts.Engine.Mode},
		Frames: syncFrames,
		Debugf: debugf,
	})
	if err != nil {
		return nil, err
	}
	defer eng.Close()

	var rows []SweepRow

	for offset := 0; offset <= pane.MaxOffset(); offset++ {
		pane.YOffset = offset
		eng.NotifyScroll()

		active := eng.ActiveIndex()
		if n := len(rows); n > 0 && rows[n-1].Active == active {
			rows[n-1].To = offset
			continue
		}

		rows = append(rows, SweepRow{
			From:   offset,
			To:     offset,
			Active: active,
			ID:     sections[active].ID,
			Title:  sections[active].Title,
		})
	}

	return rows, nil
}

// RunSweep loads the target and prints the sweep table
func RunSweep(opts RunOptions, sweep SweepOptions) error {
	if opts.DebugLog {
		if err := SetupDebugLog(debugLogFile); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	sweep.Engine, err = cfg.EngineOptions()
	if err != nil {
		return err
	}

	sections, err := newSource(opts).Sections(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load sections: %w", err)
	}

	rows, err := Sweep(sections, sweep)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d sections, %s mode, %dx%d\n\n",
		sourceTitle(opts), len(sections), sweep.Engine.Mode, sweep.Width, sweep.Height)

	return writeSweep(os.Stdout, rows)
}

// writeSweep prints rows as an aligned table
func writeSweep(out io.Writer, rows []SweepRow) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "Offsets\t#\tID\tTitle"); err != nil {
		log.Printf("Warning: failed to write header: %v", err)
	}

	if _, err := fmt.Fprintln(w, "-------\t-\t--\t-----"); err != nil {
		log.Printf("Warning: failed to write separator: %v", err)
	}

	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%d-%d\t%d\t%s\t%s\n", r.From, r.To, r.Active+1, r.ID, truncate(r.Title, 40)); err != nil {
			log.Printf("Warning: failed to write row %d: %v", r.Active+1, err)
		}
	}

	return w.Flush()
}

// truncate shortens string to maxLen runes, adding "..." if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(r[:maxLen])
	}

	return string(r[:maxLen-3]) + "..."
}
