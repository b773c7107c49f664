package cli

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/feet/internal/media"
	"github.com/sadopc/feet/internal/sensor"
	"github.com/sadopc/feet/internal/state"
	"github.com/sadopc/feet/internal/tui"
)

// runTracker starts the background loops and runs the full-screen app.
func runTracker(ctx context.Context, e *env) error {
	holder := state.New(e.repo, e.logger)
	if err := holder.Load(); err != nil {
		return fmt.Errorf("load today: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	spawn := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	spawn(func() { e.repo.Watch(ctx, e.cfg.PollInterval) })
	spawn(func() { holder.Run(ctx, e.bus) })

	if e.cfg.Media {
		l := media.NewListener(e.bus, e.logger, e.cfg.MusicApps)
		spawn(func() {
			if err := l.Run(ctx); err != nil {
				e.logger.Error("media listener stopped", "err", err)
			}
		})
	}

	if e.cfg.SensorPath != "" {
		collector := sensor.NewCollector(e.logger)
		spawn(func() { holder.BindSensor(ctx, collector) })
		// Opening a FIFO blocks until the writer shows up, so this is not
		// part of the WaitGroup.
		go func() {
			src, err := sensor.OpenPath(e.cfg.SensorPath)
			if err != nil {
				e.logger.Warn("step sensor unavailable", "path", e.cfg.SensorPath, "err", err)
				return
			}
			defer src.Close()
			if err := collector.Run(ctx, src); err != nil {
				e.logger.Error("step sensor stopped", "err", err)
			}
		}()
	} else {
		e.logger.Info("no step sensor configured, steps are simulated")
	}

	p := tea.NewProgram(tui.NewApp(holder, e.store), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
