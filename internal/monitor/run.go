package monitor

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/smarttent/internal/dashboard"
)

// RunConfig wires the monitor to a renderer and its poller.
type RunConfig struct {
	Renderer     *dashboard.Renderer
	Poller       *dashboard.Poller
	DeviceID     string
	Interval     time.Duration
	StartupDelay time.Duration
}

// Run launches the live monitor TUI. Polling starts after the startup delay
// and stops when the UI exits or ctx is done.
func Run(ctx context.Context, cfg RunConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(Options{
		Tree:     cfg.Renderer.Tree(),
		DeviceID: cfg.DeviceID,
		Interval: cfg.Interval,
		Refresh:  func() { cfg.Poller.Refresh(ctx) },
		Dismiss:  cfg.Renderer.DismissAlert,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	cfg.Poller.OnRender = func() { p.Send(RenderedMsg(time.Now())) }

	started := make(chan func(), 1)
	go func() {
		defer close(started)
		timer := time.NewTimer(cfg.StartupDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			started <- cfg.Poller.StartPolling(ctx, cfg.Interval)
		}
	}()

	_, err := p.Run()

	cancel()
	if stop, ok := <-started; ok {
		stop()
	}
	// A manual refresh during the startup delay is not covered by stop.
	cfg.Poller.Wait()

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
