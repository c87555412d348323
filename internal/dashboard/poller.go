package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Poller drives RenderUpdate on a fixed period.
type Poller struct {
	renderer *Renderer
	logger   *slog.Logger

	// OnRender, if set, is called after every completed render pass.
	OnRender func()

	busy atomic.Bool
	wg   sync.WaitGroup
}

func NewPoller(r *Renderer, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{renderer: r, logger: logger}
}

// StartPolling renders once immediately and then every interval until ctx is
// done or stop is called. stop waits for the in-flight pass to return.
//
// A tick that fires while the previous pass is still running is skipped, so
// passes never overlap and responses cannot land out of order.
func (p *Poller) StartPolling(ctx context.Context, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		p.Refresh(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Refresh(ctx)
			}
		}
	}()

	p.logger.Info("auto update started", "interval", interval)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
			p.Wait()
		})
	}
}

// Wait blocks until every pass started by Refresh has returned, whether or
// not StartPolling was ever called.
func (p *Poller) Wait() {
	p.wg.Wait()
}

// Refresh starts a render pass in the background unless one is running.
// It reports whether a pass was started.
func (p *Poller) Refresh(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if !p.busy.CompareAndSwap(false, true) {
		p.logger.Debug("render pass still running, skipping tick")
		return false
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.busy.Store(false)

		p.renderer.RenderUpdate(ctx)
		if ctx.Err() == nil && p.OnRender != nil {
			p.OnRender()
		}
	}()
	return true
}
