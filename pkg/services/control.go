package services

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultWorkerCount = 3
	DefaultPausePoll   = 3 * time.Second
)

// Control is the state shared between the host and a running Downloader.
// Each flag has its own lock; no atomicity across flags is provided.
type Control struct {
	restartMu sync.Mutex
	restart   bool

	pausedMu sync.Mutex
	paused   bool

	workersMu sync.Mutex
	workers   int

	poll time.Duration
}

// NewControl returns a Control with restart and pause cleared and the default
// worker count. poll is the pause re-check interval.
func NewControl(poll time.Duration) *Control {
	if poll <= 0 {
		poll = DefaultPausePoll
	}
	return &Control{workers: DefaultWorkerCount, poll: poll}
}

func (c *Control) RequestRestart() {
	c.restartMu.Lock()
	defer c.restartMu.Unlock()
	c.restart = true
}

// ConsumeRestart reports whether a restart was requested and clears it.
func (c *Control) ConsumeRestart() bool {
	c.restartMu.Lock()
	defer c.restartMu.Unlock()
	if !c.restart {
		return false
	}
	c.restart = false
	return true
}

// RestartPending reports a requested restart without clearing it.
func (c *Control) RestartPending() bool {
	c.restartMu.Lock()
	defer c.restartMu.Unlock()
	return c.restart
}

func (c *Control) SetPaused(paused bool) {
	c.pausedMu.Lock()
	defer c.pausedMu.Unlock()
	c.paused = paused
}

func (c *Control) Paused() bool {
	c.pausedMu.Lock()
	defer c.pausedMu.Unlock()
	return c.paused
}

// WaitIfPaused blocks while paused, re-checking once per poll interval.
// It returns early with the context error if ctx is done.
func (c *Control) WaitIfPaused(ctx context.Context) error {
	for c.Paused() {
		timer := time.NewTimer(c.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

func (c *Control) WorkerCount() int {
	c.workersMu.Lock()
	defer c.workersMu.Unlock()
	return c.workers
}

// SetWorkerCount changes the pool size used from the next batch on.
// Values below one are clamped to one.
func (c *Control) SetWorkerCount(n int) {
	if n < 1 {
		n = 1
	}
	c.workersMu.Lock()
	defer c.workersMu.Unlock()
	c.workers = n
}
