package tracker

import (
	"sync"
	"time"

	"faction-oc-bot/clock"
)

// Verdict is how a reaction window closed.
type Verdict int

const (
	VerdictTimeout Verdict = iota
	VerdictApprove
	VerdictDismiss
)

func (v Verdict) String() string {
	switch v {
	case VerdictApprove:
		return "approve"
	case VerdictDismiss:
		return "dismiss"
	default:
		return "timeout"
	}
}

// Collectors tracks open reaction windows keyed by message id. Each window accepts
// a single qualifying reaction and closes on it or on timeout, whichever is first.
type Collectors struct {
	clock clock.Clock

	mu   sync.Mutex
	open map[string]*collector
}

type collector struct {
	timer clock.Timer
	onEnd func(Verdict)
}

// NewCollectors creates an empty registry.
func NewCollectors(c clock.Clock) *Collectors {
	return &Collectors{clock: c, open: make(map[string]*collector)}
}

// Open starts a window on messageID. onEnd runs exactly once.
func (c *Collectors) Open(messageID string, window time.Duration, onEnd func(Verdict)) {
	col := &collector{onEnd: onEnd}
	c.mu.Lock()
	c.open[messageID] = col
	c.mu.Unlock()

	timer := c.clock.AfterFunc(window, func() { c.finish(messageID, col, VerdictTimeout) })

	c.mu.Lock()
	col.timer = timer
	c.mu.Unlock()
}

// Collect feeds a reaction to the window on messageID. It reports whether the
// reaction closed a window; unrelated emoji and unknown messages are ignored.
func (c *Collectors) Collect(messageID, emoji string) bool {
	var verdict Verdict
	switch emoji {
	case EmojiApprove:
		verdict = VerdictApprove
	case EmojiDismiss:
		verdict = VerdictDismiss
	default:
		return false
	}

	c.mu.Lock()
	col, ok := c.open[messageID]
	c.mu.Unlock()
	if !ok {
		return false
	}
	return c.finish(messageID, col, verdict)
}

// Len returns the number of open windows.
func (c *Collectors) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.open)
}

func (c *Collectors) finish(messageID string, col *collector, verdict Verdict) bool {
	c.mu.Lock()
	if c.open[messageID] != col {
		c.mu.Unlock()
		return false
	}
	delete(c.open, messageID)
	timer := col.timer
	c.mu.Unlock()

	if timer != nil && verdict != VerdictTimeout {
		timer.Stop()
	}
	col.onEnd(verdict)
	return true
}
