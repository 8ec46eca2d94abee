package platform

import (
	"errors"
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

var ErrClipboardUnavailable = errors.New("platform: no clipboard utility found")

type Clipboard interface {
	// Set copies text and clears it again after ttl unless something else
	// has been copied meanwhile. ttl <= 0 never clears.
	Set(text string, ttl time.Duration) error
}

type systemClipboard struct {
	read  func() (string, error)
	write func(string) error

	mu    sync.Mutex
	timer *time.Timer
}

// NewClipboard returns the OS clipboard, or a no-op one when the system
// has no clipboard utility (headless servers, CI).
func NewClipboard() Clipboard {
	if clipboard.Unsupported {
		return noopClipboard{}
	}
	return &systemClipboard{read: clipboard.ReadAll, write: clipboard.WriteAll}
}

func (c *systemClipboard) Set(text string, ttl time.Duration) error {
	if err := c.write(text); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	if ttl > 0 {
		c.timer = time.AfterFunc(ttl, func() { c.clear(text) })
	}
	return nil
}

func (c *systemClipboard) clear(text string) {
	if cur, err := c.read(); err == nil && cur == text {
		_ = c.write("")
	}
}

type noopClipboard struct{}

func (noopClipboard) Set(string, time.Duration) error { return ErrClipboardUnavailable }
