// Package systemd reports service readiness and liveness to systemd
// through the sd_notify protocol. Every call is a no-op when the process
// is not running under a unit with NOTIFY_SOCKET set.
package systemd

import (
	"log/slog"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends state updates to the service manager.
type Notifier struct {
	logger *slog.Logger

	mu       sync.Mutex
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewNotifier creates a notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

func (n *Notifier) notify(state string) bool {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		n.logger.Warn("sd_notify failed", "state", state, "error", err)
		return false
	}
	return sent
}

// Ready reports that the service finished starting and starts the
// watchdog keepalive when the unit configures WatchdogSec.
func (n *Notifier) Ready() {
	if n.notify(daemon.SdNotifyReady) {
		n.logger.Debug("Notified systemd: ready")
	}

	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.doneCh != nil {
		return
	}
	n.doneCh = make(chan struct{})
	go n.watchdog(interval / 2)
	n.logger.Info("systemd watchdog enabled", "interval", interval)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(status string) {
	n.notify("STATUS=" + status)
}

// Stopping reports that shutdown has begun and stops the watchdog.
func (n *Notifier) Stopping() {
	n.notify(daemon.SdNotifyStopping)
	n.stopOnce.Do(func() {
		close(n.stopCh)
	})

	n.mu.Lock()
	done := n.doneCh
	n.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (n *Notifier) watchdog(every time.Duration) {
	defer close(n.doneCh)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-n.stopCh:
			return
		case <-ticker.C:
			n.notify(daemon.SdNotifyWatchdog)
		}
	}
}
