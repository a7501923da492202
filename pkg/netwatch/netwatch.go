// Package netwatch tracks network reachability and notifies subscribers on
// transitions.
package netwatch

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Monitor holds a process-wide reachability flag. It is constructed
// explicitly and injected wherever the flag is consumed, rather than hiding
// behind a global accessor. Transition notifications run synchronously in
// registration order, so a slow subscriber delays the ones after it;
// subscriber counts are expected to stay in the low single digits.
type Monitor struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   []subscriber

	probeURL string
	httpc    *http.Client
}

type subscriber struct {
	id int
	fn func(online bool)
}

// New creates a monitor seeded with the given reachability state. probeURL
// is the target for best-effort probes in environments without a native
// connectivity signal; empty disables probing.
func New(probeURL string, online bool) *Monitor {
	return &Monitor{
		online:   online,
		probeURL: probeURL,
		httpc:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Online reports the current reachability flag.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records an environment-driven transition. Subscribers are only
// notified when the value actually changes.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may read Online or
	// adjust its own subscription without deadlocking.
	for _, s := range subs {
		s.fn(online)
	}
}

// Subscribe registers fn for transition notifications and returns a cancel
// function that removes exactly this registration. Cancel is idempotent.
func (m *Monitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// Probe infers reachability from one best-effort request against the probe
// URL and feeds the outcome into the flag. Any response, regardless of
// status, counts as reachable; only transport failure counts as offline.
// The new state is returned.
func (m *Monitor) Probe(ctx context.Context) bool {
	if m.probeURL == "" {
		return m.Online()
	}

	online := false
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err == nil {
		resp, err := m.httpc.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			online = true
		}
	}
	m.SetOnline(online)
	return online
}

// Run probes at the given interval until ctx is canceled. It backs the
// monitor in contexts with no native connectivity events.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}
