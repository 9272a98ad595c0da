// Package latency probes round-trip times to a fixed set of targets so the
// daemon can show whether keeping the peer-to-peer interface down actually
// keeps the primary path flat.
package latency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Result holds the most recent probe outcome for one target.
type Result struct {
	Target    string        `json:"target"`
	RTT       time.Duration `json:"rtt"`
	Healthy   bool          `json:"healthy"`
	LastCheck time.Time     `json:"last_check"`
	Error     string        `json:"error,omitempty"`
}

// Prober measures the round-trip time to a target.
type Prober interface {
	Probe(ctx context.Context, target string) (time.Duration, error)
}

// Monitor runs periodic RTT probes and keeps the latest result per target.
type Monitor struct {
	cfg    Config
	prober Prober
	logger *slog.Logger

	// observe, when set, is called with every successful measurement.
	observe func(target string, rtt time.Duration)

	mu      sync.RWMutex
	results map[string]Result
}

// NewMonitor creates a Monitor probing with ICMP echo via pro-bing.
// Config defaults are applied automatically.
func NewMonitor(cfg Config, logger *slog.Logger) *Monitor {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		cfg:     cfg,
		prober:  &pingProber{timeout: cfg.ProbeTimeout, privileged: cfg.Privileged},
		logger:  logger.With("component", "latency"),
		results: make(map[string]Result),
	}
}

// SetObserver registers a callback invoked with each successful
// measurement. Must be called before Run.
func (m *Monitor) SetObserver(fn func(target string, rtt time.Duration)) {
	m.observe = fn
}

// Run probes all targets immediately and then on every interval tick.
// It blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.cfg.Validate(); err != nil {
		return err
	}
	if len(m.cfg.Targets) == 0 {
		m.logger.Info("no targets configured, latency monitor idle")
		<-ctx.Done()
		return ctx.Err()
	}

	m.logger.Info("latency monitor started",
		"targets", len(m.cfg.Targets),
		"interval", m.cfg.Interval,
	)

	m.probeAll(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("latency monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.probeAll(ctx)
		}
	}
}

// Results returns the latest result per target, ordered by target name.
func (m *Monitor) Results() []Result {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Result, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

func (m *Monitor) probeAll(ctx context.Context) {
	for _, target := range m.cfg.Targets {
		if ctx.Err() != nil {
			return
		}
		m.probe(ctx, target)
	}
}

func (m *Monitor) probe(ctx context.Context, target string) {
	rtt, err := m.prober.Probe(ctx, target)

	res := Result{
		Target:    target,
		RTT:       rtt,
		Healthy:   err == nil,
		LastCheck: time.Now(),
	}
	if err != nil {
		res.Error = err.Error()
		if ctx.Err() == nil {
			m.logger.Warn("probe failed", "target", target, "error", err)
		}
	} else if m.observe != nil {
		m.observe(target, rtt)
	}

	m.mu.Lock()
	m.results[target] = res
	m.mu.Unlock()
}

// pingProber implements Prober with a single ICMP echo per probe.
type pingProber struct {
	timeout    time.Duration
	privileged bool
}

func (p *pingProber) Probe(ctx context.Context, target string) (time.Duration, error) {
	pinger, err := probing.NewPinger(target)
	if err != nil {
		return 0, fmt.Errorf("latency: create pinger for %s: %w", target, err)
	}
	pinger.Count = 1
	pinger.Timeout = p.timeout
	pinger.SetPrivileged(p.privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		return 0, fmt.Errorf("latency: probe %s: %w", target, err)
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, errors.New("latency: no reply")
	}
	return stats.AvgRtt, nil
}
