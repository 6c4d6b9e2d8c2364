package metrics

import "sync/atomic"

// MetricID identifies one counter.
type MetricID int

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshJoined
	MetricRequestRetried
	MetricUnauthorizedRedirect
	MetricLogout
	MetricSessionRestored
	MetricSessionCleared

	MetricIDCount
)

// Config controls metric collection. When Enabled is false every operation
// is a no-op.
type Config struct {
	Enabled bool
}

type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Metrics holds the counter slots. A nil *Metrics is valid and inert.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]paddedCounter
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id < 0 || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Snapshot() Snapshot {
	snapshot := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return snapshot
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := atomic.LoadUint64(&m.counters[id].value); v > 0 {
			snapshot.Counters[id] = v
		}
	}
	return snapshot
}
