package build

import (
	"sync"
	"time"

	"github.com/conneroisu/targetforge/internal/errors"
)

// Metrics tracks repeated builds, as in watch mode.
type Metrics struct {
	TotalBuilds      int64
	SuccessfulBuilds int64
	FailedBuilds     int64
	UnresolvedBuilds int64
	NativeArtifacts  int64
	AverageDuration  time.Duration
	TotalDuration    time.Duration
	LastError        string
	mutex            sync.RWMutex
}

// NewMetrics creates a new build metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record adds the outcome of one build.
func (m *Metrics) Record(report *Report, err error, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalBuilds++
	m.TotalDuration += duration

	if err != nil {
		m.FailedBuilds++
		m.LastError = err.Error()
		if errors.IsModuleNotFound(err) {
			m.UnresolvedBuilds++
		}
	} else {
		m.SuccessfulBuilds++
		m.LastError = ""
		if report != nil {
			m.NativeArtifacts += int64(len(report.NativeArtifacts))
		}
	}

	m.AverageDuration = m.TotalDuration / time.Duration(m.TotalBuilds)
}

// Snapshot returns a copy of the current metrics
func (m *Metrics) Snapshot() Metrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return Metrics{
		TotalBuilds:      m.TotalBuilds,
		SuccessfulBuilds: m.SuccessfulBuilds,
		FailedBuilds:     m.FailedBuilds,
		UnresolvedBuilds: m.UnresolvedBuilds,
		NativeArtifacts:  m.NativeArtifacts,
		AverageDuration:  m.AverageDuration,
		TotalDuration:    m.TotalDuration,
		LastError:        m.LastError,
	}
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalBuilds = 0
	m.SuccessfulBuilds = 0
	m.FailedBuilds = 0
	m.UnresolvedBuilds = 0
	m.NativeArtifacts = 0
	m.AverageDuration = 0
	m.TotalDuration = 0
	m.LastError = ""
}

// SuccessRate returns the success rate as a percentage
func (m *Metrics) SuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalBuilds == 0 {
		return 0.0
	}

	return float64(m.SuccessfulBuilds) / float64(m.TotalBuilds) * 100.0
}
