/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Search metrics collection for Bletchley. MetricsCollector is an engine
reporter that tracks per-cipher throughput, acceptances and failed units, samples
runtime resource usage and raises alerts when a search loses too many units.
*/

package monitoring

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kleascm/bletchley/pkg/core"
	"github.com/sirupsen/logrus"
)

// maxAlerts bounds the retained alert history
const maxAlerts = 100

// ResourceMetrics is a runtime resource sample
type ResourceMetrics struct {
	Timestamp  time.Time `json:"timestamp"`
	Goroutines int       `json:"goroutines"`
	HeapAlloc  uint64    `json:"heap_alloc"`
	HeapSys    uint64    `json:"heap_sys"`
	NumGC      uint32    `json:"num_gc"`
}

// CipherMetrics aggregates the searches of one cipher kind
type CipherMetrics struct {
	Searches      int64         `json:"searches"`
	KeysTried     int64         `json:"keys_tried"`
	Accepted      int64         `json:"accepted"`
	Failed        int64         `json:"failed"`
	Found         int64         `json:"found"` // searches with at least one accepted key
	TotalDuration time.Duration `json:"total_duration"`
	LastSearch    time.Time     `json:"last_search"`
	KeysPerSecond float64       `json:"keys_per_second"`
}

// GlobalMetrics represents metrics across every search
type GlobalMetrics struct {
	StartTime           time.Time                    `json:"start_time"`
	Uptime              time.Duration                `json:"uptime"`
	CandidatesEvaluated int64                        `json:"candidates_evaluated"`
	ResultsAccepted     int64                        `json:"results_accepted"`
	Ciphers             map[core.Kind]*CipherMetrics `json:"ciphers"`
	Resources           ResourceMetrics              `json:"resources"`
	Alerts              []PerformanceAlert           `json:"alerts"`
}

// PerformanceAlert represents a search that lost too many units
type PerformanceAlert struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	SearchID  string    `json:"search_id"`
}

// AlertThresholds defines when alerts are raised
type AlertThresholds struct {
	FailureRate float64 `json:"failure_rate"` // failed units / keys tried
}

// MetricsCollector implements core.Reporter.
// Hooks are safe for concurrent use.
type MetricsCollector struct {
	startTime  time.Time
	candidates int64
	accepted   int64

	mu         sync.RWMutex
	ciphers    map[core.Kind]*CipherMetrics
	alerts     []PerformanceAlert
	thresholds AlertThresholds

	logger *logrus.Logger
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger *logrus.Logger) *MetricsCollector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MetricsCollector{
		startTime:  time.Now(),
		ciphers:    make(map[core.Kind]*CipherMetrics),
		thresholds: AlertThresholds{FailureRate: 0.01},
		logger:     logger,
	}
}

// OnCandidateEvaluated counts evaluated keys
func (mc *MetricsCollector) OnCandidateEvaluated(core.Kind, core.Candidate, bool) {
	atomic.AddInt64(&mc.candidates, 1)
}

// OnResultAccepted counts results handed to the sink
func (mc *MetricsCollector) OnResultAccepted(core.AcceptedResult) {
	atomic.AddInt64(&mc.accepted, 1)
}

// OnSearchFinished folds a search summary into the per-cipher metrics
func (mc *MetricsCollector) OnSearchFinished(s core.SearchSummary) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	m, ok := mc.ciphers[s.Cipher]
	if !ok {
		m = &CipherMetrics{}
		mc.ciphers[s.Cipher] = m
	}
	m.Searches++
	m.KeysTried += int64(s.KeysTried)
	m.Accepted += int64(s.Accepted)
	m.Failed += int64(s.Failed)
	if s.Found {
		m.Found++
	}
	m.TotalDuration += s.Duration
	m.LastSearch = time.Now()
	if secs := m.TotalDuration.Seconds(); secs > 0 {
		m.KeysPerSecond = float64(m.KeysTried) / secs
	}

	mc.checkFailureRate(s)
}

func (mc *MetricsCollector) checkFailureRate(s core.SearchSummary) {
	if s.KeysTried == 0 || s.Failed == 0 {
		return
	}
	rate := float64(s.Failed) / float64(s.KeysTried)
	if rate <= mc.thresholds.FailureRate {
		return
	}

	severity := "medium"
	if rate > 0.5 {
		severity = "high"
	}
	alert := PerformanceAlert{
		Timestamp: time.Now(),
		Type:      "failure_rate",
		Severity:  severity,
		Message:   fmt.Sprintf("%s search lost %d of %d units", s.Cipher, s.Failed, s.KeysTried),
		Value:     rate,
		Threshold: mc.thresholds.FailureRate,
		SearchID:  s.SearchID,
	}
	mc.alerts = append(mc.alerts, alert)
	if len(mc.alerts) > maxAlerts {
		mc.alerts = mc.alerts[1:]
	}
	mc.logger.Warnf("Performance alert: %s - %s", alert.Type, alert.Message)
}

// GetGlobalMetrics returns a copy of the current metrics
func (mc *MetricsCollector) GetGlobalMetrics() *GlobalMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	ciphers := make(map[core.Kind]*CipherMetrics, len(mc.ciphers))
	for k, v := range mc.ciphers {
		c := *v
		ciphers[k] = &c
	}
	return &GlobalMetrics{
		StartTime:           mc.startTime,
		Uptime:              time.Since(mc.startTime),
		CandidatesEvaluated: atomic.LoadInt64(&mc.candidates),
		ResultsAccepted:     atomic.LoadInt64(&mc.accepted),
		Ciphers:             ciphers,
		Resources:           CurrentResources(),
		Alerts:              append([]PerformanceAlert(nil), mc.alerts...),
	}
}

// GetCipherMetrics returns metrics for one cipher kind, or nil if it never ran
func (mc *MetricsCollector) GetCipherMetrics(kind core.Kind) *CipherMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if m, ok := mc.ciphers[kind]; ok {
		c := *m
		return &c
	}
	return nil
}

// SetAlertThresholds sets alert thresholds
func (mc *MetricsCollector) SetAlertThresholds(thresholds AlertThresholds) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.thresholds = thresholds
}

// CurrentResources samples the Go runtime
func CurrentResources() ResourceMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return ResourceMetrics{
		Timestamp:  time.Now(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		HeapSys:    mem.HeapSys,
		NumGC:      mem.NumGC,
	}
}
