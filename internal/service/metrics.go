package service

import (
	"sort"
	"sync"
	"time"
)

// MetricsCollector collects per-function invocation metrics.
type MetricsCollector struct {
	started   time.Time
	functions map[string]*FunctionMetrics
	mu        sync.RWMutex
}

// FunctionMetrics holds invocation metrics for one entity function.
type FunctionMetrics struct {
	Name          string         `json:"name"`
	Invocations   int            `json:"invocations"`
	Errors        int            `json:"errors"`
	ByStatus      map[int]int    `json:"by_status"`
	ByMethod      map[string]int `json:"by_method"`
	TotalDuration time.Duration  `json:"total_duration"`
	AvgDuration   time.Duration  `json:"avg_duration"`
	MaxDuration   time.Duration  `json:"max_duration"`
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	Since     time.Time         `json:"since"`
	Uptime    time.Duration     `json:"uptime"`
	Functions []FunctionMetrics `json:"functions"`
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		started:   time.Now(),
		functions: make(map[string]*FunctionMetrics),
	}
}

// RecordInvocation records one handled request. Status codes of 500 and
// above count as errors.
func (m *MetricsCollector) RecordInvocation(function, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fm, ok := m.functions[function]
	if !ok {
		fm = &FunctionMetrics{
			Name:     function,
			ByStatus: make(map[int]int),
			ByMethod: make(map[string]int),
		}
		m.functions[function] = fm
	}

	fm.Invocations++
	fm.ByStatus[status]++
	fm.ByMethod[method]++
	if status >= 500 {
		fm.Errors++
	}
	fm.TotalDuration += duration
	fm.AvgDuration = fm.TotalDuration / time.Duration(fm.Invocations)
	if duration > fm.MaxDuration {
		fm.MaxDuration = duration
	}
}

// GetFunctionMetrics returns a copy of the metrics for one function.
func (m *MetricsCollector) GetFunctionMetrics(function string) (FunctionMetrics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fm, ok := m.functions[function]
	if !ok {
		return FunctionMetrics{}, false
	}
	return copyFunctionMetrics(fm), true
}

// Snapshot returns a copy of all metrics sorted by function name.
func (m *MetricsCollector) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		Since:     m.started,
		Uptime:    time.Since(m.started),
		Functions: make([]FunctionMetrics, 0, len(m.functions)),
	}
	for _, fm := range m.functions {
		snap.Functions = append(snap.Functions, copyFunctionMetrics(fm))
	}
	sort.Slice(snap.Functions, func(i, j int) bool {
		return snap.Functions[i].Name < snap.Functions[j].Name
	})
	return snap
}

// Reset clears all metrics.
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = time.Now()
	m.functions = make(map[string]*FunctionMetrics)
}

func copyFunctionMetrics(fm *FunctionMetrics) FunctionMetrics {
	out := *fm
	out.ByStatus = make(map[int]int, len(fm.ByStatus))
	for k, v := range fm.ByStatus {
		out.ByStatus[k] = v
	}
	out.ByMethod = make(map[string]int, len(fm.ByMethod))
	for k, v := range fm.ByMethod {
		out.ByMethod[k] = v
	}
	return out
}
