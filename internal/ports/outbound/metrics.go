package outbound

import "time"

// MetricsRecorder receives business events worth counting
type MetricsRecorder interface {
	PlansCreated(count int)
	EntriesReplaced(count int)
	RecommenderCall(endpoint string, err error, elapsed time.Duration)
	ContextCache(hit bool)
}

// NopMetrics discards every event
type NopMetrics struct{}

func (NopMetrics) PlansCreated(int)                             {}
func (NopMetrics) EntriesReplaced(int)                          {}
func (NopMetrics) RecommenderCall(string, error, time.Duration) {}
func (NopMetrics) ContextCache(bool)                            {}
