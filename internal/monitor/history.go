package monitor

import "sync"

// DefaultHistorySize is the default number of data points to retain per series.
const DefaultHistorySize = 60

// Series names recorded by the dashboard.
const (
	SeriesHighRiskPct   = "high_risk_pct"
	SeriesTotalAnalyzed = "total_analyzed"
)

// History keeps recent values per named series in ring buffers for
// sparkline rendering. Safe for concurrent use.
type History struct {
	mu     sync.RWMutex
	size   int
	series map[string]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a new history tracker with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:   size,
		series: make(map[string]*ringBuffer),
	}
}

// Push appends value to the named series.
func (h *History) Push(name string, value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf, ok := h.series[name]
	if !ok {
		buf = newRingBuffer(h.size)
		h.series[name] = buf
	}
	buf.push(value)
}

// Last returns up to count values of the series, oldest first.
func (h *History) Last(name string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.series[name]
	if !ok {
		return nil
	}
	return buf.getLast(count)
}

// Count returns the number of data points stored for a series.
func (h *History) Count(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.series[name]
	if !ok {
		return 0
	}
	return buf.count
}

// newRingBuffer creates a new ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value to the ring buffer.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head is the next write position, so the newest value sits at head-1.
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}

	return result
}
