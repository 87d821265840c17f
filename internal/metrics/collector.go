// Package metrics keeps in-process counters and histograms for handled
// messages and renders them in the Prometheus text exposition format.
package metrics

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Default is the process-wide collector served on /metrics.
var Default = NewCollector()

// Collector aggregates counters and histograms keyed by name and labels.
type Collector struct {
	counters   sync.Map // key -> *Counter
	histograms sync.Map // key -> *Histogram
	startTime  time.Time
}

func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Uptime returns how long the collector has been running.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name   string
	help   string
	labels string
	value  atomic.Int64
}

func (c *Counter) Inc()         { c.value.Add(1) }
func (c *Counter) Value() int64 { return c.value.Load() }

// Histogram tracks the distribution of observed values. The last bucket
// is always +Inf.
type Histogram struct {
	name    string
	help    string
	labels  string
	mu      sync.Mutex
	count   int64
	sum     float64
	buckets []histBucket
}

type histBucket struct {
	le    float64
	count int64
}

// Observe records a value in the histogram.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += v
	for i := range h.buckets {
		if v <= h.buckets[i].le {
			h.buckets[i].count++
		}
	}
}

// Count returns the number of observations.
func (h *Histogram) Count() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Counter returns or creates the counter for name and labels.
func (c *Collector) Counter(name, help, labels string) *Counter {
	key := name + "{" + labels + "}"
	if v, ok := c.counters.Load(key); ok {
		return v.(*Counter)
	}
	actual, _ := c.counters.LoadOrStore(key, &Counter{name: name, help: help, labels: labels})
	return actual.(*Counter)
}

// Histogram returns or creates the histogram for name and labels.
func (c *Collector) Histogram(name, help, labels string, buckets []float64) *Histogram {
	key := name + "{" + labels + "}"
	if v, ok := c.histograms.Load(key); ok {
		return v.(*Histogram)
	}
	bs := append([]float64(nil), buckets...)
	sort.Float64s(bs)
	if len(bs) == 0 || !math.IsInf(bs[len(bs)-1], 1) {
		bs = append(bs, math.Inf(1))
	}
	hb := make([]histBucket, len(bs))
	for i, b := range bs {
		hb[i] = histBucket{le: b}
	}
	actual, _ := c.histograms.LoadOrStore(key, &Histogram{name: name, help: help, labels: labels, buckets: hb})
	return actual.(*Histogram)
}

// Handler renders all metrics in Prometheus text format.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		fmt.Fprint(w, c.Render())
	}
}

// Render returns the exposition text. Series are sorted so output is
// stable between scrapes.
func (c *Collector) Render() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# HELP reelbot_uptime_seconds Time since start in seconds\n")
	fmt.Fprintf(&sb, "# TYPE reelbot_uptime_seconds gauge\n")
	fmt.Fprintf(&sb, "reelbot_uptime_seconds %d\n", int64(c.Uptime().Seconds()))

	var counters []*Counter
	c.counters.Range(func(_, v any) bool {
		counters = append(counters, v.(*Counter))
		return true
	})
	sort.Slice(counters, func(i, j int) bool {
		if counters[i].name != counters[j].name {
			return counters[i].name < counters[j].name
		}
		return counters[i].labels < counters[j].labels
	})
	helpWritten := make(map[string]bool)
	for _, ctr := range counters {
		if !helpWritten[ctr.name] {
			fmt.Fprintf(&sb, "# HELP %s %s\n", ctr.name, ctr.help)
			fmt.Fprintf(&sb, "# TYPE %s counter\n", ctr.name)
			helpWritten[ctr.name] = true
		}
		fmt.Fprintf(&sb, "%s%s %d\n", ctr.name, braces(ctr.labels), ctr.Value())
	}

	var hists []*Histogram
	c.histograms.Range(func(_, v any) bool {
		hists = append(hists, v.(*Histogram))
		return true
	})
	sort.Slice(hists, func(i, j int) bool {
		if hists[i].name != hists[j].name {
			return hists[i].name < hists[j].name
		}
		return hists[i].labels < hists[j].labels
	})
	helpWritten = make(map[string]bool)
	for _, h := range hists {
		if !helpWritten[h.name] {
			fmt.Fprintf(&sb, "# HELP %s %s\n", h.name, h.help)
			fmt.Fprintf(&sb, "# TYPE %s histogram\n", h.name)
			helpWritten[h.name] = true
		}
		h.mu.Lock()
		for _, b := range h.buckets {
			le := fmt.Sprintf("%g", b.le)
			if math.IsInf(b.le, 1) {
				le = "+Inf"
			}
			labels := `le="` + le + `"`
			if h.labels != "" {
				labels = h.labels + "," + labels
			}
			fmt.Fprintf(&sb, "%s_bucket{%s} %d\n", h.name, labels, b.count)
		}
		fmt.Fprintf(&sb, "%s_count%s %d\n", h.name, braces(h.labels), h.count)
		fmt.Fprintf(&sb, "%s_sum%s %f\n", h.name, braces(h.labels), h.sum)
		h.mu.Unlock()
	}
	return sb.String()
}

func braces(labels string) string {
	if labels == "" {
		return ""
	}
	return "{" + labels + "}"
}
