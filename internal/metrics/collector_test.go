package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCounter_SameKeyShared(t *testing.T) {
	c := NewCollector()
	c.Counter("x_total", "help", `a="1"`).Inc()
	c.Counter("x_total", "help", `a="1"`).Inc()
	if got := c.Counter("x_total", "help", `a="1"`).Value(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := c.Counter("x_total", "help", `a="2"`).Value(); got != 0 {
		t.Errorf("expected separate series, got %d", got)
	}
}

func TestHistogram_AddsInfBucket(t *testing.T) {
	c := NewCollector()
	h := c.Histogram("lat_seconds", "help", "", []float64{1, 0.5})
	h.Observe(0.2)
	h.Observe(100)
	out := c.Render()
	for _, want := range []string{
		`lat_seconds_bucket{le="0.5"} 1`,
		`lat_seconds_bucket{le="1"} 1`,
		`lat_seconds_bucket{le="+Inf"} 2`,
		`lat_seconds_count 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRecordExtraction(t *testing.T) {
	c := NewCollector()
	c.RecordMessage("youtube")
	c.RecordExtraction("youtube", "ok", 300*time.Millisecond)
	c.RecordExtraction("youtube", "not_found", 2*time.Second)

	out := c.Render()
	for _, want := range []string{
		`reelbot_messages_total{platform="youtube"} 1`,
		`reelbot_extractions_total{platform="youtube",result="ok"} 1`,
		`reelbot_extractions_total{platform="youtube",result="not_found"} 1`,
		`reelbot_extraction_seconds_bucket{platform="youtube",le="0.5"} 1`,
		`reelbot_extraction_seconds_count{platform="youtube"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Count(out, "# TYPE reelbot_extractions_total counter") != 1 {
		t.Error("TYPE line should be written once per metric name")
	}
}

func TestHandler_ContentType(t *testing.T) {
	c := NewCollector()
	rr := httptest.NewRecorder()
	c.Handler()(rr, httptest.NewRequest("GET", "/metrics", nil))
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "reelbot_uptime_seconds") {
		t.Error("expected uptime gauge")
	}
}
