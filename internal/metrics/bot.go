package metrics

import (
	"fmt"
	"time"
)

var extractionBuckets = []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60}

// RecordMessage counts one classified link message.
func (c *Collector) RecordMessage(platform string) {
	c.Counter("reelbot_messages_total", "Link messages received by platform",
		fmt.Sprintf(`platform=%q`, platform)).Inc()
}

// RecordExtraction counts one adapter outcome and its latency.
func (c *Collector) RecordExtraction(platform, result string, took time.Duration) {
	c.Counter("reelbot_extractions_total", "Extraction outcomes by platform and result",
		fmt.Sprintf(`platform=%q,result=%q`, platform, result)).Inc()
	c.Histogram("reelbot_extraction_seconds", "Extraction latency in seconds",
		fmt.Sprintf(`platform=%q`, platform), extractionBuckets).Observe(took.Seconds())
}
