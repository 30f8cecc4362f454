package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64
	importsTotal    uint64
	importsFailed   uint64
	rowsImported    uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordImport counts one import attempt; rows is ignored for failures since
// nothing is kept.
func (c *Collector) RecordImport(ok bool, rows int) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.importsTotal, 1)
	if !ok {
		atomic.AddUint64(&c.importsFailed, 1)
		return
	}
	if rows > 0 {
		atomic.AddUint64(&c.rowsImported, uint64(rows))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":      total,
		"errorsTotal":        errs,
		"rateLimitedTotal":   limited,
		"avgDurationMs":      avg,
		"totalDurationMs":    totalMs,
		"importsTotal":       atomic.LoadUint64(&c.importsTotal),
		"importsFailedTotal": atomic.LoadUint64(&c.importsFailed),
		"rowsImportedTotal":  atomic.LoadUint64(&c.rowsImported),
	}
}
