// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package upsert

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports upsert progress as batches complete.
type ProgressTracker struct {
	writer      io.Writer
	total       int
	sent        int
	failed      int
	batches     int
	reportEvery int
	startTime   time.Time
	started     bool
	mu          sync.Mutex
}

// NewProgressTracker creates a new progress tracker.
// writer: where to write progress output (typically os.Stderr)
// total: expected number of vectors, 0 if unknown
// reportEvery: report after every N batches
func NewProgressTracker(writer io.Writer, total, reportEvery int) *ProgressTracker {
	if reportEvery < 1 {
		reportEvery = 1
	}
	return &ProgressTracker{
		writer:      writer,
		total:       total,
		reportEvery: reportEvery,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.sent = 0
	p.failed = 0
	p.batches = 0
}

// Record accounts for one batch of size vectors.
func (p *ProgressTracker) Record(size int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.batches++
	p.sent += size
	if !ok {
		p.failed += size
	}
	if p.total > 0 && p.sent > p.total {
		p.total = p.sent
	}

	if p.batches%p.reportEvery == 0 {
		p.report()
	}
}

// Finish prints final progress.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	rate := 0.0
	if secs := time.Since(p.startTime).Seconds(); secs > 0 {
		rate = float64(p.sent) / secs
	}

	if p.total > 0 {
		fmt.Fprintf(p.writer, "\rUpserted: %d/%d (%.1f%%) in %d batches, %d failed - %.1f vectors/s",
			p.sent, p.total, float64(p.sent)/float64(p.total)*100.0, p.batches, p.failed, rate)
		return
	}
	fmt.Fprintf(p.writer, "\rUpserted: %d in %d batches, %d failed - %.1f vectors/s",
		p.sent, p.batches, p.failed, rate)
}
