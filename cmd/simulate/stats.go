package main

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRejected
	outcomeError
)

// OperationStats collects counts and latencies for one kind of request.
type OperationStats struct {
	Total     int64
	Success   int64
	Rejected  int64
	Error     int64
	latencies []time.Duration
	mu        sync.Mutex
}

func (s *OperationStats) Record(latency time.Duration, o outcome) {
	atomic.AddInt64(&s.Total, 1)
	switch o {
	case outcomeSuccess:
		atomic.AddInt64(&s.Success, 1)
	case outcomeRejected:
		atomic.AddInt64(&s.Rejected, 1)
	default:
		atomic.AddInt64(&s.Error, 1)
	}

	s.mu.Lock()
	s.latencies = append(s.latencies, latency)
	s.mu.Unlock()
}

func (s *OperationStats) Latency() (avg, min, max, p50, p95 time.Duration) {
	s.mu.Lock()
	latencies := make([]time.Duration, len(s.latencies))
	copy(latencies, s.latencies)
	s.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func (s *OperationStats) Print(name string) {
	total := atomic.LoadInt64(&s.Total)
	if total == 0 {
		return
	}
	pct := func(n int64) float64 { return float64(n) / float64(total) * 100 }

	success := atomic.LoadInt64(&s.Success)
	rejected := atomic.LoadInt64(&s.Rejected)
	failed := atomic.LoadInt64(&s.Error)
	avg, min, max, p50, p95 := s.Latency()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, pct(success))
	if rejected > 0 {
		fmt.Printf("  Rejected: %d (%.1f%%)\n", rejected, pct(rejected))
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, pct(failed))
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

var listEntry = regexp.MustCompile(`Date: ([^,<]*), Time: ([^<]*)</li>`)

// duplicateSlots parses a rendered appointment list and returns every
// date/time pair that appears more than once.
func duplicateSlots(page string) []string {
	seen := make(map[string]int)
	var dups []string
	for _, m := range listEntry.FindAllStringSubmatch(page, -1) {
		slot := m[1] + " " + m[2]
		seen[slot]++
		if seen[slot] == 2 {
			dups = append(dups, slot)
		}
	}
	return dups
}

// countEntries returns the number of appointments in a rendered list.
func countEntries(page string) int {
	return len(listEntry.FindAllStringIndex(page, -1))
}
