package main

import (
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// latencySummary describes how long image deliveries took.
type latencySummary struct {
	N      int
	Mean   time.Duration
	StdDev time.Duration
	P50    time.Duration
	P95    time.Duration
	Max    time.Duration
}

func summarize(samples []time.Duration) latencySummary {
	if len(samples) == 0 {
		return latencySummary{}
	}

	ms := make([]float64, len(samples))
	for i, d := range samples {
		ms[i] = float64(d) / float64(time.Millisecond)
	}
	slices.Sort(ms)

	s := latencySummary{
		N:    len(ms),
		Mean: fromMillis(stat.Mean(ms, nil)),
		P50:  fromMillis(stat.Quantile(0.5, stat.Empirical, ms, nil)),
		P95:  fromMillis(stat.Quantile(0.95, stat.Empirical, ms, nil)),
		Max:  fromMillis(ms[len(ms)-1]),
	}
	if len(ms) > 1 {
		s.StdDev = fromMillis(stat.StdDev(ms, nil))
	}
	return s
}

func (s latencySummary) String() string {
	if s.N == 0 {
		return "latency: no images delivered"
	}
	return fmt.Sprintf("latency: n=%d mean=%v sd=%v p50=%v p95=%v max=%v",
		s.N, s.Mean, s.StdDev, s.P50, s.P95, s.Max)
}

func fromMillis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond)).Round(time.Microsecond)
}
