package perf

import (
	"sync"
	"testing"
	"time"
)

// TestCollector_Snapshot checks aggregation per label and kind.
func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Label: "GET /api/customers", StatusCode: 200, DurationMs: 10, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Label: "GET /api/customers", StatusCode: 500, DurationMs: 30, Timestamp: now})
	c.Record(Entry{Kind: KindQuery, Label: "select meal_entry", DurationMs: 5, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.TotalRecorded != 3 || snap.Requests != 2 || snap.ServerErrors != 1 {
		t.Fatalf("counts = %+v", snap)
	}
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].AvgMs != 20 || snap.SlowestPaths[0].MaxMs != 30 {
		t.Fatalf("SlowestPaths = %+v", snap.SlowestPaths)
	}
	if len(snap.SlowestQueries) != 1 || snap.SlowestQueries[0].Label != "select meal_entry" {
		t.Fatalf("SlowestQueries = %+v", snap.SlowestQueries)
	}
}

// TestCollector_RingOverwrites verifies only the newest entries are kept.
func TestCollector_RingOverwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()
	for i := 0; i < 5; i++ {
		c.Record(Entry{Kind: KindRequest, Label: "GET /x", DurationMs: float64(i), Timestamp: now})
	}
	snap := c.Snapshot(now.Add(-time.Second), 5)
	if snap.TotalRecorded != 5 {
		t.Errorf("TotalRecorded = %d, want 5", snap.TotalRecorded)
	}
	if snap.Requests != 3 {
		t.Errorf("Requests in window = %d, want 3", snap.Requests)
	}
	if got := snap.SlowestPaths[0].MaxMs; got != 4 {
		t.Errorf("MaxMs = %v, want 4", got)
	}
}

// TestCollector_WindowAndTopN verifies old entries are excluded and the list is capped.
func TestCollector_WindowAndTopN(t *testing.T) {
	c := NewCollector(10)
	now := time.Now()
	c.Record(Entry{Kind: KindRequest, Label: "GET /old", DurationMs: 900, Timestamp: now.Add(-time.Hour)})
	c.Record(Entry{Kind: KindRequest, Label: "GET /a", DurationMs: 1, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Label: "GET /b", DurationMs: 2, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Label: "GET /c", DurationMs: 3, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), 2)
	if len(snap.SlowestPaths) != 2 {
		t.Fatalf("len = %d, want 2", len(snap.SlowestPaths))
	}
	if snap.SlowestPaths[0].Label != "GET /c" || snap.SlowestPaths[1].Label != "GET /b" {
		t.Fatalf("order = %+v", snap.SlowestPaths)
	}
}

// TestPercentile checks interpolation on small inputs.
func TestPercentile(t *testing.T) {
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("empty = %v", got)
	}
	if got := percentile([]float64{7}, 99); got != 7 {
		t.Errorf("single = %v", got)
	}
	if got := percentile([]float64{0, 10}, 50); got != 5 {
		t.Errorf("interpolated = %v, want 5", got)
	}
}

// TestCollector_ConcurrentRecord exercises the lock under -race.
func TestCollector_ConcurrentRecord(t *testing.T) {
	c := NewCollector(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Record(Entry{Kind: KindQuery, Label: "select plan", DurationMs: 1, Timestamp: time.Now()})
			}
		}()
	}
	wg.Wait()
	if c.TotalRecorded() != 800 {
		t.Fatalf("TotalRecorded = %d, want 800", c.TotalRecorded())
	}
}
