package market

import (
	"sync"
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	cache := newTTLCache(6*time.Hour, clock)
	estimate := PriceEstimate{Location: "lyon", ValuePerSqm: 5500, Source: SourceProximity, Confidence: ConfidenceProximity}

	cache.put("lyon", estimate)

	got, ok := cache.get("lyon")
	if !ok {
		t.Fatal("expected cache hit within TTL")
	}
	if got != estimate {
		t.Errorf("cache returned %+v, want %+v", got, estimate)
	}

	now = now.Add(6*time.Hour + time.Minute)
	if _, ok := cache.get("lyon"); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestTTLCacheEvictsExpiredOnPut(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	cache := newTTLCache(time.Hour, clock)
	cache.put("lyon", PriceEstimate{Location: "lyon"})

	now = now.Add(2 * time.Hour)
	cache.put("paris", PriceEstimate{Location: "paris"})

	cache.mu.RLock()
	_, lyonStillThere := cache.entries["lyon"]
	cache.mu.RUnlock()
	if lyonStillThere {
		t.Error("expected expired entry to be evicted on put")
	}
}

func TestTTLCacheConcurrentAccess(t *testing.T) {
	cache := newTTLCache(time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.put("lyon", PriceEstimate{Location: "lyon", ValuePerSqm: 5500})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if est, ok := cache.get("lyon"); ok && est.ValuePerSqm != 5500 {
					t.Error("observed partially written cache entry")
					return
				}
			}
		}()
	}
	wg.Wait()
}
