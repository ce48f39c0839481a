package utils

import (
	"sync"
	"time"
)

var (
	recentScans = make(map[string]time.Time)
	mu          sync.RWMutex
)

// IsDuplicateScan checks if an identical scan payload was seen within the
// last few seconds. Hardware scanners fire twice on a slow trigger pull;
// the duplicate should not open a second resolution flow.
func IsDuplicateScan(payload string) bool {
	if payload == "" {
		return false
	}

	mu.RLock()
	timestamp, exists := recentScans[payload]
	mu.RUnlock()

	if exists && time.Since(timestamp) < 3*time.Second {
		return true
	}

	mu.Lock()
	recentScans[payload] = time.Now()

	// Cleanup old entries if map gets too big
	if len(recentScans) > 1000 {
		for k, v := range recentScans {
			if time.Since(v) > time.Minute {
				delete(recentScans, k)
			}
		}
	}
	mu.Unlock()

	return false
}
