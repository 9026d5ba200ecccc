package config

import (
	"sync"
	"time"
)

// ViewerSettings holds runtime viewer configuration
type ViewerSettings struct {
	mu       sync.RWMutex
	fpsLimit int // target frames per second for the render loop
}

var globalViewerSettings = &ViewerSettings{
	fpsLimit: 25, // default value
}

// GetFPSLimit returns the current render loop target frame rate
func GetFPSLimit() int {
	globalViewerSettings.mu.RLock()
	defer globalViewerSettings.mu.RUnlock()
	return globalViewerSettings.fpsLimit
}

// SetFPSLimit sets the render loop target frame rate
func SetFPSLimit(limit int) {
	globalViewerSettings.mu.Lock()
	defer globalViewerSettings.mu.Unlock()

	// Clamp to reasonable values
	if limit < 1 {
		limit = 1
	}
	if limit > 240 {
		limit = 240
	}

	globalViewerSettings.fpsLimit = limit
}

// FrameBudget returns the time available for one frame at the current limit
func FrameBudget() time.Duration {
	return time.Second / time.Duration(GetFPSLimit())
}
