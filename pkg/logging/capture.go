package logging

import (
	"sync"
)

// CaptureWriter is a thread-safe writer that stores the last written line.
type CaptureWriter struct {
	mu       sync.RWMutex
	lastLine string
}

// Capture is the singleton instance wired into the server log handler.
var Capture = &CaptureWriter{}

// Write implements io.Writer. It updates the lastLine field.
func (w *CaptureWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastLine = string(p)
	return len(p), nil
}

// LastLine returns the most recent log line.
func (w *CaptureWriter) LastLine() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastLine
}
