package logger

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// GenerateRequestID returns a random id used to correlate log lines of a
// single request.
func GenerateRequestID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// keep tracing usable even if the random source fails
		return time.Now().UTC().Format("20060102T150405.000000000")
	}
	return hex.EncodeToString(b[:])
}
