// Package timeouts defines shared timeout constants used across the hunt
// processes. Centralizing these values prevents drift and makes the
// durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 10 * time.Second

// RevealDelay is how long the "Correct" feedback stays visible before
// the follow-up hint takes over.
const RevealDelay = 600 * time.Millisecond

// AdvanceRetryBackoff is the fixed delay before the single retry of a
// lost progress write.
const AdvanceRetryBackoff = 2 * time.Second
