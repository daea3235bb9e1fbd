// Package timeouts defines shared timeout constants used across the process.
// Centralizing these values keeps storage and display deadlines from drifting
// between call sites and makes the durations discoverable.
package timeouts

import "time"

// Storage caps the time allowed for a single party store operation.
const Storage = 2 * time.Second

// Display caps the wait for one display-surface send, edit, or delete call.
const Display = 5 * time.Second

// Notify caps the wait for one fire-and-forget notification delivery.
const Notify = 3 * time.Second

// ReadHeader limits how long the health HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the runtime waits for in-flight work during
// graceful shutdown.
const Shutdown = 5 * time.Second
