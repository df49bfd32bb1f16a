// Package timeouts provides the shared timeout values for database work
// that runs outside a request deadline.
package timeouts

import "time"

const (
	ping  = 2 * time.Second
	short = 5 * time.Second
	long  = 30 * time.Second
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration { return ping }

// Short returns the timeout for single-document lookups.
func Short() time.Duration { return short }

// Long returns the timeout for aggregation pipelines.
func Long() time.Duration { return long }
