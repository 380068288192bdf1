// Package dlock provides a named, TTL-bound distributed mutex.
//
// The production implementation uses the Redlock algorithm
// (github.com/go-redsync/redsync) over a shared Redis backend so that
// horizontally scaled server instances agree on a single lock holder. The
// authorization-code exchange is the only operation that requires this
// cross-instance exclusion: the lock on `locks:authorization_code:<code>`
// guarantees at-most-once consumption of a code under concurrent replay.
//
// Acquisition retries a bounded number of times with jittered backoff before
// failing with ErrContended; the TTL bounds worst-case hold time if a holder
// crashes mid-exchange.
package dlock
