// Package testutil provides testing utilities shared by mrytune packages.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks should be deferred at the start of tests that spawn goroutines.
// It verifies that no goroutines were leaked during the test.
func VerifyNoLeaks(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, opts...)
}

// IgnoreBackgroundGoroutines returns goleak options for long-lived goroutines
// started by libraries rather than by the code under test: the Fyne test app
// preference watcher and the go-redis connection pool reaper.
func IgnoreBackgroundGoroutines() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreAnyFunction("fyne.io/fyne/v2"),
		goleak.IgnoreTopFunction("github.com/redis/go-redis/v9/internal/pool.(*ConnPool).reaper"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	}
}
