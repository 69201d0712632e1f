package health

import (
	"context"
	"fmt"
	"runtime"
)

// GoroutineCountCheck returns a liveness check that fails when the process
// has more than maxGoroutines goroutines, a cheap proxy for leaks.
func GoroutineCountCheck(maxGoroutines int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > maxGoroutines {
			return fmt.Errorf("%d goroutines running, limit %d", n, maxGoroutines)
		}
		return nil
	}
}
