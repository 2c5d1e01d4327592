package contxt

import (
	"context"
	"os"
	"time"
)

// NewContext returns a context that expires after timeout, used to
// bound publish calls. CONTEXT_TEST disables the deadline in tests.
func NewContext(timeout time.Duration) context.Context {
	if os.Getenv("CONTEXT_TEST") != "" {
		return context.Background()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}
