package mail

import "context"

// sendContext runs send and bounds the wait on ctx. The SMTP libraries do not
// take a context, so a hung dial keeps its goroutine alive until the transport
// gives up on its own; the result is discarded once the caller has moved on.
func sendContext(ctx context.Context, send func() error) error {
	done := make(chan error, 1)
	go func() { done <- send() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
