package mail

import "context"

// Sender defines an interface for delivering one message to one address.
// This decouples the dispatch logic from the concrete transport: password SMTP,
// OAuth2-refreshed SMTP and transactional HTTP backends all implement it, and
// the dispatcher never branches on which one is active.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
