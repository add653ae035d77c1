package recipient

import "context"

// Repository defines the operations for retrieving notification recipients.
type Repository interface {
	// ListNotifiable returns all recipients with a non-empty email address.
	ListNotifiable(ctx context.Context) ([]Recipient, error)
}
