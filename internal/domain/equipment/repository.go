package equipment

import (
	"context"
	"time"
)

// Repository defines the read operations the notifier needs from the
// equipment-assignment record store.
type Repository interface {
	// ListExpiringWithin returns all non-returned assignments whose expiry
	// date falls within [start, end] inclusive, in store-native order.
	ListExpiringWithin(ctx context.Context, start, end time.Time) ([]Record, error)
}
