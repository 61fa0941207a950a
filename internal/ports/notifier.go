package ports

import "context"

// Notifier delivers best-effort messages to the responsible person.
// Callers never treat a notifier error as a failure of the triggering
// mutation; they log it and move on.
type Notifier interface {
	NCAssigned(ctx context.Context, record NonConformance) error
	NCStatusChanged(ctx context.Context, record NonConformance, oldStatus string) error
}
