package entity

import "time"

const (
	SubjectCartAbandoned = "carts.abandoned"
	SubjectCartDeleted   = "carts.deleted"
)

// CartLifecycleEvent is published when the sweeper moves a cart to a new state.
type CartLifecycleEvent struct {
	CartID     string    `json:"cart_id"`
	State      string    `json:"state"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventID identifies one transition of one cart.
func (e CartLifecycleEvent) EventID() string {
	return e.CartID + ":" + e.State
}
