package reactive

import (
	"errors"
	"fmt"
)

// DeliveryLimitError is recorded when a single drain of the delivery queue
// exceeds the runtime's delivery limit. The remaining deliveries are dropped.
//
// Hitting the limit almost always means a feedback loop: a handler mutates
// state that re-triggers itself.
type DeliveryLimitError struct {
	Delivered int // Deliveries completed before the limit tripped
	Dropped   int // Deliveries discarded from the queue
	Limit     int // Configured limit
}

// Error implements the error interface.
func (e *DeliveryLimitError) Error() string {
	return fmt.Sprintf("delivery limit exceeded: %d deliveries >= %d limit, %d dropped",
		e.Delivered, e.Limit, e.Dropped)
}

// IsDeliveryLimitError returns true if err is or wraps a DeliveryLimitError.
func IsDeliveryLimitError(err error) bool {
	var de *DeliveryLimitError
	return errors.As(err, &de)
}
