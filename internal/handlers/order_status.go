package handlers

import (
	"fmt"

	"wearmart/internal/models"
)

var knownOrderStatuses = map[string]bool{
	models.OrderStatusPlaced:     true,
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
}

// validateStatusTransition guards order status updates. Delivered is
// terminal: any further transition, including Delivered again, is refused.
func validateStatusTransition(current, next string) error {
	if !knownOrderStatuses[next] {
		return fmt.Errorf("unknown order status %q", next)
	}
	if current == models.OrderStatusDelivered {
		return alreadyDeliveredError{}
	}
	return nil
}
