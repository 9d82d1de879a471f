package models

import "fmt"

// ValidateOrder checks the basic data-model contract for a normalized order.
// Records failing here are rejected at the boundary and never reach the
// metrics engine; the engine itself tolerates numeric edge cases but not
// missing identity.
func ValidateOrder(o *Order) error {
	if o.OrderNo == "" {
		return fmt.Errorf("order_no is required")
	}

	if o.SongID == "" {
		return fmt.Errorf("song_id is required for order %s", o.OrderNo)
	}

	if o.OrderDate.IsZero() {
		return fmt.Errorf("order_date is required for order %s", o.OrderNo)
	}

	switch o.OrderType {
	case OrderTypeBuy, OrderTypeSell:
	default:
		return fmt.Errorf("invalid order_type %q for order %s", o.OrderType, o.OrderNo)
	}

	switch o.OrderStatus {
	case OrderStatusPending, OrderStatusFilled, OrderStatusCancelled:
	default:
		return fmt.Errorf("invalid order_status %q for order %s", o.OrderStatus, o.OrderNo)
	}

	if o.OrderPrice < 0 {
		return fmt.Errorf("order_price must be non-negative, got %f for order %s", o.OrderPrice, o.OrderNo)
	}

	if o.RecentPrice < 0 {
		return fmt.Errorf("recent_price must be non-negative, got %f for order %s", o.RecentPrice, o.OrderNo)
	}

	if o.OrderCount < 0 {
		return fmt.Errorf("order_count must be non-negative, got %d for order %s", o.OrderCount, o.OrderNo)
	}

	if o.RoyaltyRate < 0 || o.RoyaltyRate > 1 {
		return fmt.Errorf("royalty_rate must be in [0, 1], got %f for order %s", o.RoyaltyRate, o.OrderNo)
	}

	return nil
}

// ValidateEnvelope checks an order batch envelope before it is handed to the
// engine. Individual order validation errors carry the offending index.
func ValidateEnvelope(env *OrderBatchEnvelope) error {
	if env.Source == "" {
		return fmt.Errorf("source is required")
	}

	if env.FetchedAt.IsZero() {
		return fmt.Errorf("fetched_at is required")
	}

	for i := range env.Orders {
		if err := ValidateOrder(&env.Orders[i]); err != nil {
			return fmt.Errorf("order[%d]: %w", i, err)
		}
	}

	return nil
}
