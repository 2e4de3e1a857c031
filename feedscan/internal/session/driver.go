package session

import (
	"context"
	"fmt"
)

// Scroller moves the page viewport.
type Scroller interface {
	ScrollBy(ctx context.Context, dy float64) error
}

// Driver nudges the host page into rendering more items after a tick found
// nothing in the current window. There is no guarantee the page reacts.
type Driver struct {
	scroller Scroller
	factor   float64
}

// NewDriver returns a Driver scrolling by factor viewport heights per advance.
func NewDriver(s Scroller, factor float64) *Driver {
	if factor <= 0 {
		factor = 2
	}
	return &Driver{scroller: s, factor: factor}
}

// Advance scrolls the document down by factor x viewportHeight.
func (d *Driver) Advance(ctx context.Context, viewportHeight float64) error {
	if err := d.scroller.ScrollBy(ctx, viewportHeight*d.factor); err != nil {
		return fmt.Errorf("driver: advance: %w", err)
	}
	return nil
}
