package domain

import "fmt"

// Default slot capacities for the AVR warehouse.
const (
	DefaultCapacityTotal = 4060
	DefaultCapacity075   = 2030
	DefaultCapacity150   = 2030
)

// CapacityConfig holds the configured slot capacities an upload is
// aggregated against.
type CapacityConfig struct {
	Total     int `json:"capacity_total" yaml:"total" validate:"gte=1"`
	Height075 int `json:"capacity_075" yaml:"height_075" validate:"gte=0"`
	Height150 int `json:"capacity_150" yaml:"height_150" validate:"gte=0"`
}

// DefaultCapacities returns the standard AVR slot layout.
func DefaultCapacities() CapacityConfig {
	return CapacityConfig{
		Total:     DefaultCapacityTotal,
		Height075: DefaultCapacity075,
		Height150: DefaultCapacity150,
	}
}

// Validate checks the capacity bounds: at least one total slot,
// non-negative per-height capacities.
func (c CapacityConfig) Validate() error {
	if c.Total < 1 {
		return fmt.Errorf("capacity total must be at least 1, got %d", c.Total)
	}
	if c.Height075 < 0 {
		return fmt.Errorf("capacity for 0.75m must not be negative, got %d", c.Height075)
	}
	if c.Height150 < 0 {
		return fmt.Errorf("capacity for 1.50m must not be negative, got %d", c.Height150)
	}
	return nil
}

// InconsistencyAdvisory reports whether the per-height capacities do not
// sum to the total, together with the advisory text to attach to the
// response. The advisory never blocks aggregation.
func (c CapacityConfig) InconsistencyAdvisory() (string, bool) {
	if c.Height075+c.Height150 == c.Total {
		return "", false
	}
	return fmt.Sprintf(
		"capacity split is inconsistent: 0.75m (%d) + 1.50m (%d) = %d, configured total is %d",
		c.Height075, c.Height150, c.Height075+c.Height150, c.Total,
	), true
}

// OccupancySummary is the aggregation result. Balances are signed:
// negative means more containers are stored than the configured
// capacity allows.
type OccupancySummary struct {
	StoredTotal  int `json:"stored_total"`
	OutsideTotal int `json:"outside_total"`
	Stored075    int `json:"stored_075"`
	Outside075   int `json:"outside_075"`
	Stored150    int `json:"stored_150"`
	Outside150   int `json:"outside_150"`
	BalanceTotal int `json:"balance_total"`
	Balance075   int `json:"balance_075"`
	Balance150   int `json:"balance_150"`
}
