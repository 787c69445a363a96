package occupancy

import (
	"avrcli/pkg/contracts/domain"
)

// EmptyFilterWarning is attached to a report when no row carries a
// counted status, so every count in the summary is zero. It never fails
// the request; callers still render the (zeroed) summary.
const EmptyFilterWarning = "EMPTY_FILTER_WARNING"

// Result is the outcome of aggregating one cleaned table.
type Result struct {
	// Summary holds the six counts and three signed balances.
	Summary domain.OccupancySummary

	// Counted is the number of rows that contributed to the counts,
	// i.e. rows whose status is stored or outside.
	Counted int

	// EmptyFilter is set when Counted is zero. Non-fatal: the summary
	// is still valid, with all counts zero and balances equal to the
	// configured capacities.
	EmptyFilter bool
}

// Counted reports whether a status participates in aggregation.
// "Em Trânsito" and unrecognized statuses do not.
func Counted(status string) bool {
	return status == domain.StatusStored || status == domain.StatusOutside
}

// FilterRows returns the rows that participate in aggregation, in input
// order. The returned slice shares the table's records; callers must
// not mutate them.
func FilterRows(table *domain.SlotTable) []domain.SlotRecord {
	if table == nil {
		return nil
	}
	filtered := make([]domain.SlotRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		if Counted(row.Status) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// Aggregate counts stored and outside containers per height and derives
// the signed balances against the given capacities.
//
// The table is expected to be cleaned (heights restricted to 0.75/1.50,
// statuses normalized), so stored_075 + stored_150 always equals
// stored_total and likewise for the outside counts. Rows with excluded
// statuses are skipped entirely. A nil table aggregates like an empty
// one.
func Aggregate(table *domain.SlotTable, capacities domain.CapacityConfig) Result {
	var summary domain.OccupancySummary
	counted := 0

	if table != nil {
		for _, row := range table.Rows {
			switch row.Status {
			case domain.StatusStored:
				summary.StoredTotal++
				switch row.Height {
				case domain.Height075:
					summary.Stored075++
				case domain.Height150:
					summary.Stored150++
				}
			case domain.StatusOutside:
				summary.OutsideTotal++
				switch row.Height {
				case domain.Height075:
					summary.Outside075++
				case domain.Height150:
					summary.Outside150++
				}
			default:
				continue
			}
			counted++
		}
	}

	// Signed on purpose: a negative balance means over-allocation and
	// must reach the presenter unclamped.
	summary.BalanceTotal = capacities.Total - summary.StoredTotal
	summary.Balance075 = capacities.Height075 - summary.Stored075
	summary.Balance150 = capacities.Height150 - summary.Stored150

	return Result{
		Summary:     summary,
		Counted:     counted,
		EmptyFilter: counted == 0,
	}
}
