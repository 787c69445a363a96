// Package occupancy computes warehouse slot occupancy from a cleaned
// inventory table.
//
// Aggregation is a pure function: the same table and capacities always
// produce the same summary, and nothing in this package performs I/O or
// logging. Callers (the report service and the CLI) own persistence and
// observability.
//
// # Counting model
//
// Only containers that physically occupy a decision-relevant position
// are counted: status "Armazenado" (stored inside) and "Fora do Armazém"
// (parked outside). "Em Trânsito" and any other status are excluded
// from every count. Counts are kept per height (0.75 m and 1.50 m) and
// in total, and each configured capacity yields a signed balance:
//
//	balance = capacity - stored
//
// Balances are deliberately never clamped at zero; a negative balance
// is the over-allocation signal the dashboard highlights.
//
// # Usage
//
//	result := occupancy.Aggregate(table, domain.DefaultCapacities())
//	if result.EmptyFilter {
//	    // nothing stored or outside; summary counts are all zero
//	}
//	fmt.Println(result.Summary.BalanceTotal)
package occupancy
