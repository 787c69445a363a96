package domain

import "time"

// StoredReport is the metadata kept for an aggregated upload so its
// dashboard, records and exports can be served without re-uploading.
// The cleaned table itself is held alongside by the report store.
type StoredReport struct {
	ID          string           `json:"id"`
	Filename    string           `json:"filename"`
	UploadedAt  time.Time        `json:"uploaded_at"`
	RowsCleaned int              `json:"rows_cleaned"`
	RowsCounted int              `json:"rows_counted"`
	Capacities  CapacityConfig   `json:"capacities"`
	Summary     OccupancySummary `json:"summary"`
	Warnings    []string         `json:"warnings,omitempty"`
	Advisories  []string         `json:"advisories,omitempty"`
}
