// Package api contains API contract definitions for AVR Pulse.
// Version v1 represents the current stable API version.
package api

// AggregateRequest carries the capacity overrides accepted alongside an
// inventory upload, sent as multipart form fields. Absent fields keep the
// configured defaults; the merged result must pass domain validation.
type AggregateRequest struct {
	CapacityTotal int `json:"capacity_total" form:"capacity_total"`
	Capacity075   int `json:"capacity_075" form:"capacity_075"`
	Capacity150   int `json:"capacity_150" form:"capacity_150"`
}
