package api

import (
	"avrcli/pkg/contracts/domain"
)

// AggregateResponse is the flat summary returned by POST /api/aggregate.
// The embedded summary keeps the nine counting fields at the top level.
type AggregateResponse struct {
	domain.OccupancySummary
	ReportID   string   `json:"report_id"`
	Warnings   []string `json:"warnings"`
	Advisories []string `json:"advisories"`
}

// RecordsResponse is a page of inventory rows from a stored report. Rows
// are cell values in column order, ready for tabular rendering.
type RecordsResponse struct {
	ReportID string     `json:"report_id"`
	Scope    string     `json:"scope"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
	Total    int        `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}
