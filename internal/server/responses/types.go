// Package responses defines the JSON payload types used by docserver
// HTTP handlers.
package responses

import "time"

// DocumentSummary is one entry in a listing response.
type DocumentSummary struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Slug        string `json:"slug"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	Date        string `json:"date,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

// ListResponse wraps a document listing.
type ListResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Count     int               `json:"count"`
}

// DocumentResponse is a resolved document. Body carries the raw
// markdown; HTML is only present when rendering was requested.
type DocumentResponse struct {
	DocumentSummary
	Body string `json:"body,omitempty"`
	HTML string `json:"html,omitempty"`
}

// AdjacentResponse reports a document's ordered neighbors.
type AdjacentResponse struct {
	Previous *DocumentSummary `json:"previous,omitempty"`
	Next     *DocumentSummary `json:"next,omitempty"`
}

// CreateRequest is the JSON submission payload.
type CreateRequest struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Body        string `json:"body"`
}

// CreateResponse reports where a submission landed.
type CreateResponse struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Slug        string `json:"slug"`
	Renamed     bool   `json:"renamed"`
	URL         string `json:"url"`
}

// SubmissionEntry is one row of the recent-submissions listing.
type SubmissionEntry struct {
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Slug        string    `json:"slug"`
	User        string    `json:"user,omitempty"`
	Author      string    `json:"author,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecentResponse wraps the recent-submissions listing.
type RecentResponse struct {
	Submissions []SubmissionEntry `json:"submissions"`
	Count       int               `json:"count"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse is the admin status payload.
type StatusResponse struct {
	Status         string         `json:"status"`
	Version        string         `json:"version"`
	StartTime      time.Time      `json:"start_time"`
	UptimeSeconds  float64        `json:"uptime_seconds"`
	DocumentCounts map[string]int `json:"document_counts"`
	DocumentsTotal int            `json:"documents_total"`
	IndexHash      string         `json:"index_hash,omitempty"`
	LastReindex    *time.Time     `json:"last_reindex,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}
