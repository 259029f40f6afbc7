// Package models defines response types for the MiniDNS management API.
// All types are JSON-serializable.
package models

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response.
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string          `json:"status"`
	Database *DatabaseStatus `json:"database,omitempty"`
}

// DatabaseStatus reports the record store when one is configured.
type DatabaseStatus struct {
	Status        string `json:"status"`
	SchemaVersion uint   `json:"schema_version"`
	Error         string `json:"error,omitempty"`
}
