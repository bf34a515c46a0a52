package model

// Version is the application version.
const Version = "1.0.0"

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// DeleteResponse is the body returned by a successful delete.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Deleted Record `json:"deleted"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
