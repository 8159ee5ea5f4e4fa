package dto

// HealthResponse represents the response structure for health checks
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
