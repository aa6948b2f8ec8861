package health

import "time"

// HealthStatus representa el estado de un componente individual.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse es el body de GET /readyz.
type HealthResponse struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version,omitempty"`
	Commit     string                  `json:"commit,omitempty"`
	Timestamp  time.Time               `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}
