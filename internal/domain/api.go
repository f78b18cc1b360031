package domain

// APIError is the JSON body of every non-2xx response from the gift API.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Hint    string    `json:"hint,omitempty"`
}

// Error implements error so a decoded envelope can travel as a cause.
func (e APIError) Error() string {
	if e.Hint != "" {
		return e.Message + " (" + e.Hint + ")"
	}
	return e.Message
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Advisor string `json:"advisor,omitempty"`
	Members int    `json:"members"`
}
