package rest

// ErrorResponse is the JSON body returned by API endpoints on failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
