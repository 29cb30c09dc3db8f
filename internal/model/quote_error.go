package model

// QuoteError records a request that could not be quoted.
type QuoteError struct {
	RequestID string `json:"request_id"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
}
