package models

// ErrorResponse is the body written when an API request fails.
type ErrorResponse struct {
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorDetails string `json:"errorDetails"`
}
