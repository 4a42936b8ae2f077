package models

import "encoding/json"

// OperationStatus is the body of an operation-status resource, polled at
// the URL the service hands back in the Operation-Location header.
type OperationStatus struct {
	ID              string          `json:"id,omitempty"`
	Name            string          `json:"name,omitempty"`
	Status          string          `json:"status"`
	StartTime       string          `json:"startTime,omitempty"`
	EndTime         string          `json:"endTime,omitempty"`
	PercentComplete *float64        `json:"percentComplete,omitempty"`
	Error           *ErrorBody      `json:"error,omitempty"`
	Properties      json.RawMessage `json:"properties,omitempty"`
}

// ErrorBody is the provider's error payload, carried verbatim through to
// callers when an operation fails.
type ErrorBody struct {
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
	Target  string       `json:"target,omitempty"`
	Details []*ErrorBody `json:"details,omitempty"`
}

// ErrorResponse is the top-level wrapper some endpoints use.
type ErrorResponse struct {
	Error *ErrorBody `json:"error,omitempty"`
}

// ParseErrorBody extracts the provider error payload from a response body,
// accepting both the wrapped ({"error":{...}}) and the bare shape. Returns
// nil when the body carries neither.
func ParseErrorBody(body []byte) *ErrorBody {
	if len(body) == 0 {
		return nil
	}
	var wrapped ErrorResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error != nil {
		return wrapped.Error
	}
	var bare ErrorBody
	if err := json.Unmarshal(body, &bare); err == nil && (bare.Code != "" || bare.Message != "") {
		return &bare
	}
	return nil
}
