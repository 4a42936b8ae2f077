package models

import "strings"

// StatusCode is the lifecycle status of a long-running management
// operation or of a resource's provisioningState field.
type StatusCode string

const (
	StatusCodeInProgress StatusCode = "InProgress"
	StatusCodeSucceeded  StatusCode = "Succeeded"
	StatusCodeFailed     StatusCode = "Failed"
	StatusCodeCanceled   StatusCode = "Canceled"
	StatusCodeUnknown    StatusCode = "Unknown"
)

// IsTerminal reports whether no further transition can leave this status.
func (s StatusCode) IsTerminal() bool {
	switch s {
	case StatusCodeSucceeded, StatusCodeFailed, StatusCodeCanceled:
		return true
	}
	return false
}

// ParseStatusCode maps a provider status string onto a StatusCode.
// Matching is case-insensitive. Strings the service added after this
// client was generated map to StatusCodeUnknown rather than failing, so
// polling keeps going until a recognized terminal string shows up.
func ParseStatusCode(state string) StatusCode {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "inprogress", "running", "creating", "updating", "deleting", "starting", "stopping", "accepted":
		return StatusCodeInProgress
	case "succeeded", "ready":
		return StatusCodeSucceeded
	case "failed":
		return StatusCodeFailed
	case "canceled", "cancelled":
		return StatusCodeCanceled
	}
	return StatusCodeUnknown
}
