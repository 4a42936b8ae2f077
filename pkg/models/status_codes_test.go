package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatusCode(t *testing.T) {
	tests := []struct {
		in   string
		want StatusCode
	}{
		{"InProgress", StatusCodeInProgress},
		{"inprogress", StatusCodeInProgress},
		{"Creating", StatusCodeInProgress},
		{"Deleting", StatusCodeInProgress},
		{"SUCCEEDED", StatusCodeSucceeded},
		{"Ready", StatusCodeSucceeded},
		{"failed", StatusCodeFailed},
		{"Canceled", StatusCodeCanceled},
		{"cancelled", StatusCodeCanceled},
		{" Succeeded ", StatusCodeSucceeded},
		{"Hibernating", StatusCodeUnknown},
		{"", StatusCodeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseStatusCode(tt.in), "input %q", tt.in)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusCodeSucceeded.IsTerminal())
	assert.True(t, StatusCodeFailed.IsTerminal())
	assert.True(t, StatusCodeCanceled.IsTerminal())
	assert.False(t, StatusCodeInProgress.IsTerminal())
	assert.False(t, StatusCodeUnknown.IsTerminal())
}

func TestParseErrorBody(t *testing.T) {
	eb := ParseErrorBody([]byte(`{"error":{"code":"Conflict","message":"taken"}}`))
	if assert.NotNil(t, eb) {
		assert.Equal(t, "Conflict", eb.Code)
		assert.Equal(t, "taken", eb.Message)
	}

	eb = ParseErrorBody([]byte(`{"code":"Throttled","message":"slow down"}`))
	if assert.NotNil(t, eb) {
		assert.Equal(t, "Throttled", eb.Code)
	}

	assert.Nil(t, ParseErrorBody([]byte(`{"unrelated":true}`)))
	assert.Nil(t, ParseErrorBody(nil))
}
