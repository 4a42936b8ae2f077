package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seatrove/seadb/pkg/logger"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func clientWith(rt roundTripperFunc, cred CredentialProvider) *Client {
	return NewClient(&http.Client{Transport: rt}, cred, "seadb-sdk-go-test")
}

func TestSendInjectsHeaders(t *testing.T) {
	var seen *http.Request
	c := clientWith(func(req *http.Request) (*http.Response, error) {
		seen = req
		return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}, StaticTokenCredential("s3cret"))

	resp, err := c.Send(context.Background(), &Request{
		Method: http.MethodPut,
		URL:    "https://api.test/servers/a",
		Body:   []byte(`{"location":"eastus"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	require.NotNil(t, seen)
	assert.Equal(t, "Bearer s3cret", seen.Header.Get(HeaderAuthorization))
	assert.Equal(t, ContentTypeJSON, seen.Header.Get(HeaderContentType))
	assert.Equal(t, "seadb-sdk-go-test", seen.Header.Get(HeaderUserAgent))
	assert.NotEmpty(t, seen.Header.Get(HeaderClientRequestID))
}

func TestSendGeneratesFreshRequestIDs(t *testing.T) {
	ids := map[string]bool{}
	c := clientWith(func(req *http.Request) (*http.Response, error) {
		ids[req.Header.Get(HeaderClientRequestID)] = true
		return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}, nil)

	for i := 0; i < 3; i++ {
		_, err := c.Send(context.Background(), &Request{Method: http.MethodGet, URL: "https://api.test/x"})
		require.NoError(t, err)
	}
	assert.Len(t, ids, 3)
}

func TestSendSurfacesTransportErrorsAsErrors(t *testing.T) {
	c := clientWith(func(req *http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("connection refused")
	}, nil)

	resp, err := c.Send(context.Background(), &Request{Method: http.MethodGet, URL: "https://api.test/x"})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSendReturnsHTTPErrorStatusesAsResponses(t *testing.T) {
	body := `{"error":{"code":"Conflict","message":"taken"}}`
	c := clientWith(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 409,
			Body:       io.NopCloser(bytes.NewReader([]byte(body))),
			Header:     http.Header{},
		}, nil
	}, nil)

	resp, err := c.Send(context.Background(), &Request{Method: http.MethodPut, URL: "https://api.test/x"})
	require.NoError(t, err, "HTTP error statuses are responses, not transport errors")
	assert.Equal(t, 409, resp.StatusCode)
	assert.Equal(t, body, string(resp.Body))
}

func TestCredentialFailureAbortsSend(t *testing.T) {
	called := false
	c := clientWith(func(req *http.Request) (*http.Response, error) {
		called = true
		return nil, nil
	}, StaticTokenCredential(""))

	_, err := c.Send(context.Background(), &Request{Method: http.MethodGet, URL: "https://api.test/x"})
	require.Error(t, err)
	assert.False(t, called)
}

func TestSendLogsThroughContextLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := logger.IntoContext(context.Background(), &logger.Logger{Logger: zap.New(core)})

	c := clientWith(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}, nil)

	_, err := c.Send(ctx, &Request{Method: http.MethodGet, URL: "https://api.test/x"})
	require.NoError(t, err)
	assert.NotZero(t, logs.FilterMessageSnippet("GET https://api.test/x").Len())
}

func TestStatusClassifiers(t *testing.T) {
	assert.True(t, IsSuccess(200))
	assert.True(t, IsSuccess(202))
	assert.False(t, IsSuccess(199))
	assert.False(t, IsSuccess(404))

	assert.True(t, IsAuthFailure(401))
	assert.True(t, IsAuthFailure(403))
	assert.False(t, IsAuthFailure(500))
}

func TestRetryBudgetZeroValueGetsDefaults(t *testing.T) {
	var b RetryBudget
	bo := b.NewBackOff()
	require.NotNil(t, bo)

	// first wait comes from the default initial interval, not zero
	d := bo.NextBackOff()
	assert.Greater(t, d, time.Duration(0))
	assert.NotEqual(t, backoff.Stop, d)
}

func TestRetryBudgetStopsAfterMaxRetries(t *testing.T) {
	b := RetryBudget{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		MaxElapsedTime:  time.Minute,
	}
	bo := b.NewBackOff()
	stops := 0
	for i := 0; i < 5; i++ {
		if bo.NextBackOff() == backoff.Stop {
			stops++
		}
	}
	assert.Equal(t, 3, stops, "budget allows the initial try plus two retries")
}
