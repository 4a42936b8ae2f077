package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/seatrove/seadb/pkg/logger"
)

const (
	HeaderAuthorization   = "Authorization"
	HeaderClientRequestID = "X-Client-Request-ID"
	HeaderContentType     = "Content-Type"
	HeaderUserAgent       = "User-Agent"
	HeaderRetryAfter      = "Retry-After"
	HeaderOperationLoc    = "Operation-Location"
	HeaderAsyncOperation  = "Azure-AsyncOperation"
	HeaderLocation        = "Location"
	HeaderOperationCancel = "Operation-Cancel"

	ContentTypeJSON = "application/json"
)

// Request is a single management-API call. Header may be nil.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the fully-read result of a Request. A Response is only
// returned when the HTTP exchange completed; transport failures come back
// as errors from Send instead.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Sender issues management-API requests. Implementations must return a
// non-nil error only for transport-level failures; HTTP error statuses
// are returned as a Response for the caller to classify.
type Sender interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// CredentialProvider supplies the Authorization header value for each
// request.
type CredentialProvider interface {
	AuthorizationHeader(ctx context.Context) (string, error)
}

// StaticTokenCredential is a fixed bearer token.
type StaticTokenCredential string

func (s StaticTokenCredential) AuthorizationHeader(_ context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty API token")
	}
	return "Bearer " + string(s), nil
}

// Client sends requests over an injected *http.Client. The http.Client is
// borrowed: callers own its lifecycle and connection pool, Client never
// closes it.
type Client struct {
	httpClient *http.Client
	cred       CredentialProvider
	userAgent  string
}

func NewClient(httpClient *http.Client, cred CredentialProvider, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		cred:       cred,
		userAgent:  userAgent,
	}
}

func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	l := logger.FromContext(ctx)

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if len(req.Body) > 0 && httpReq.Header.Get(HeaderContentType) == "" {
		httpReq.Header.Set(HeaderContentType, ContentTypeJSON)
	}
	if c.userAgent != "" {
		httpReq.Header.Set(HeaderUserAgent, c.userAgent)
	}
	httpReq.Header.Set(HeaderClientRequestID, uuid.NewString())

	if c.cred != nil {
		authValue, err := c.cred.AuthorizationHeader(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get credentials: %w", err)
		}
		httpReq.Header.Set(HeaderAuthorization, authValue)
	}

	l.Debugf("%s %s", req.Method, req.URL)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transport failure for %s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	l.Debugf("%s %s -> %d (%d bytes)", req.Method, req.URL, resp.StatusCode, len(body))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

// IsAuthFailure reports whether code indicates a credential problem that
// retrying cannot fix.
func IsAuthFailure(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
